package mapper

import (
	"strings"
	"time"

	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/stats"
)

// dateLayouts are tried in order when a policy normalizes dates.
var dateLayouts = []string{
	constants.DateFormat,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102",
	"2006/01/02",
	"02 January 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// partialLayouts are ISO 8601 reduced-precision dates. They are valid as they
// stand and are kept verbatim.
var partialLayouts = []string{"2006-01", "2006"}

// date applies the policy's date handling to one field. Without
// normalization the raw value is returned unchanged.
func (m *Mapper) date(field, raw string) string {
	if raw == "" || !m.policy.NormalizeDates {
		return raw
	}
	if v, ok := NormalizeDate(raw); ok {
		return v
	}
	m.stats.ObserveValue(raw, stats.Info, InfoDateParseFailure, field)
	return ""
}

// NormalizeDate rewrites a date as YYYY-MM-DD. Reduced-precision dates such
// as "2019-05" or "2019" are returned as they are.
func NormalizeDate(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	for _, layout := range partialLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return v, true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(constants.DateFormat), true
		}
	}
	return "", false
}
