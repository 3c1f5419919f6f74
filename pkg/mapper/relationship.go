package mapper

import (
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/bodsmap/pkg/bods"
	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/record"
	"github.com/agentstation/bodsmap/pkg/stats"
)

const defaultInterestType = "unknown"

// mapRelationship builds a type-less fragment keyed by the subject. It carries
// one pointer per interest.
func (m *Mapper) mapRelationship(s *bods.Statement) *record.Record {
	subject := s.Subject.Key()
	if subject == "" {
		m.stats.ObserveValue(s.ID, stats.Alert, AlertNoSubject)
		return nil
	}

	pointer := s.InterestedParty.Key()
	if pointer == "" {
		pointer = constants.UnknownPointerKey
	}

	r := &record.Record{
		DataSource: constants.DataSource,
		RecordID:   subject,
	}
	for _, interest := range s.Interests {
		r.Relationships = append(r.Relationships, record.Relationship{
			PointerDomain: constants.RelationshipDomain,
			PointerKey:    pointer,
			PointerRole:   Role(interest),
			FromDate:      m.date("REL_POINTER_FROM_DATE", interest.StartDate),
			ThruDate:      m.date("REL_POINTER_THRU_DATE", interest.EndDate),
		})
	}
	if len(r.Relationships) == 0 {
		m.stats.ObserveValue(pointer, stats.Alert, AlertNoInterests)
	}
	return r
}

// Role renders the pointer role of an interest: the interest type with "-"
// replaced by "_", suffixed with the exact share when one is set, for example
// "shareholding-51.2%".
func Role(interest bods.Interest) string {
	role := interest.Type
	if role == "" {
		role = defaultInterestType
	}
	role = strings.ReplaceAll(role, "-", "_")
	if exact, ok := interest.Share.ExactValue(); ok {
		role += "-" + FormatShare(exact) + "%"
	}
	return role
}

// FormatShare rounds a share to two decimals and renders it in its shortest form.
func FormatShare(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
