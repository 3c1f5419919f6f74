package mapper

import (
	"strings"

	"github.com/agentstation/bodsmap/pkg/bods"
	"github.com/agentstation/bodsmap/pkg/record"
	"github.com/agentstation/bodsmap/pkg/stats"
)

const defaultNameType = "ALTERNATE"

// personNames returns the primary full name and the typed alternates, in
// source order. Entries without a full name are skipped.
func (m *Mapper) personNames(s *bods.Statement) (string, []record.Feature) {
	var (
		primary string
		names   []record.Feature
	)
	for _, n := range s.Names {
		if strings.TrimSpace(n.FullName) == "" {
			continue
		}
		nameType := n.Type
		if nameType == "" {
			nameType = defaultNameType
		}
		nameType = strings.ReplaceAll(nameType, "_", "-")
		m.stats.Observe(stats.Raw, "name_type", "PERSON", nameType)

		if primary == "" {
			primary = n.FullName
			continue
		}
		names = append(names, record.Feature{Key: nameType + "_NAME_FULL", Value: n.FullName})
	}
	return primary, names
}

func organizationNames(s *bods.Statement) []record.Feature {
	var names []record.Feature
	if strings.TrimSpace(s.Name) != "" {
		names = append(names, record.Feature{Key: "PRIMARY_NAME_ORG", Value: s.Name})
	}
	for _, alt := range s.AlternateNames {
		if strings.TrimSpace(alt) != "" {
			names = append(names, record.Feature{Key: "ALTERNATE_NAME_FULL", Value: alt})
		}
	}
	return names
}
