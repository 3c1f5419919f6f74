package mapper

import (
	"strings"

	"github.com/agentstation/bodsmap/pkg/bods"
	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/record"
	"github.com/agentstation/bodsmap/pkg/stats"
)

// identifiers splits a statement's identifiers into register identifiers and
// links. An identifier with a URI is always a link.
func (m *Mapper) identifiers(s *bods.Statement) ([]record.Identifier, []record.Feature) {
	var (
		ids   []record.Identifier
		links []record.Feature
	)
	stype := s.Type.String()

	for _, id := range s.Identifiers {
		if id.URI != "" {
			m.stats.ObserveValue(id.ID, stats.Raw, "link", stype, id.SchemeName+"|"+id.Scheme)
			key := id.SchemeName
			if key == "" {
				key = id.Scheme
			}
			if key == "" {
				m.stats.ObserveValue(id.URI, stats.Info, InfoIdentifierNoScheme, stype)
				continue
			}
			links = append(links, record.Feature{Key: key, Value: linkURI(id)})
			continue
		}

		if strings.TrimSpace(id.ID) == "" {
			m.stats.ObserveValue(id.SchemeName, stats.Info, InfoIdentifierNoValue, stype)
			continue
		}
		if id.Scheme == "" && id.SchemeName == "" {
			m.stats.ObserveValue(id.ID, stats.Info, InfoIdentifierNoScheme, stype)
			continue
		}

		class := m.policy.Identifier(id.Scheme)
		m.stats.ObserveValue(id.ID, stats.Raw, "identifier", stype, id.SchemeName+"|"+id.Scheme+"|"+string(class.Kind))

		idType := id.Scheme
		if idType == "" {
			idType = id.SchemeName
		}
		ids = append(ids, record.Identifier{
			Kind:    string(class.Kind),
			Number:  id.ID,
			Type:    idType,
			Country: class.Country,
		})
	}
	return ids, links
}

// linkURI makes register entity paths absolute.
func linkURI(id bods.Identifier) string {
	if id.SchemeName == constants.RegisterSchemeName && strings.HasPrefix(id.URI, constants.RegisterPathPrefix) {
		return constants.RegisterBaseURL + id.URI
	}
	return id.URI
}
