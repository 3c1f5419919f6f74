package mapper

import (
	"strings"

	"github.com/agentstation/bodsmap/pkg/bods"
	"github.com/agentstation/bodsmap/pkg/record"
	"github.com/agentstation/bodsmap/pkg/stats"
	"github.com/agentstation/bodsmap/pkg/vocab"
)

// addresses maps every address that has address text. The role comes from
// the policy; the country is passed through unchecked.
func (m *Mapper) addresses(s *bods.Statement) []record.Address {
	var (
		out       []record.Address
		unlabeled int
	)
	for _, a := range s.Addresses {
		if strings.TrimSpace(a.Address) == "" {
			continue
		}

		token := strings.ToUpper(strings.TrimSpace(a.Type))
		if token == "" {
			token = vocab.RoleUnknown
		}
		m.stats.Observe(stats.Raw, "address_type", s.Type.String(), token)

		first := true
		if strings.TrimSpace(a.Type) == "" {
			first = unlabeled == 0
			unlabeled++
		}
		out = append(out, record.Address{
			Type:    m.policy.AddressRole(s.Type, a.Type, first),
			Full:    a.Address,
			Country: a.Country,
		})
	}
	return out
}
