package vocab

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/bodsmap/pkg/bods"
	"github.com/agentstation/bodsmap/pkg/errors"
)

// Built-in policy names.
const (
	// PolicyRegister follows the register conventions: type-aware address
	// roles, untyped addresses marked UNKNOWN, national-ID fallback.
	PolicyRegister = "register"

	// PolicyGeneric uses no type-aware address table, labels untyped
	// addresses PRIMARY then OTHER, falls back to OTHER_ID and normalizes dates.
	PolicyGeneric = "generic"

	// DefaultPolicy is used when no policy is named.
	DefaultPolicy = PolicyRegister
)

var builtins = map[string]func() *Policy{
	PolicyRegister: Register,
	PolicyGeneric:  Generic,
}

// Register returns the register policy.
func Register() *Policy {
	return &Policy{
		Name:        PolicyRegister,
		Base:        PolicyRegister,
		Description: "Register conventions: registered addresses are BUSINESS for organizations and PRIMARY for persons",
		AddressRoles: map[bods.StatementType]map[string]string{
			bods.PersonStatement: {"REGISTERED": RolePrimary},
			bods.EntityStatement: {"REGISTERED": RoleBusiness},
		},
		UnlabeledAddressRole: RoleUnknown,
		IdentifierSchemes:    identifierSchemes(),
		IdentifierFallback:   NationalID,
	}
}

// Generic returns the generic policy.
func Generic() *Policy {
	return &Policy{
		Name:                     PolicyGeneric,
		Base:                     PolicyGeneric,
		Description:              "Generic conventions: untyped addresses are PRIMARY then OTHER, unknown schemes are OTHER_ID",
		AddressRoles:             map[bods.StatementType]map[string]string{},
		UnlabeledAddressRole:     RolePrimary,
		UnlabeledAddressRoleRest: RoleOther,
		IdentifierSchemes:        identifierSchemes(),
		IdentifierFallback:       OtherID,
		NormalizeDates:           true,
	}
}

// Names returns the built-in policy names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns a fresh copy of the built-in policy with the given name.
// An empty name selects DefaultPolicy.
func Lookup(name string) (*Policy, error) {
	if name == "" {
		name = DefaultPolicy
	}
	build, ok := builtins[strings.ToLower(name)]
	if !ok {
		return nil, errors.NewNotFoundError("policy", name)
	}
	return build(), nil
}

// Validate checks that the policy can be used for mapping.
func (p *Policy) Validate() error {
	if p.Name == "" {
		return errors.NewValidationError("name", p.Name, "cannot be empty")
	}
	if !p.IdentifierFallback.Valid() {
		return errors.NewValidationError("identifier_fallback", p.IdentifierFallback, "must be NATIONAL_ID or OTHER_ID")
	}
	for scheme, class := range p.IdentifierSchemes {
		if !class.Kind.Valid() {
			return errors.NewValidationError("identifier_schemes."+scheme, class.Kind, "must be NATIONAL_ID or OTHER_ID")
		}
	}
	for t := range p.AddressRoles {
		if !t.Known() {
			return errors.NewValidationError("address_roles", string(t), "unknown statement type")
		}
	}
	return nil
}

// profile is the YAML overlay form of a policy. Unset fields keep the base value.
type profile struct {
	Base                     string                                  `yaml:"base"`
	Name                     string                                  `yaml:"name"`
	Description              string                                  `yaml:"description"`
	AddressRoles             map[bods.StatementType]map[string]string `yaml:"address_roles"`
	UnlabeledAddressRole     *string                                 `yaml:"unlabeled_address_role"`
	UnlabeledAddressRoleRest *string                                 `yaml:"unlabeled_address_role_rest"`
	IdentifierSchemes        map[string]IdentifierClass              `yaml:"identifier_schemes"`
	IdentifierFallback       *IDKind                                 `yaml:"identifier_fallback"`
	NormalizeDates           *bool                                   `yaml:"normalize_dates"`
}

// Parse builds a policy from a YAML profile. The profile names a built-in
// base policy (default register) and overrides or extends its tables.
func Parse(data []byte, source string) (*Policy, error) {
	var prof profile
	if err := yaml.Unmarshal(data, &prof); err != nil {
		return nil, errors.WrapParse("yaml", source, 0, err)
	}

	base, err := Lookup(prof.Base)
	if err != nil {
		return nil, errors.WrapConfig("profile", "unknown base policy", err)
	}

	p := base.Clone()
	p.Base = base.Name
	p.Name = prof.Name
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}
	if prof.Description != "" {
		p.Description = prof.Description
	}
	for t, table := range prof.AddressRoles {
		if p.AddressRoles[t] == nil {
			p.AddressRoles[t] = make(map[string]string, len(table))
		}
		for token, role := range table {
			p.AddressRoles[t][strings.ToUpper(token)] = strings.ToUpper(role)
		}
	}
	if prof.UnlabeledAddressRole != nil {
		p.UnlabeledAddressRole = *prof.UnlabeledAddressRole
	}
	if prof.UnlabeledAddressRoleRest != nil {
		p.UnlabeledAddressRoleRest = *prof.UnlabeledAddressRoleRest
	}
	for scheme, class := range prof.IdentifierSchemes {
		p.IdentifierSchemes[scheme] = class
	}
	if prof.IdentifierFallback != nil {
		p.IdentifierFallback = *prof.IdentifierFallback
	}
	if prof.NormalizeDates != nil {
		p.NormalizeDates = *prof.NormalizeDates
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile reads a YAML profile from disk.
func LoadFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Resolve selects a policy: a profile path wins over a built-in name.
func Resolve(name, profilePath string) (*Policy, error) {
	if profilePath != "" {
		return LoadFile(profilePath)
	}
	return Lookup(name)
}

// YAML renders the policy as a profile document that Parse accepts.
func (p *Policy) YAML() ([]byte, error) {
	return yaml.MarshalWithOptions(p,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
}
