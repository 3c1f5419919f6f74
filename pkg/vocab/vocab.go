// Package vocab holds the vocabulary tables that translate BODS tokens into
// entity-resolution tokens, grouped into named mapping policies.
//
// A Policy is built once and only read afterwards; all lookups are safe for
// concurrent use.
package vocab

import (
	"strings"

	"github.com/agentstation/bodsmap/pkg/bods"
)

// IDKind is the target identifier family an identifier scheme maps to.
type IDKind string

// Identifier kinds.
const (
	NationalID IDKind = "NATIONAL_ID"
	OtherID    IDKind = "OTHER_ID"
)

// Valid reports whether k is a known identifier kind.
func (k IDKind) Valid() bool {
	return k == NationalID || k == OtherID
}

// IdentifierClass is the translation of one identifier scheme.
type IdentifierClass struct {
	Kind    IDKind `yaml:"kind"`
	Country string `yaml:"country,omitempty"`
}

// Address role tokens.
const (
	RoleBusiness = "BUSINESS"
	RolePrimary  = "PRIMARY"
	RoleOther    = "OTHER"
	RoleUnknown  = "UNKNOWN"
)

// Policy is a named set of vocabulary tables and defaults.
type Policy struct {
	Name        string `yaml:"name"`
	Base        string `yaml:"base,omitempty"`
	Description string `yaml:"description,omitempty"`

	// AddressRoles maps upper-cased address types to roles, per statement type.
	// A statement type without a table passes tokens through unchanged.
	AddressRoles map[bods.StatementType]map[string]string `yaml:"address_roles,omitempty"`

	// UnlabeledAddressRole is assigned to the first address that carries no type.
	UnlabeledAddressRole string `yaml:"unlabeled_address_role"`

	// UnlabeledAddressRoleRest is assigned to later untyped addresses of the
	// same statement. Empty means UnlabeledAddressRole is reused.
	UnlabeledAddressRoleRest string `yaml:"unlabeled_address_role_rest,omitempty"`

	// IdentifierSchemes maps scheme codes to identifier classes.
	IdentifierSchemes map[string]IdentifierClass `yaml:"identifier_schemes"`

	// IdentifierFallback is used for schemes missing from IdentifierSchemes.
	IdentifierFallback IDKind `yaml:"identifier_fallback"`

	// NormalizeDates rewrites dates as YYYY-MM-DD and drops unparseable ones.
	NormalizeDates bool `yaml:"normalize_dates"`
}

// AddressRole resolves the role of an address of a statement. raw is the
// source address type; first reports whether no untyped address of the same
// statement has been seen yet.
func (p *Policy) AddressRole(t bods.StatementType, raw string, first bool) string {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		if !first && p.UnlabeledAddressRoleRest != "" {
			return p.UnlabeledAddressRoleRest
		}
		return p.UnlabeledAddressRole
	}
	if role, ok := p.AddressRoles[t][token]; ok {
		return role
	}
	return token
}

// Identifier resolves the identifier class of a scheme code.
func (p *Policy) Identifier(scheme string) IdentifierClass {
	if class, ok := p.IdentifierSchemes[scheme]; ok {
		return class
	}
	return IdentifierClass{Kind: p.IdentifierFallback}
}

// Clone returns a deep copy that can be modified without affecting p.
func (p *Policy) Clone() *Policy {
	c := *p
	c.AddressRoles = make(map[bods.StatementType]map[string]string, len(p.AddressRoles))
	for t, table := range p.AddressRoles {
		inner := make(map[string]string, len(table))
		for k, v := range table {
			inner[k] = v
		}
		c.AddressRoles[t] = inner
	}
	c.IdentifierSchemes = make(map[string]IdentifierClass, len(p.IdentifierSchemes))
	for k, v := range p.IdentifierSchemes {
		c.IdentifierSchemes[k] = v
	}
	return &c
}

// identifierSchemes is the register scheme table shared by the built-in policies.
func identifierSchemes() map[string]IdentifierClass {
	return map[string]IdentifierClass{
		"DK-CVR":                     {Kind: NationalID, Country: "DNK"},
		"GB-COH":                     {Kind: NationalID, Country: "GBR"},
		"SK-ORSR":                    {Kind: NationalID, Country: "SVK"},
		"UA-EDR":                     {Kind: NationalID, Country: "UKR"},
		"MISC-DENMARK CVR":           {Kind: NationalID, Country: "DNK"},
		"MISC-SLOVAKIA PSP REGISTER": {Kind: NationalID, Country: "SVK"},
	}
}
