package record

import (
	"slices"
	"strings"
)

// Prune removes blank leaves: whitespace-only strings are cleared, features
// with a blank value are dropped, and list entries left with no content are
// removed. Non-blank values are kept verbatim.
func (r *Record) Prune() {
	for _, s := range []*string{
		&r.DataSource, &r.RecordType, &r.PrimaryNameFull, &r.PersonType,
		&r.RegistrationDate, &r.Dissolved, &r.RegistrationCountry, &r.DateOfBirth,
	} {
		*s = clean(*s)
	}

	r.Names = pruneFeatures(r.Names)
	r.Attributes = pruneFeatures(r.Attributes)
	r.Links = pruneFeatures(r.Links)

	for i := range r.Addresses {
		a := &r.Addresses[i]
		a.Type, a.Full, a.Country = clean(a.Type), clean(a.Full), clean(a.Country)
	}
	r.Addresses = slices.DeleteFunc(r.Addresses, func(a Address) bool {
		return a == Address{}
	})

	for i := range r.Identifiers {
		id := &r.Identifiers[i]
		id.Number, id.Type, id.Country = clean(id.Number), clean(id.Type), clean(id.Country)
	}
	r.Identifiers = slices.DeleteFunc(r.Identifiers, func(id Identifier) bool {
		return id.Number == "" && id.Type == "" && id.Country == ""
	})

	for i := range r.Relationships {
		rel := &r.Relationships[i]
		for _, s := range []*string{
			&rel.AnchorDomain, &rel.AnchorKey, &rel.PointerDomain, &rel.PointerKey,
			&rel.PointerRole, &rel.FromDate, &rel.ThruDate,
		} {
			*s = clean(*s)
		}
	}
	r.Relationships = slices.DeleteFunc(r.Relationships, func(rel Relationship) bool {
		return rel == Relationship{}
	})
}

func pruneFeatures(list []Feature) []Feature {
	return slices.DeleteFunc(list, func(f Feature) bool {
		return clean(f.Key) == "" || clean(f.Value) == ""
	})
}

func clean(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
