package record

import (
	"slices"

	"github.com/agentstation/bodsmap/pkg/errors"
)

// Policy says how a field of an incoming record is folded into the cached one.
type Policy int

const (
	// OverwriteIfAbsent copies the incoming value only when the cached record
	// has none. The first writer wins.
	OverwriteIfAbsent Policy = iota

	// AlwaysAppend concatenates the incoming list after the cached one.
	AlwaysAppend
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case OverwriteIfAbsent:
		return "overwrite-if-absent"
	case AlwaysAppend:
		return "always-append"
	default:
		return "unknown"
	}
}

// Field is one row of the merge policy table.
type Field struct {
	Name    string
	Policy  Policy
	present func(*Record) bool
	take    func(dst, src *Record)
}

func scalar(name string, get func(*Record) *string) Field {
	return Field{
		Name:    name,
		Policy:  OverwriteIfAbsent,
		present: func(r *Record) bool { return *get(r) != "" },
		take:    func(dst, src *Record) { *get(dst) = *get(src) },
	}
}

func list[T any](name string, policy Policy, get func(*Record) *[]T) Field {
	f := Field{
		Name:    name,
		Policy:  policy,
		present: func(r *Record) bool { return len(*get(r)) > 0 },
	}
	switch policy {
	case AlwaysAppend:
		f.take = func(dst, src *Record) { *get(dst) = append(*get(dst), *get(src)...) }
	default:
		f.take = func(dst, src *Record) { *get(dst) = slices.Clone(*get(src)) }
	}
	return f
}

// Fields is the merge policy table. RECORD_ID is the identity key and is not listed.
var Fields = []Field{
	scalar("DATA_SOURCE", func(r *Record) *string { return &r.DataSource }),
	scalar("RECORD_TYPE", func(r *Record) *string { return &r.RecordType }),
	scalar("PRIMARY_NAME_FULL", func(r *Record) *string { return &r.PrimaryNameFull }),
	list("NAMES", OverwriteIfAbsent, func(r *Record) *[]Feature { return &r.Names }),
	scalar("PERSON_TYPE", func(r *Record) *string { return &r.PersonType }),
	scalar("REGISTRATION_DATE", func(r *Record) *string { return &r.RegistrationDate }),
	scalar("DISSOLVED", func(r *Record) *string { return &r.Dissolved }),
	scalar("REGISTRATION_COUNTRY", func(r *Record) *string { return &r.RegistrationCountry }),
	list("ATTRIBUTES", OverwriteIfAbsent, func(r *Record) *[]Feature { return &r.Attributes }),
	scalar("DATE_OF_BIRTH", func(r *Record) *string { return &r.DateOfBirth }),
	list("ADDRESSES", OverwriteIfAbsent, func(r *Record) *[]Address { return &r.Addresses }),
	list("IDENTIFIERS", OverwriteIfAbsent, func(r *Record) *[]Identifier { return &r.Identifiers }),
	list("LINKS", OverwriteIfAbsent, func(r *Record) *[]Feature { return &r.Links }),
	list("RELATIONSHIPS", AlwaysAppend, func(r *Record) *[]Relationship { return &r.Relationships }),
}

// PolicyOf returns the merge policy of the named attribute.
func PolicyOf(name string) (Policy, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f.Policy, true
		}
	}
	return 0, false
}

// Merge folds src into dst according to Fields. Both records must carry the
// same RECORD_ID. src is not modified and dst never aliases src's lists.
func Merge(dst, src *Record) error {
	if dst.RecordID != src.RecordID {
		return errors.NewMergeError(dst.RecordID, src.RecordID, nil)
	}
	for _, f := range Fields {
		if !f.present(src) {
			continue
		}
		if f.Policy == OverwriteIfAbsent && f.present(dst) {
			continue
		}
		f.take(dst, src)
	}
	return nil
}
