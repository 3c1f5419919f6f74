// Package record defines the flat entity-resolution record that bodsmap emits,
// together with the per-field merge policy used to fold records that share an
// identity key.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Record is one target record. Empty fields are omitted from JSON output.
type Record struct {
	DataSource          string         `json:"DATA_SOURCE,omitempty"`
	RecordID            string         `json:"RECORD_ID"`
	RecordType          string         `json:"RECORD_TYPE,omitempty"`
	PrimaryNameFull     string         `json:"PRIMARY_NAME_FULL,omitempty"`
	Names               []Feature      `json:"NAMES,omitempty"`
	PersonType          string         `json:"PERSON_TYPE,omitempty"`
	RegistrationDate    string         `json:"REGISTRATION_DATE,omitempty"`
	Dissolved           string         `json:"DISSOLVED,omitempty"`
	RegistrationCountry string         `json:"REGISTRATION_COUNTRY,omitempty"`
	Attributes          []Feature      `json:"ATTRIBUTES,omitempty"`
	DateOfBirth         string         `json:"DATE_OF_BIRTH,omitempty"`
	Addresses           []Address      `json:"ADDRESSES,omitempty"`
	Identifiers         []Identifier   `json:"IDENTIFIERS,omitempty"`
	Links               []Feature      `json:"LINKS,omitempty"`
	Relationships       []Relationship `json:"RELATIONSHIPS,omitempty"`
}

// Feature is a single-key object such as {"PRIMARY_NAME_ORG": "Acme Ltd"} or
// {"OpenOwnership Register": "https://..."}.
type Feature struct {
	Key   string
	Value string
}

// MarshalJSON renders the feature as a one-key object.
func (f Feature) MarshalJSON() ([]byte, error) {
	return marshal(map[string]string{f.Key: f.Value})
}

// marshal is json.Marshal without HTML escaping, so values such as "&" or
// "<" in names and URLs stay literal.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// UnmarshalJSON reads a one-key object.
func (f *Feature) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("feature must have exactly one key, got %d", len(m))
	}
	for k, v := range m {
		f.Key, f.Value = k, v
	}
	return nil
}

// Address is one postal address.
type Address struct {
	Type    string `json:"ADDR_TYPE,omitempty"`
	Full    string `json:"ADDR_FULL,omitempty"`
	Country string `json:"ADDR_COUNTRY,omitempty"`
}

// Identifier is a register identifier. Kind is the attribute prefix
// (NATIONAL_ID or OTHER_ID) used when the identifier is rendered.
type Identifier struct {
	Kind    string
	Number  string
	Type    string
	Country string
}

var identifierSuffixes = []string{"_NUMBER", "_TYPE", "_COUNTRY"}

// MarshalJSON renders the identifier as {KIND_NUMBER, KIND_TYPE, KIND_COUNTRY}.
func (id Identifier) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	for i, v := range []string{id.Number, id.Type, id.Country} {
		if v == "" {
			continue
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(id.Kind + identifierSuffixes[i])
		if err != nil {
			return nil, err
		}
		val, err := marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		n++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the rendered identifier form.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k, v := range m {
		for i, suffix := range identifierSuffixes {
			kind, ok := strings.CutSuffix(k, suffix)
			if !ok {
				continue
			}
			id.Kind = kind
			switch i {
			case 0:
				id.Number = v
			case 1:
				id.Type = v
			case 2:
				id.Country = v
			}
			break
		}
	}
	return nil
}

// Relationship is an anchor fragment (this record is addressable under
// domain/key) or a pointer fragment (this record points to domain/key/role).
type Relationship struct {
	AnchorDomain  string `json:"REL_ANCHOR_DOMAIN,omitempty"`
	AnchorKey     string `json:"REL_ANCHOR_KEY,omitempty"`
	PointerDomain string `json:"REL_POINTER_DOMAIN,omitempty"`
	PointerKey    string `json:"REL_POINTER_KEY,omitempty"`
	PointerRole   string `json:"REL_POINTER_ROLE,omitempty"`
	FromDate      string `json:"REL_POINTER_FROM_DATE,omitempty"`
	ThruDate      string `json:"REL_POINTER_THRU_DATE,omitempty"`
}

// IsAnchor reports whether the fragment is an anchor.
func (r Relationship) IsAnchor() bool {
	return r.AnchorKey != ""
}

// Empty reports whether the record carries nothing to merge: no record type
// and no relationship fragments.
func (r *Record) Empty() bool {
	return r.RecordType == "" && len(r.Relationships) == 0
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.Names = slices.Clone(r.Names)
	c.Attributes = slices.Clone(r.Attributes)
	c.Addresses = slices.Clone(r.Addresses)
	c.Identifiers = slices.Clone(r.Identifiers)
	c.Links = slices.Clone(r.Links)
	c.Relationships = slices.Clone(r.Relationships)
	return &c
}

// Each calls fn for every leaf of the record: once per top-level scalar
// attribute and once per attribute of every list entry.
func (r *Record) Each(fn func(attr, value string)) {
	scalars := []struct{ attr, value string }{
		{"DATA_SOURCE", r.DataSource},
		{"RECORD_ID", r.RecordID},
		{"RECORD_TYPE", r.RecordType},
		{"PRIMARY_NAME_FULL", r.PrimaryNameFull},
		{"PERSON_TYPE", r.PersonType},
		{"REGISTRATION_DATE", r.RegistrationDate},
		{"DISSOLVED", r.Dissolved},
		{"REGISTRATION_COUNTRY", r.RegistrationCountry},
		{"DATE_OF_BIRTH", r.DateOfBirth},
	}
	for _, s := range scalars {
		if s.value != "" {
			fn(s.attr, s.value)
		}
	}

	features := func(list []Feature) {
		for _, f := range list {
			fn(f.Key, f.Value)
		}
	}
	features(r.Names)
	features(r.Attributes)

	for _, a := range r.Addresses {
		emit(fn, "ADDR_TYPE", a.Type)
		emit(fn, "ADDR_FULL", a.Full)
		emit(fn, "ADDR_COUNTRY", a.Country)
	}
	for _, id := range r.Identifiers {
		emit(fn, id.Kind+"_NUMBER", id.Number)
		emit(fn, id.Kind+"_TYPE", id.Type)
		emit(fn, id.Kind+"_COUNTRY", id.Country)
	}
	features(r.Links)
	for _, rel := range r.Relationships {
		emit(fn, "REL_ANCHOR_DOMAIN", rel.AnchorDomain)
		emit(fn, "REL_ANCHOR_KEY", rel.AnchorKey)
		emit(fn, "REL_POINTER_DOMAIN", rel.PointerDomain)
		emit(fn, "REL_POINTER_KEY", rel.PointerKey)
		emit(fn, "REL_POINTER_ROLE", rel.PointerRole)
		emit(fn, "REL_POINTER_FROM_DATE", rel.FromDate)
		emit(fn, "REL_POINTER_THRU_DATE", rel.ThruDate)
	}
}

func emit(fn func(attr, value string), attr, value string) {
	if value != "" {
		fn(attr, value)
	}
}
