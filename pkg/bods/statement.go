// Package bods models the subset of the Beneficial Ownership Data Standard
// statement schema that bodsmap reads. Decoding is lenient: unknown attributes
// are ignored, nothing is validated, and a value of the wrong JSON type is
// coerced or dropped without losing the rest of the statement.
package bods

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
)

// StatementType identifies the kind of a statement.
type StatementType string

// Statement types.
const (
	EntityStatement             StatementType = "entityStatement"
	PersonStatement             StatementType = "personStatement"
	OwnershipOrControlStatement StatementType = "ownershipOrControlStatement"
)

// String returns the raw token, or "none" when the statement carried no type.
func (s StatementType) String() string {
	if s == "" {
		return "none"
	}
	return string(s)
}

// Known reports whether the type is one of the three mapped statement kinds.
func (s StatementType) Known() bool {
	switch s {
	case EntityStatement, PersonStatement, OwnershipOrControlStatement:
		return true
	}
	return false
}

// Statement is one decoded input line.
type Statement struct {
	Type StatementType `json:"statementType"`
	ID   string        `json:"statementID"`

	// entity
	Name                       string        `json:"name"`
	AlternateNames             []string      `json:"alternateNames"`
	EntityType                 string        `json:"entityType"`
	FoundingDate               string        `json:"foundingDate"`
	DissolutionDate            string        `json:"dissolutionDate"`
	IncorporatedInJurisdiction *Jurisdiction `json:"incorporatedInJurisdiction"`

	// person
	PersonType    string         `json:"personType"`
	Names         []Name         `json:"names"`
	Nationalities []Jurisdiction `json:"nationalities"`
	BirthDate     string         `json:"birthDate"`

	// shared
	Addresses   []Address    `json:"addresses"`
	Identifiers []Identifier `json:"identifiers"`

	// ownership or control
	Subject         *Subject         `json:"subject"`
	InterestedParty *InterestedParty `json:"interestedParty"`
	Interests       []Interest       `json:"interests"`

	// Attributes lists the top-level keys present on the source line, sorted.
	Attributes []string `json:"-"`

	// Mismatches lists the top-level attributes whose value had an unexpected
	// JSON type, sorted.
	Mismatches []string `json:"-"`
}

// Jurisdiction is a named country or region with its code.
type Jurisdiction struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Name is one entry of a person's names list.
type Name struct {
	Type       string `json:"type"`
	FullName   string `json:"fullName"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
}

// Address is one postal address.
type Address struct {
	Type     string `json:"type"`
	Address  string `json:"address"`
	PostCode string `json:"postCode"`
	Country  string `json:"country"`
}

// Identifier is a register identifier or a link to a register page.
type Identifier struct {
	ID         string `json:"id"`
	Scheme     string `json:"scheme"`
	SchemeName string `json:"schemeName"`
	URI        string `json:"uri"`
}

// Subject points at the entity or person a relationship is about.
type Subject struct {
	DescribedByEntityStatement string `json:"describedByEntityStatement"`
	DescribedByPersonStatement string `json:"describedByPersonStatement"`
}

// Key returns the described-by statement ID, preferring the entity reference.
func (s *Subject) Key() string {
	if s == nil {
		return ""
	}
	if s.DescribedByEntityStatement != "" {
		return s.DescribedByEntityStatement
	}
	return s.DescribedByPersonStatement
}

// InterestedParty points at the holder of an interest.
type InterestedParty struct {
	DescribedByPersonStatement string       `json:"describedByPersonStatement"`
	DescribedByEntityStatement string       `json:"describedByEntityStatement"`
	Unspecified                *Unspecified `json:"unspecified"`
}

// Key returns the described-by statement ID, preferring the person reference.
func (p *InterestedParty) Key() string {
	if p == nil {
		return ""
	}
	if p.DescribedByPersonStatement != "" {
		return p.DescribedByPersonStatement
	}
	return p.DescribedByEntityStatement
}

// Unspecified explains why an interested party is not identified.
type Unspecified struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// Interest is one ownership or control interest.
type Interest struct {
	Type      string `json:"type"`
	Details   string `json:"details"`
	Share     *Share `json:"share"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Share is the size of an interest in percent.
type Share struct {
	Exact   *float64 `json:"exact"`
	Minimum *float64 `json:"minimum"`
	Maximum *float64 `json:"maximum"`
}

// ExactValue returns the exact share and whether it is set and non-zero.
func (s *Share) ExactValue() (float64, bool) {
	if s == nil || s.Exact == nil || *s.Exact == 0 {
		return 0, false
	}
	return *s.Exact, true
}

// UnmarshalJSON decodes a statement and records which top-level attributes
// were present. Only input that is not a JSON object is an error.
func (s *Statement) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	type plain Statement
	var decoded plain
	var mismatches []string
	if err := json.Unmarshal(data, &decoded); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return err
		}
		decoded = plain{}
		mismatches = decodeLenient(reflect.ValueOf(&decoded).Elem(), keys)
		slices.Sort(mismatches)
	}

	*s = Statement(decoded)
	s.Mismatches = mismatches
	s.Attributes = make([]string, 0, len(keys))
	for k := range keys {
		s.Attributes = append(s.Attributes, k)
	}
	slices.Sort(s.Attributes)
	return nil
}

// Parse decodes one input line into a statement.
func Parse(line []byte) (*Statement, error) {
	var s Statement
	if err := json.Unmarshal(line, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
