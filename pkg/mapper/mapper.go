// Package mapper turns BODS statements into entity-resolution records.
//
// A Mapper is built from a vocabulary policy and a statistics recorder. It is
// stateless between calls, so one Mapper can serve a whole run:
//
//	m := mapper.New(vocab.Register(), stats.NewAggregator())
//	rec := m.Map(statement) // nil when the statement is dropped
package mapper

import (
	"github.com/agentstation/bodsmap/pkg/bods"
	"github.com/agentstation/bodsmap/pkg/constants"
	"github.com/agentstation/bodsmap/pkg/record"
	"github.com/agentstation/bodsmap/pkg/stats"
	"github.com/agentstation/bodsmap/pkg/vocab"
)

// Soft anomalies recorded under the !alert category.
const (
	AlertNoInterests = "no-relationship-interests!"
	AlertNoSubject   = "no-relationship-subject!"
	AlertNoID        = "no-statement-id!"
)

// Informational statistics recorded under the !info category.
const (
	InfoUnknownType        = "unknown-statement-type"
	InfoIdentifierNoValue  = "identifier-without-value"
	InfoIdentifierNoScheme = "identifier-without-scheme"
	InfoDateParseFailure   = "date-parse-failure"
	InfoFieldTypeMismatch  = "field-type-mismatch"
)

// Mapper maps statements under one policy.
type Mapper struct {
	policy *vocab.Policy
	stats  stats.Recorder
}

// New returns a mapper. A nil policy selects the default policy and a nil
// recorder discards statistics.
func New(policy *vocab.Policy, rec stats.Recorder) *Mapper {
	if policy == nil {
		policy, _ = vocab.Lookup(vocab.DefaultPolicy)
	}
	if rec == nil {
		rec = stats.Discard
	}
	return &Mapper{policy: policy, stats: rec}
}

// Policy returns the policy the mapper applies.
func (m *Mapper) Policy() *vocab.Policy {
	return m.policy
}

// Map maps one statement. It returns nil when the statement has an unknown
// type or lacks the identity key it needs. A relationship statement without
// interests yields a record with no relationships, which the cache ignores.
func (m *Mapper) Map(s *bods.Statement) *record.Record {
	if s == nil {
		return nil
	}

	stype := s.Type.String()
	for _, attr := range s.Attributes {
		m.stats.Observe(stats.Raw, "statement_attrs", stype, attr)
	}
	for _, attr := range s.Mismatches {
		m.stats.ObserveValue(s.ID, stats.Info, InfoFieldTypeMismatch, attr)
	}

	switch s.Type {
	case bods.EntityStatement:
		return m.mapEntity(s)
	case bods.PersonStatement:
		return m.mapPerson(s)
	case bods.OwnershipOrControlStatement:
		return m.mapRelationship(s)
	default:
		m.stats.ObserveValue(stype, stats.Info, InfoUnknownType)
		return nil
	}
}

func (m *Mapper) newRecord(s *bods.Statement, recordType string) *record.Record {
	if s.ID == "" {
		m.stats.ObserveValue(s.Type.String(), stats.Alert, AlertNoID)
		return nil
	}
	return &record.Record{
		DataSource: constants.DataSource,
		RecordID:   s.ID,
		RecordType: recordType,
	}
}

func anchor(id string) record.Relationship {
	return record.Relationship{
		AnchorDomain: constants.RelationshipDomain,
		AnchorKey:    id,
	}
}

func (m *Mapper) mapEntity(s *bods.Statement) *record.Record {
	r := m.newRecord(s, constants.RecordTypeOrganization)
	if r == nil {
		return nil
	}

	r.Names = organizationNames(s)
	r.RegistrationDate = m.date("REGISTRATION_DATE", s.FoundingDate)
	r.Dissolved = m.date("DISSOLVED", s.DissolutionDate)
	if s.IncorporatedInJurisdiction != nil {
		r.RegistrationCountry = s.IncorporatedInJurisdiction.Code
	}
	r.Addresses = m.addresses(s)
	r.Identifiers, r.Links = m.identifiers(s)
	r.Relationships = []record.Relationship{anchor(s.ID)}
	return r
}

func (m *Mapper) mapPerson(s *bods.Statement) *record.Record {
	r := m.newRecord(s, constants.RecordTypePerson)
	if r == nil {
		return nil
	}

	r.PrimaryNameFull, r.Names = m.personNames(s)
	r.PersonType = s.PersonType

	// Either a nationality or a birth date opens the attribute block.
	if s.BirthDate != "" || len(s.Nationalities) > 0 {
		for _, n := range s.Nationalities {
			r.Attributes = append(r.Attributes, record.Feature{Key: "NATIONALITY", Value: n.Code})
		}
		r.DateOfBirth = m.date("DATE_OF_BIRTH", s.BirthDate)
	}

	r.Addresses = m.addresses(s)
	r.Identifiers, r.Links = m.identifiers(s)
	r.Relationships = []record.Relationship{anchor(s.ID)}
	return r
}
