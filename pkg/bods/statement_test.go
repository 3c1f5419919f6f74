package bods_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bodsmap/pkg/bods"
)

func TestParseEntityStatement(t *testing.T) {
	line := []byte(`{"statementType":"entityStatement","statementID":"E1","name":"Acme Ltd",
		"incorporatedInJurisdiction":{"name":"United Kingdom","code":"GB"},
		"addresses":[{"address":"1 Main St","country":"GB","type":"registered"}],
		"identifiers":[{"scheme":"GB-COH","id":"0123"}],"publicationDetails":{"publisher":{"name":"x"}}}`)

	s, err := bods.Parse(line)
	require.NoError(t, err)

	assert.Equal(t, bods.EntityStatement, s.Type)
	assert.Equal(t, "E1", s.ID)
	assert.Equal(t, "Acme Ltd", s.Name)
	require.NotNil(t, s.IncorporatedInJurisdiction)
	assert.Equal(t, "GB", s.IncorporatedInJurisdiction.Code)
	require.Len(t, s.Addresses, 1)
	assert.Equal(t, "registered", s.Addresses[0].Type)
	assert.Equal(t, []string{
		"addresses", "identifiers", "incorporatedInJurisdiction", "name",
		"publicationDetails", "statementID", "statementType",
	}, s.Attributes)
}

func TestParseRelationshipStatement(t *testing.T) {
	line := []byte(`{"statementType":"ownershipOrControlStatement","statementID":"R1",
		"subject":{"describedByEntityStatement":"E1"},
		"interestedParty":{"describedByPersonStatement":"P1"},
		"interests":[{"type":"shareholding","share":{"exact":51.2}},{"type":"voting-rights","share":{"exact":0}}]}`)

	s, err := bods.Parse(line)
	require.NoError(t, err)

	assert.Equal(t, "E1", s.Subject.Key())
	assert.Equal(t, "P1", s.InterestedParty.Key())
	require.Len(t, s.Interests, 2)

	v, ok := s.Interests[0].Share.ExactValue()
	assert.True(t, ok)
	assert.InDelta(t, 51.2, v, 1e-9)

	_, ok = s.Interests[1].Share.ExactValue()
	assert.False(t, ok, "a zero share carries no suffix")
}

func TestPartyKeys(t *testing.T) {
	var nilSubject *bods.Subject
	assert.Equal(t, "", nilSubject.Key())

	assert.Equal(t, "P9", (&bods.Subject{DescribedByPersonStatement: "P9"}).Key())
	assert.Equal(t, "E2", (&bods.InterestedParty{DescribedByEntityStatement: "E2"}).Key())
	assert.Equal(t, "", (&bods.InterestedParty{Unspecified: &bods.Unspecified{Reason: "unknown"}}).Key())

	var nilShare *bods.Share
	_, ok := nilShare.ExactValue()
	assert.False(t, ok)
}

func TestStatementType(t *testing.T) {
	assert.Equal(t, "none", bods.StatementType("").String())
	assert.True(t, bods.PersonStatement.Known())
	assert.False(t, bods.StatementType("annotation").Known())
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := bods.Parse([]byte(`{"statementType":`))
	assert.Error(t, err)

	_, err = bods.Parse([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestParseMistypedValues(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		mismatches []string
		check      func(t *testing.T, s *bods.Statement)
	}{
		{
			name:       "numeric founding date",
			line:       `{"statementType":"entityStatement","statementID":"E1","name":"A","foundingDate":2001}`,
			mismatches: []string{"foundingDate"},
			check: func(t *testing.T, s *bods.Statement) {
				assert.Equal(t, "E1", s.ID)
				assert.Equal(t, "A", s.Name)
				assert.Equal(t, "2001", s.FoundingDate)
			},
		},
		{
			name:       "numeric statement id",
			line:       `{"statementType":"personStatement","statementID":123,"names":[{"fullName":"Jo"}]}`,
			mismatches: []string{"statementID"},
			check: func(t *testing.T, s *bods.Statement) {
				assert.Equal(t, "123", s.ID)
				require.Len(t, s.Names, 1)
				assert.Equal(t, "Jo", s.Names[0].FullName)
			},
		},
		{
			name:       "nested leaf keeps its siblings",
			line:       `{"statementType":"entityStatement","statementID":"E1","addresses":[{"address":"1 Main St","country":826,"type":true}]}`,
			mismatches: []string{"addresses"},
			check: func(t *testing.T, s *bods.Statement) {
				require.Len(t, s.Addresses, 1)
				assert.Equal(t, "1 Main St", s.Addresses[0].Address)
				assert.Equal(t, "826", s.Addresses[0].Country)
				assert.Equal(t, "true", s.Addresses[0].Type)
			},
		},
		{
			name:       "share given as a string",
			line:       `{"statementType":"ownershipOrControlStatement","subject":{"describedByEntityStatement":"E1"},"interests":[{"type":"shareholding","share":{"exact":"51.2"}}]}`,
			mismatches: []string{"interests"},
			check: func(t *testing.T, s *bods.Statement) {
				require.Len(t, s.Interests, 1)
				exact, ok := s.Interests[0].Share.ExactValue()
				assert.True(t, ok)
				assert.InDelta(t, 51.2, exact, 1e-9)
				assert.Equal(t, "E1", s.Subject.Key())
			},
		},
		{
			name:       "object where a list is expected",
			line:       `{"statementType":"entityStatement","statementID":"E1","identifiers":{"id":"1"},"name":["A"]}`,
			mismatches: []string{"identifiers", "name"},
			check: func(t *testing.T, s *bods.Statement) {
				assert.Empty(t, s.Identifiers)
				assert.Empty(t, s.Name)
				assert.Equal(t, "E1", s.ID)
			},
		},
		{
			name: "well typed",
			line: `{"statementType":"entityStatement","statementID":"E1","foundingDate":null}`,
			check: func(t *testing.T, s *bods.Statement) {
				assert.Empty(t, s.FoundingDate)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := bods.Parse([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.mismatches, s.Mismatches)
			tt.check(t, s)
		})
	}
}
