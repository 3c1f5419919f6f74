//go:build property
// +build property

package record_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agentstation/bodsmap/pkg/record"
)

func fragments(keys []string) []record.Relationship {
	rels := make([]record.Relationship, 0, len(keys))
	for _, k := range keys {
		rels = append(rels, record.Relationship{PointerDomain: "OOR", PointerKey: k, PointerRole: "shareholding"})
	}
	return rels
}

// TestMergeRelationshipConcatenation verifies len(merged) == len(a) + len(b) and order.
func TestMergeRelationshipConcatenation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("relationship lists concatenate in order", prop.ForAll(
		func(a, b []string) bool {
			dst := &record.Record{RecordID: "E1", Relationships: fragments(a)}
			src := &record.Record{RecordID: "E1", Relationships: fragments(b)}
			if err := record.Merge(dst, src); err != nil {
				return false
			}
			if len(dst.Relationships) != len(a)+len(b) {
				return false
			}
			for i, k := range append(append([]string{}, a...), b...) {
				if dst.Relationships[i].PointerKey != k {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestMergeFirstWriterWinsProperty verifies a present field is never overwritten.
func TestMergeFirstWriterWinsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("present scalar fields keep the first value", prop.ForAll(
		func(first, second string) bool {
			dst := &record.Record{RecordID: "E1", RegistrationCountry: first}
			src := &record.Record{RecordID: "E1", RegistrationCountry: second}
			if err := record.Merge(dst, src); err != nil {
				return false
			}
			if first == "" {
				return dst.RegistrationCountry == second
			}
			return dst.RegistrationCountry == first
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
