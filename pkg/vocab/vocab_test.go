package vocab_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bodsmap/pkg/bods"
	"github.com/agentstation/bodsmap/pkg/errors"
	"github.com/agentstation/bodsmap/pkg/vocab"
)

func TestRegisterAddressRoles(t *testing.T) {
	p := vocab.Register()

	tests := []struct {
		name  string
		typ   bods.StatementType
		raw   string
		first bool
		want  string
	}{
		{"registered entity", bods.EntityStatement, "registered", true, vocab.RoleBusiness},
		{"registered person", bods.PersonStatement, "registered", true, vocab.RolePrimary},
		{"mixed case", bods.EntityStatement, "Registered", true, vocab.RoleBusiness},
		{"unmapped passes through", bods.PersonStatement, "residence", true, "RESIDENCE"},
		{"untyped first", bods.EntityStatement, "", true, vocab.RoleUnknown},
		{"untyped later", bods.EntityStatement, "", false, vocab.RoleUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.AddressRole(tt.typ, tt.raw, tt.first))
		})
	}
}

func TestGenericAddressRoles(t *testing.T) {
	p := vocab.Generic()

	assert.Equal(t, "REGISTERED", p.AddressRole(bods.EntityStatement, "registered", true))
	assert.Equal(t, vocab.RolePrimary, p.AddressRole(bods.EntityStatement, "", true))
	assert.Equal(t, vocab.RoleOther, p.AddressRole(bods.EntityStatement, " ", false))
}

func TestIdentifierLookup(t *testing.T) {
	register := vocab.Register()
	generic := vocab.Generic()

	assert.Equal(t, vocab.IdentifierClass{Kind: vocab.NationalID, Country: "GBR"}, register.Identifier("GB-COH"))
	assert.Equal(t, vocab.IdentifierClass{Kind: vocab.NationalID, Country: "SVK"}, register.Identifier("MISC-SLOVAKIA PSP REGISTER"))
	assert.Equal(t, vocab.IdentifierClass{Kind: vocab.NationalID}, register.Identifier("XI-LEI"))
	assert.Equal(t, vocab.IdentifierClass{Kind: vocab.OtherID}, generic.Identifier("XI-LEI"))
	assert.Equal(t, vocab.IdentifierClass{Kind: vocab.NationalID}, register.Identifier(""))
}

func TestLookup(t *testing.T) {
	p, err := vocab.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, vocab.PolicyRegister, p.Name)

	p, err = vocab.Lookup("GENERIC")
	require.NoError(t, err)
	assert.Equal(t, vocab.PolicyGeneric, p.Name)

	_, err = vocab.Lookup("legacy")
	assert.True(t, errors.IsNotFound(err))

	assert.Equal(t, []string{"generic", "register"}, vocab.Names())
}

func TestLookupReturnsIndependentCopies(t *testing.T) {
	a, err := vocab.Lookup(vocab.PolicyRegister)
	require.NoError(t, err)
	a.IdentifierSchemes["GB-COH"] = vocab.IdentifierClass{Kind: vocab.OtherID}

	b, err := vocab.Lookup(vocab.PolicyRegister)
	require.NoError(t, err)
	assert.Equal(t, vocab.NationalID, b.Identifier("GB-COH").Kind)
}

func TestClone(t *testing.T) {
	p := vocab.Register()
	c := p.Clone()
	c.AddressRoles[bods.EntityStatement]["REGISTERED"] = "MAILING"

	assert.Equal(t, vocab.RoleBusiness, p.AddressRole(bods.EntityStatement, "registered", true))
	assert.Equal(t, "MAILING", c.AddressRole(bods.EntityStatement, "registered", true))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, vocab.Register().Validate())
	assert.NoError(t, vocab.Generic().Validate())

	p := vocab.Register()
	p.IdentifierFallback = "PASSPORT"
	assert.True(t, errors.IsValidationError(p.Validate()))

	p = vocab.Register()
	p.Name = ""
	assert.Error(t, p.Validate())

	p = vocab.Register()
	p.AddressRoles["annotation"] = map[string]string{}
	assert.Error(t, p.Validate())
}

func TestLoadFile(t *testing.T) {
	p, err := vocab.LoadFile(filepath.Join("testdata", "profile.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "denmark", p.Name)
	assert.Equal(t, vocab.IdentifierClass{Kind: vocab.NationalID, Country: "NOR"}, p.Identifier("NO-BRC"))
	assert.Equal(t, vocab.IdentifierClass{Kind: vocab.OtherID}, p.Identifier("XI-LEI"))
	assert.Equal(t, vocab.IdentifierClass{Kind: vocab.NationalID, Country: "GBR"}, p.Identifier("GB-COH"), "base table entries survive")
	assert.Equal(t, vocab.IdentifierClass{Kind: vocab.OtherID}, p.Identifier("ZZ-NEW"))
	assert.Equal(t, "MAILING", p.AddressRole(bods.EntityStatement, "service", true))
	assert.Equal(t, vocab.RoleBusiness, p.AddressRole(bods.EntityStatement, "registered", true))
	assert.Equal(t, vocab.RoleUnknown, p.AddressRole(bods.EntityStatement, "", true))
	assert.False(t, p.NormalizeDates)
}

func TestParseErrors(t *testing.T) {
	t.Run("unknown base", func(t *testing.T) {
		_, err := vocab.Parse([]byte("base: legacy\n"), "p.yaml")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("bad kind", func(t *testing.T) {
		_, err := vocab.Parse([]byte("identifier_fallback: PASSPORT\n"), "p.yaml")
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := vocab.Parse([]byte("identifier_schemes: [\n"), "p.yaml")
		var parseErr *errors.ParseError
		assert.True(t, errors.As(err, &parseErr))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := vocab.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.True(t, errors.IsIOError(err))
	})

	t.Run("name defaults to file stem", func(t *testing.T) {
		p, err := vocab.Parse([]byte("base: generic\n"), "/etc/bodsmap/nordic.yaml")
		require.NoError(t, err)
		assert.Equal(t, "nordic", p.Name)
		assert.True(t, p.NormalizeDates)
	})
}

func TestYAMLRoundTrip(t *testing.T) {
	data, err := vocab.Generic().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "identifier_fallback: OTHER_ID")

	path := filepath.Join(t.TempDir(), "generic.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	p, err := vocab.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, vocab.Generic().IdentifierSchemes, p.IdentifierSchemes)
	assert.Equal(t, vocab.RoleOther, p.UnlabeledAddressRoleRest)
	assert.Equal(t, "REGISTERED", p.AddressRole(bods.EntityStatement, "registered", true))
	assert.Equal(t, vocab.PolicyGeneric, p.Base)
}

func TestResolve(t *testing.T) {
	p, err := vocab.Resolve("generic", "")
	require.NoError(t, err)
	assert.Equal(t, vocab.PolicyGeneric, p.Name)

	p, err = vocab.Resolve("generic", filepath.Join("testdata", "profile.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "denmark", p.Name)
}

func TestConcurrentLookups(t *testing.T) {
	p := vocab.Register()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = p.AddressRole(bods.EntityStatement, "registered", j == 0)
				_ = p.Identifier("GB-COH")
			}
		}()
	}
	wg.Wait()
}
