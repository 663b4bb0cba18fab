package hashing_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/retain/internal/infrastructure/hashing"
)

func TestNatural(t *testing.T) {
	s := hashing.Natural[string]()

	assert.True(t, s.Equal("IDEA", "IDEA"))
	assert.False(t, s.Equal("IDEA", "idea"))
	assert.Equal(t, s.Hash("IDEA"), s.Hash("IDEA"))
}

func TestNatural_PointerKeysCompareByIdentity(t *testing.T) {
	type key struct{ name string }
	a := &key{name: "same"}
	b := &key{name: "same"}

	s := hashing.Natural[*key]()
	assert.True(t, s.Equal(a, a))
	assert.False(t, s.Equal(a, b))
}

func TestIdentity(t *testing.T) {
	type key struct{ name string }
	a := &key{name: "x"}
	b := &key{name: "x"}

	s := hashing.Identity[key]()
	assert.True(t, s.Equal(a, a))
	assert.False(t, s.Equal(a, b))
	assert.Equal(t, s.Hash(a), s.Hash(a))
}

func TestCaseInsensitive(t *testing.T) {
	s := hashing.CaseInsensitive()

	tests := []struct {
		a, b string
	}{
		{"ab", "AB"},
		{"aB", "Ab"},
		{"Straße", "STRASSE"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.True(t, s.Equal(tt.a, tt.b))
			assert.Equal(t, s.Hash(tt.a), s.Hash(tt.b))
		})
	}

	assert.False(t, s.Equal("ab", "abc"))
}

func TestFuncs(t *testing.T) {
	s := hashing.Funcs(
		func(k string) uint64 {
			if k == "" {
				return 0
			}
			return uint64(strings.ToLower(k)[len(k)-1])
		},
		strings.EqualFold,
	)

	assert.True(t, s.Equal("ab", "AB"))
	assert.Equal(t, s.Hash("ab"), s.Hash("aB"))
	assert.Equal(t, uint64(0), s.Hash(""))
}

func TestSpread(t *testing.T) {
	assert.Equal(t, hashing.Spread(42), hashing.Spread(42))
	assert.NotEqual(t, uint64(1), hashing.Spread(1))
	assert.NotEqual(t, hashing.Spread(1), hashing.Spread(2))
}
