package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictness_Threshold(t *testing.T) {
	for s, want := range map[Strictness]float64{Lenient: 0.1, Balanced: 0.2, Strict: 0.3, "": 0.2} {
		got, err := s.Threshold()
		require.NoError(t, err)
		assert.InDelta(t, want, got, 0.0001)
	}
	_, err := Strictness("paranoid").Threshold()
	assert.Error(t, err)
}

func TestValidator_Check(t *testing.T) {
	v, err := NewValidator(Balanced)
	require.NoError(t, err)

	words := []string{"blue", "ridge", "coffee"}

	tests := []struct {
		name     string
		text     string
		url      string
		words    []string
		accepted bool
		exempt   bool
	}{
		{"all words", "Welcome to Blue Ridge Coffee roasters", "https://blueridgecoffee.com", words, true, false},
		{"one of three", "Fresh coffee daily", "https://blueridgecoffee.com", words, true, false},
		{"no words", "Acme Plumbing LLC", "https://blueridgecoffee.com", words, false, false},
		{"no words on contact page", "Acme Plumbing LLC", "https://blueridgecoffee.com/contact", words, false, false},
		{"contact page with one word", "Coffee questions?", "https://x.com/contact-us", []string{"blue", "ridge", "coffee", "roasters", "supply", "company"}, true, true},
		{"single word name", "Nothing relevant", "https://acme.com", []string{"acme"}, true, true},
		{"accents folded", "Bienvenue au Café Olé", "https://cafeole.com", []string{"cafe", "ole"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Check(tt.text, tt.url, tt.words)
			assert.Equal(t, tt.accepted, got.Accepted)
			assert.Equal(t, tt.exempt, got.Exempt)
		})
	}
}

func TestValidator_ZeroMatchesAlwaysRejected(t *testing.T) {
	v := &Validator{Threshold: 0}
	for _, words := range [][]string{{"alpha", "beta"}, {"alpha", "beta", "gamma", "delta"}} {
		got := v.Check("nothing in common here", "https://x.com/contact", words)
		assert.False(t, got.Accepted)
		assert.Zero(t, got.Ratio)
	}
}

func TestValidator_StrictRejectsLowRatio(t *testing.T) {
	v, err := NewValidator(Strict)
	require.NoError(t, err)
	words := []string{"north", "star", "marine", "supply"}

	got := v.Check("marine parts", "https://northstar.com/about", words)
	assert.False(t, got.Accepted)
	assert.InDelta(t, 0.25, got.Ratio, 0.0001)
}
