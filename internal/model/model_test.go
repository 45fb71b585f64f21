package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationString(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{"empty", Location{}, ""},
		{"city state", Location{City: "Austin", State: "TX"}, "Austin, TX"},
		{"all", Location{City: "Leeds", State: " ", Country: "UK"}, "Leeds, UK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.String())
		})
	}
	assert.True(t, Location{}.IsZero())
	assert.False(t, Location{Country: "US"}.IsZero())
}

func TestCompanyRecordKey(t *testing.T) {
	a := CompanyRecord{RawName: "ACME Corp", Name: "ACME"}
	b := CompanyRecord{RawName: "Acme, Inc.", Name: "Acme"}
	assert.Equal(t, a.Key(), b.Key())
}

func TestSearchStagesOrder(t *testing.T) {
	stages := SearchStages()
	assert.Equal(t, StageHomepage, stages[0])
	assert.Equal(t, StageFormatGuess, stages[len(stages)-1])
	assert.NotContains(t, stages, StageExhausted)
}

func TestResolutionResultFound(t *testing.T) {
	assert.False(t, ResolutionResult{}.Found())
	assert.True(t, ResolutionResult{Email: "info@acme.com"}.Found())
}
