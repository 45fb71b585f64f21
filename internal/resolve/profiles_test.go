package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-finder/internal/email"
	"github.com/sells-group/contact-finder/internal/model"
)

func TestLoadProfile(t *testing.T) {
	tests := []struct {
		name       string
		wantGuess  bool
		strictness email.Strictness
		candidates int
	}{
		{"fast", true, email.Lenient, 6},
		{"accurate", false, email.Balanced, 10},
		{"hybrid", true, email.Balanced, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadProfile(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, p.Name)
			assert.Equal(t, tt.strictness, p.Strictness)
			assert.Equal(t, tt.candidates, p.MaxCandidates)
			assert.Equal(t, tt.wantGuess, containsStage(p.Stages, model.StageFormatGuess))
		})
	}
}

func TestLoadProfile_Default(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)
	assert.Equal(t, "hybrid", p.Name)
	assert.ElementsMatch(t, model.SearchStages(), p.Stages)
	assert.True(t, p.Uses("gemini"))
	assert.True(t, p.SearchFallback)
}

func TestLoadProfile_Unknown(t *testing.T) {
	_, err := LoadProfile("thorough")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestProfileNames(t *testing.T) {
	assert.Equal(t, []string{"accurate", "fast", "hybrid"}, ProfileNames())
}

func TestParseProfiles_RejectsUnknownStage(t *testing.T) {
	_, err := parseProfiles([]byte("bad:\n  stages: [homepage, carrier_pigeon]\n"))
	assert.ErrorContains(t, err, "carrier_pigeon")

	_, err = parseProfiles([]byte("bad:\n  strictness: paranoid\n"))
	assert.ErrorContains(t, err, "paranoid")
}

func TestProfileApply(t *testing.T) {
	p, err := LoadProfile("fast")
	require.NoError(t, err)

	opts := DefaultOptions()
	require.NoError(t, p.Apply(&opts))
	assert.InDelta(t, 0.1, opts.Validator.Threshold, 0.0001)
	assert.True(t, opts.enabled(model.StageContactPages))
	assert.False(t, opts.enabled(model.StageSubdomains))
	assert.False(t, p.Uses("anthropic"))
}

func containsStage(stages []model.Stage, s model.Stage) bool {
	for _, x := range stages {
		if x == s {
			return true
		}
	}
	return false
}
