package resolve

import (
	_ "embed"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/contact-finder/internal/email"
	"github.com/sells-group/contact-finder/internal/model"
)

//go:embed profiles.yaml
var profilesYAML []byte

// DefaultProfile is used when no strategy is configured.
const DefaultProfile = "hybrid"

// ErrUnknownProfile is returned for a strategy name with no profile.
var ErrUnknownProfile = eris.New("resolve: unknown profile")

// Profile is a named resolution strategy.
type Profile struct {
	Name           string           `yaml:"-"`
	Description    string           `yaml:"description"`
	Stages         []model.Stage    `yaml:"stages"`
	MaxCandidates  int              `yaml:"max_candidates"`
	Strictness     email.Strictness `yaml:"strictness"`
	Suggesters     []string         `yaml:"suggesters"`
	SearchFallback bool             `yaml:"search_fallback"`
}

func parseProfiles(data []byte) (map[string]Profile, error) {
	var raw map[string]Profile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "resolve: parse profiles")
	}
	known := make(map[model.Stage]struct{})
	for _, s := range model.SearchStages() {
		known[s] = struct{}{}
	}
	for name, p := range raw {
		p.Name = name
		for _, s := range p.Stages {
			if _, ok := known[s]; !ok {
				return nil, eris.Errorf("resolve: profile %q: unknown stage %q", name, s)
			}
		}
		if _, err := p.Strictness.Threshold(); err != nil {
			return nil, eris.Wrapf(err, "resolve: profile %q", name)
		}
		raw[name] = p
	}
	return raw, nil
}

// LoadProfile returns the built-in profile called name. An empty name
// selects DefaultProfile.
func LoadProfile(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	all, err := parseProfiles(profilesYAML)
	if err != nil {
		return Profile{}, err
	}
	p, ok := all[name]
	if !ok {
		return Profile{}, eris.Wrapf(ErrUnknownProfile, "%q", name)
	}
	return p, nil
}

// ProfileNames lists the built-in profiles, sorted.
func ProfileNames() []string {
	all, err := parseProfiles(profilesYAML)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply sets the profile's stages and relevance threshold on opts.
func (p Profile) Apply(opts *Options) error {
	v, err := email.NewValidator(p.Strictness)
	if err != nil {
		return err
	}
	opts.Stages = append([]model.Stage(nil), p.Stages...)
	opts.Validator = v
	return nil
}

// Uses reports whether the profile enables the named suggester.
func (p Profile) Uses(suggester string) bool {
	for _, s := range p.Suggesters {
		if s == suggester {
			return true
		}
	}
	return false
}
