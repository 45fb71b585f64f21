package model

// EmailCategory marks whether an address has a business prefix.
type EmailCategory string

const (
	CategoryPriority EmailCategory = "priority"
	CategoryOther    EmailCategory = "other"
)

// ExtractedEmail is one surviving address found on a page.
type ExtractedEmail struct {
	Address   string        `json:"address"`
	SourceURL string        `json:"source_url"`
	Category  EmailCategory `json:"category"`
}

// Stage is a state of the resolution fallback chain.
type Stage string

const (
	StageNoWebsite     Stage = "no_website"
	StageHomepage      Stage = "homepage"
	StageContactPages  Stage = "contact_pages"
	StageDynamicLinks  Stage = "dynamic_links"
	StageSubdomains    Stage = "subdomains"
	StageSocialProfile Stage = "social_profile"
	StageFormatGuess   Stage = "format_guess"
	StageExhausted     Stage = "exhausted"
)

// SearchStages returns the content stages in visit order.
func SearchStages() []Stage {
	return []Stage{
		StageHomepage,
		StageContactPages,
		StageDynamicLinks,
		StageSubdomains,
		StageSocialProfile,
		StageFormatGuess,
	}
}

// MissKind explains why a stage produced no accepted email.
type MissKind string

const (
	MissNone         MissKind = ""
	MissUnreachable  MissKind = "unreachable"
	MissNoEmail      MissKind = "no_email"
	MissLowRelevance MissKind = "low_relevance"
	MissDisabled     MissKind = "disabled"
)

// StageReport records what a single stage attempt did.
type StageReport struct {
	Stage Stage    `json:"stage"`
	URL   string   `json:"url,omitempty"`
	Miss  MissKind `json:"miss,omitempty"`
}

// ResolutionResult is the terminal output for one CompanyRecord.
type ResolutionResult struct {
	Company  string        `json:"company"`
	Email    string        `json:"email"`
	Evidence string        `json:"evidence"`
	Error    string        `json:"error,omitempty"`
	Stage    Stage         `json:"stage"`
	Website  string        `json:"website,omitempty"`
	Guessed  bool          `json:"guessed,omitempty"`
	Extra    []Field       `json:"extra,omitempty"`
	Trace    []StageReport `json:"trace,omitempty"`
}

// Found reports whether an email was resolved.
func (r ResolutionResult) Found() bool {
	return r.Email != ""
}
