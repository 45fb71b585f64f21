package model

import "strings"

// Location holds optional location hints for a company.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// IsZero reports whether no location hint is set.
func (l Location) IsZero() bool {
	return l.City == "" && l.State == "" && l.Country == ""
}

// String renders the location as "City, State, Country" skipping blanks.
func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.State, l.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Field is a passthrough column carried unchanged from input to output.
type Field struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// CompanyRecord is one input row. Name is set once by the normalizer and
// the record is not modified afterwards.
type CompanyRecord struct {
	RawName  string   `json:"raw_name"`
	Name     string   `json:"name,omitempty"`
	Location Location `json:"location"`
	Extra    []Field  `json:"extra,omitempty"`
}

// Key returns the deduplication key for the record.
func (r CompanyRecord) Key() string {
	return strings.ToLower(r.Name)
}
