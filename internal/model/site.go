package model

// DomainCandidate is a guessed website domain. Rank 0 is the most likely.
type DomainCandidate struct {
	Domain string `json:"domain"`
	Rank   int    `json:"rank"`
}

// Protocol is the URL scheme a probe succeeded with.
type Protocol string

const (
	ProtocolHTTPS Protocol = "https"
	ProtocolHTTP  Protocol = "http"
)

// ProbeResult is the outcome of a liveness probe against one candidate.
type ProbeResult struct {
	URL        string   `json:"url"`
	Domain     string   `json:"domain"`
	Reachable  bool     `json:"reachable"`
	Protocol   Protocol `json:"protocol"`
	StatusCode int      `json:"status_code"`
}
