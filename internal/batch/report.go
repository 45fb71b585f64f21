package batch

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-finder/internal/model"
)

// ErrDeadline is reported when the batch budget ran out before every
// company was attempted.
var ErrDeadline = eris.New("batch: deadline exceeded")

// SkipReason says why an input row was not attempted.
type SkipReason string

const (
	SkipInvalid     SkipReason = "invalid"
	SkipDuplicate   SkipReason = "duplicate"
	SkipOverCap     SkipReason = "over_cap"
	SkipUnprocessed SkipReason = "unprocessed"
)

// Skip is an input row that produced no result.
type Skip struct {
	Row     int        `json:"row"`
	Company string     `json:"company"`
	Reason  SkipReason `json:"reason"`
}

// Report is the outcome of one batch run. Results are in input order.
type Report struct {
	RunID            string                   `json:"run_id"`
	Results          []model.ResolutionResult `json:"results"`
	Skipped          []Skip                   `json:"skipped,omitempty"`
	Attempted        int                      `json:"attempted"`
	Found            int                      `json:"found"`
	Guessed          int                      `json:"guessed"`
	Errors           int                      `json:"errors"`
	Invalid          int                      `json:"invalid"`
	Duplicates       int                      `json:"duplicates"`
	OverCap          int                      `json:"over_cap"`
	Unprocessed      int                      `json:"unprocessed"`
	DeadlineExceeded bool                     `json:"deadline_exceeded"`
	StartedAt        time.Time                `json:"started_at"`
	FinishedAt       time.Time                `json:"finished_at"`
}

// FoundPercent is the share of attempted companies with an email, 0-100.
func (r *Report) FoundPercent() float64 {
	if r.Attempted == 0 {
		return 0
	}
	return float64(r.Found) * 100 / float64(r.Attempted)
}

// ErrorRate is the share of attempted companies that failed unexpectedly.
func (r *Report) ErrorRate() float64 {
	if r.Attempted == 0 {
		return 0
	}
	return float64(r.Errors) / float64(r.Attempted)
}

// Duration is the wall-clock time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Err returns ErrDeadline when the run stopped early, else nil.
func (r *Report) Err() error {
	if r.DeadlineExceeded {
		return eris.Wrapf(ErrDeadline, "%d companies unprocessed", r.Unprocessed)
	}
	return nil
}

func (r *Report) skip(row int, name string, reason SkipReason) {
	r.Skipped = append(r.Skipped, Skip{Row: row, Company: name, Reason: reason})
	switch reason {
	case SkipInvalid:
		r.Invalid++
	case SkipDuplicate:
		r.Duplicates++
	case SkipOverCap:
		r.OverCap++
	case SkipUnprocessed:
		r.Unprocessed++
	}
}
