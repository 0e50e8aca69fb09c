package trace

import "time"

// Outcome classifies how a request was resolved.
type Outcome string

const (
	OutcomeBuiltin     Outcome = "builtin"
	OutcomeMatched     Outcome = "matched"
	OutcomeFallback    Outcome = "fallback"
	OutcomeRateLimited Outcome = "rate_limited"
)

// Entry records one resolution: which stubs were considered, which one was
// selected, and how the request was ultimately answered.
type Entry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Query      string            `json:"query,omitempty"`
	Outcome    Outcome           `json:"outcome"`
	StubID     string            `json:"stub_id,omitempty"`
	Candidates []CandidateResult `json:"candidates,omitempty"`
}

// CandidateResult records the match verdict for a single candidate stub.
type CandidateResult struct {
	StubID           string `json:"stub_id"`
	Matched          bool   `json:"matched"`
	FailedConstraint string `json:"failed_constraint,omitempty"` // "query" or "body"
}
