package stub

import (
	"sync/atomic"
	"time"
)

// Stub is a registered response: a canned result plus the query/body
// constraints that gate it. Several stubs may share the same method and path;
// they are told apart only by their constraints. The last-used timestamp is
// the single mutable field and the only thing resolution ever writes.
type Stub struct {
	ID     string
	Method string
	Path   string

	// Query is the query constraint. Nil means any query is accepted.
	Query map[string]string
	// Body is the body constraint, pre-normalized for structural
	// comparison. Nil means any body is accepted.
	Body any

	Result   Result
	Renderer BodyRenderer // non-nil when the response body is a template
	Policy   *Policy

	// Seeded marks stubs loaded from definition files; reload replaces
	// only these, leaving stubs registered through the admin API alone.
	Seeded bool

	lastUsed atomic.Int64 // unix nanos; zero = never selected
}

// LastUsed returns when the stub was last selected. The zero time means
// never, which sorts as oldest.
func (s *Stub) LastUsed() time.Time {
	n := s.lastUsed.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// MarkUsed stamps the stub's last-used timestamp.
func (s *Stub) MarkUsed(t time.Time) {
	s.lastUsed.Store(t.UnixNano())
}

// BodyRenderer renders a response body dynamically. Nil means static body.
type BodyRenderer interface {
	Render(ctx RenderContext) ([]byte, error)
}

// RenderContext provides request data for dynamic body rendering.
type RenderContext struct {
	Method      string
	Path        string
	Headers     map[string]string
	QueryParams map[string]string
	Body        []byte
	Now         string // ISO-8601 timestamp
}

// Policy holds optional per-stub rate limiting and latency simulation.
type Policy struct {
	RateLimit *RateLimit
	Latency   *Latency
}

// RateLimit configures token-bucket rate limiting.
type RateLimit struct {
	Rate  float64
	Burst int
	Key   string
}

// Latency configures response delay simulation.
type Latency struct {
	FixedMs  int
	JitterMs int
}
