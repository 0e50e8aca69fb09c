package usecases

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/sophialabs/replayd/internal/domain/match"
	"github.com/sophialabs/replayd/internal/domain/stub"
	"github.com/sophialabs/replayd/internal/domain/trace"
	"github.com/sophialabs/replayd/internal/infrastructure/ports"
	"github.com/sophialabs/replayd/internal/infrastructure/services"
)

// ResolveResult is the outcome of resolving a request to a handler result.
type ResolveResult struct {
	Outcome    trace.Outcome
	Result     *stub.Result
	TraceEntry trace.Entry
}

// ResolveUseCase selects exactly one handler result for each incoming
// request: builtins first, then the least-recently-used matching stub, then
// the fallback. Selecting a stub stamps its last-used timestamp; no other
// branch touches the registry.
type ResolveUseCase struct {
	matcher     *match.Matcher
	store       stub.Store
	builtins    stub.Builtins
	fallback    stub.Result
	clock       ports.Clock
	rateLimiter ports.RateLimiter
	logger      ports.Logger
	traceBuf    *trace.RingBuffer
}

// NewResolveUseCase creates a new use case. fallback is returned verbatim
// when nothing matches; a zero fallback defaults to a bare 200.
func NewResolveUseCase(
	matcher *match.Matcher,
	store stub.Store,
	builtins stub.Builtins,
	fallback stub.Result,
	clock ports.Clock,
	rateLimiter ports.RateLimiter,
	logger ports.Logger,
	traceBuf *trace.RingBuffer,
) *ResolveUseCase {
	if fallback.Status == 0 {
		fallback.Status = 200
	}
	return &ResolveUseCase{
		matcher:     matcher,
		store:       store,
		builtins:    builtins,
		fallback:    fallback,
		clock:       clock,
		rateLimiter: rateLimiter,
		logger:      logger,
		traceBuf:    traceBuf,
	}
}

// Execute resolves the request. The returned error is always one of the
// request-processing failure classes (a template render failure surfaces as a
// RuntimeError); resolution itself cannot fail.
func (uc *ResolveUseCase) Execute(ctx context.Context, req *match.Request) (ResolveResult, error) {
	entry := trace.Entry{
		Timestamp: uc.clock.Now(),
		Method:    req.Method,
		Path:      req.Path,
		Query:     services.EncodeQuery(req.Query),
	}

	// Builtin handlers are unconditional and never consult the registry.
	if builtin := uc.builtins.Lookup(req.Method, req.Path); builtin != nil {
		entry.Outcome = trace.OutcomeBuiltin
		uc.traceBuf.Add(entry)
		return ResolveResult{Outcome: trace.OutcomeBuiltin, Result: builtin, TraceEntry: entry}, nil
	}

	candidates := uc.store.Lookup(req.Method, req.Path)
	matching := make([]*stub.Stub, 0, len(candidates))
	for _, c := range candidates {
		cr := trace.CandidateResult{StubID: c.ID, Matched: true}
		switch {
		case !uc.matcher.QueryMatches(req.Query, c.Query):
			cr.Matched = false
			cr.FailedConstraint = "query"
		case !uc.matcher.BodyMatches(req.Body, c.Body):
			cr.Matched = false
			cr.FailedConstraint = "body"
		default:
			matching = append(matching, c)
		}
		entry.Candidates = append(entry.Candidates, cr)
	}

	if len(matching) == 0 {
		uc.logger.Debug("no stub matched", "method", req.Method, "path", req.Path, "candidates", len(candidates))
		entry.Outcome = trace.OutcomeFallback
		uc.traceBuf.Add(entry)
		fallback := uc.fallback
		return ResolveResult{Outcome: trace.OutcomeFallback, Result: &fallback, TraceEntry: entry}, nil
	}

	// Least-recently-used first; the stable sort keeps registration order
	// as the tie-break, so selection is deterministic. Never-used stubs
	// carry the zero time and therefore win.
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].LastUsed().Before(matching[j].LastUsed())
	})
	selected := matching[0]
	entry.StubID = selected.ID

	if limited := uc.checkRateLimit(ctx, selected); limited {
		entry.Outcome = trace.OutcomeRateLimited
		uc.traceBuf.Add(entry)
		return ResolveResult{Outcome: trace.OutcomeRateLimited, TraceEntry: entry}, nil
	}

	// The one side effect of resolution: stamp the selected stub so the
	// next resolution of the same request rotates to its siblings.
	uc.store.RecordUse(selected, uc.clock.Now())

	uc.simulateLatency(ctx, selected)

	result, err := uc.buildResult(req, selected)
	if err != nil {
		return ResolveResult{TraceEntry: entry}, err
	}

	entry.Outcome = trace.OutcomeMatched
	uc.traceBuf.Add(entry)
	return ResolveResult{Outcome: trace.OutcomeMatched, Result: result, TraceEntry: entry}, nil
}

func (uc *ResolveUseCase) checkRateLimit(ctx context.Context, s *stub.Stub) bool {
	if s.Policy == nil || s.Policy.RateLimit == nil {
		return false
	}
	rl := s.Policy.RateLimit
	key := rl.Key
	if key == "" {
		key = s.ID
	}
	if uc.rateLimiter.Allow(ctx, key, rl.Rate, rl.Burst) {
		return false
	}
	uc.logger.Debug("rate limited", "stub", s.ID, "key", key)
	return true
}

func (uc *ResolveUseCase) simulateLatency(ctx context.Context, s *stub.Stub) {
	if s.Policy == nil || s.Policy.Latency == nil {
		return
	}
	lat := s.Policy.Latency
	delay := time.Duration(lat.FixedMs) * time.Millisecond
	if lat.JitterMs > 0 {
		delay += time.Duration(rand.IntN(lat.JitterMs)) * time.Millisecond
	}
	if delay > 0 {
		if err := uc.clock.SleepContext(ctx, delay); err != nil {
			uc.logger.Debug("latency sleep cancelled", "stub", s.ID, "error", err)
		}
	}
}

// buildResult copies the stub's canned result, rendering the body template
// when one is configured.
func (uc *ResolveUseCase) buildResult(req *match.Request, s *stub.Stub) (*stub.Result, error) {
	result := s.Result
	if s.Renderer == nil {
		return &result, nil
	}

	rendered, err := s.Renderer.Render(stub.RenderContext{
		Method:      req.Method,
		Path:        req.Path,
		Headers:     req.Headers,
		QueryParams: req.Query,
		Body:        req.RawBody,
		Now:         uc.clock.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, services.NewRuntimeError("template render failed for stub " + s.ID + ": " + err.Error())
	}

	headers := make(map[string]string, len(result.Headers)+1)
	if _, ok := result.Headers["Content-Type"]; !ok {
		headers["Content-Type"] = services.InferContentType("", rendered)
	}
	for k, v := range result.Headers {
		headers[k] = v
	}
	result.Headers = headers
	result.Body = rendered
	return &result, nil
}
