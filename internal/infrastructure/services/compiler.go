package services

import (
	"fmt"
	"strings"

	"github.com/sophialabs/replayd/internal/domain/match"
	"github.com/sophialabs/replayd/internal/domain/stub"
)

// TemplateRegistry compiles template sources into body renderers by engine name.
type TemplateRegistry interface {
	Compile(engine, name, source string) (stub.BodyRenderer, error)
}

// Compiler transforms stub definitions into registrable stubs: it validates
// the canned response, coerces constraints into their matchable shapes, and
// compiles template bodies.
type Compiler struct {
	registry  TemplateRegistry // nil means no template support
	responder *Responder
}

// NewCompiler creates a new Compiler. registry may be nil, in which case
// definitions with an engine field fail to compile.
func NewCompiler(registry TemplateRegistry) *Compiler {
	return &Compiler{
		registry:  registry,
		responder: NewResponder(),
	}
}

// Compile turns a Definition into a Stub, or fails with a reason suitable for
// surfacing to whoever registered it.
func (c *Compiler) Compile(d *stub.Definition) (*stub.Stub, error) {
	if d.Method == "" {
		return nil, fmt.Errorf("stub %q: method is required", d.ID)
	}
	if d.Path == "" || !strings.HasPrefix(d.Path, "/") {
		return nil, fmt.Errorf("stub %q: path is required and must start with /", d.ID)
	}

	result := stub.Result{
		Status:  d.Response.Status,
		Headers: d.Response.Headers,
	}
	if err := c.responder.Validate(&result); err != nil {
		return nil, fmt.Errorf("stub %q: %w", d.ID, err)
	}

	s := &stub.Stub{
		ID:     d.ID,
		Method: strings.ToUpper(d.Method),
		Path:   d.Path,
		Query:  coerceQuery(d.Query),
		Body:   match.Normalize(d.Body),
		Result: result,
	}

	if err := c.compileBody(d, s); err != nil {
		return nil, err
	}

	if d.Policy != nil {
		s.Policy = compilePolicy(d.Policy)
	}
	return s, nil
}

func (c *Compiler) compileBody(d *stub.Definition, s *stub.Stub) error {
	body := d.Response.Body
	if d.Response.Engine == "" {
		switch b := body.(type) {
		case nil:
		case string:
			s.Result.Body = b
		default:
			s.Result.Body = match.Normalize(b)
		}
		return nil
	}

	if c.registry == nil {
		return fmt.Errorf("stub %q: template engine %q requested but no registry configured", d.ID, d.Response.Engine)
	}
	source, ok := body.(string)
	if !ok {
		return fmt.Errorf("stub %q: template bodies must be strings, got %T", d.ID, body)
	}
	name := d.ID
	if name == "" {
		name = "inline"
	}
	renderer, err := c.registry.Compile(d.Response.Engine, name, source)
	if err != nil {
		return fmt.Errorf("stub %q: failed to compile template: %w", d.ID, err)
	}
	s.Renderer = renderer
	return nil
}

// coerceQuery string-coerces constraint values so "1" and 1 constrain alike.
// Presence is preserved: a nil mapping means no constraint, an empty one is a
// present (vacuously satisfied) constraint.
func coerceQuery(q map[string]any) map[string]string {
	if q == nil {
		return nil
	}
	out := make(map[string]string, len(q))
	for k, v := range q {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func compilePolicy(p *stub.PolicyDefinition) *stub.Policy {
	cp := &stub.Policy{}
	if p.RateLimit != nil {
		cp.RateLimit = &stub.RateLimit{
			Rate:  p.RateLimit.Rate,
			Burst: p.RateLimit.Burst,
			Key:   p.RateLimit.Key,
		}
	}
	if p.Latency != nil {
		cp.Latency = &stub.Latency{
			FixedMs:  p.Latency.FixedMs,
			JitterMs: p.Latency.JitterMs,
		}
	}
	return cp
}
