package template

import (
	"fmt"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/sophialabs/replayd/internal/domain/stub"
)

// Jinja2Compiler compiles body templates using Pongo2 (Django/Jinja2-style).
type Jinja2Compiler struct{}

// Compile parses the source as a Pongo2 template.
func (c *Jinja2Compiler) Compile(name, source string) (stub.BodyRenderer, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jinja2 template %q: %w", name, err)
	}
	return &jinja2Renderer{tpl: tpl}, nil
}

type jinja2Renderer struct {
	tpl *pongo2.Template
}

func (r *jinja2Renderer) Render(ctx stub.RenderContext) ([]byte, error) {
	pongoCtx := pongo2.Context{
		"method":      ctx.Method,
		"path":        ctx.Path,
		"headers":     ctx.Headers,
		"queryParams": ctx.QueryParams,
		"body":        string(ctx.Body),
		"now":         ctx.Now,

		// Helper functions.
		"queryParam": func(name string) string { return ctx.QueryParams[name] },
		"header":     func(name string) string { return headerLookup(ctx, name) },
		"uuid":       generateUUID,
		"randomInt":  randomIntBetween,
		"seq":        seqInts,
		"toJSON":     toJSONString,
		"jsonPath": func(expression string) string {
			return extractJSONPath(ctx.Body, expression)
		},
		"xpath": func(expression string) string {
			return extractXPath(ctx.Body, expression)
		},
		"nowFormat": func(layout string) string {
			t, err := time.Parse(time.RFC3339, ctx.Now)
			if err != nil {
				return ctx.Now
			}
			return t.Format(layout)
		},
	}

	result, err := r.tpl.Execute(pongoCtx)
	if err != nil {
		return nil, fmt.Errorf("jinja2 template render failed: %w", err)
	}
	return []byte(result), nil
}
