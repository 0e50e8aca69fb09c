package template_test

import (
	"regexp"
	"testing"

	"github.com/sophialabs/replayd/internal/domain/stub"
	"github.com/sophialabs/replayd/internal/infrastructure/outbound/template"
)

func renderContext() stub.RenderContext {
	return stub.RenderContext{
		Method:      "POST",
		Path:        "/orders",
		Headers:     map[string]string{"X-Request-Id": "abc-123"},
		QueryParams: map[string]string{"limit": "5"},
		Body:        []byte(`{"order":{"id":"o-9","total":42.5}}`),
		Now:         "2025-06-01T12:00:00Z",
	}
}

func compile(t *testing.T, engine, source string) stub.BodyRenderer {
	t.Helper()
	r, err := template.NewRegistry().Compile(engine, "test", source)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return r
}

func render(t *testing.T, engine, source string) string {
	t.Helper()
	out, err := compile(t, engine, source).Render(renderContext())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return string(out)
}

func TestRegistry_UnknownEngine(t *testing.T) {
	if _, err := template.NewRegistry().Compile("handlebars", "t", "x"); err == nil {
		t.Error("expected an error for an unknown engine")
	}
}

func TestExpr_StaticSourceRendersVerbatim(t *testing.T) {
	got := render(t, "expr", `{"static": true}`)
	if got != `{"static": true}` {
		t.Errorf("unexpected output %q", got)
	}
}

func TestExpr_Interpolation(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"query param", `limit=${queryParam("limit")}`, "limit=5"},
		{"header case-insensitive", `id=${header("x-request-id")}`, "id=abc-123"},
		{"now", `at ${now()}`, "at 2025-06-01T12:00:00Z"},
		{"now format", `${nowFormat("2006-01-02")}`, "2025-06-01"},
		{"json path scalar", `order=${jsonPath("$.order.id")}`, "order=o-9"},
		{"json path numeric", `total=${jsonPath("$.order.total")}`, "total=42.5"},
		{"arithmetic", `${1 + 2}`, "3"},
		{"mixed static and dynamic", `a ${queryParam("limit")} b`, "a 5 b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, "expr", tt.source); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExpr_BodyFunction(t *testing.T) {
	got := render(t, "expr", "${body()}")
	if got != `{"order":{"id":"o-9","total":42.5}}` {
		t.Errorf("unexpected body %q", got)
	}
}

func TestExpr_UUIDShape(t *testing.T) {
	got := render(t, "expr", `${uuid()}`)
	pattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	if !pattern.MatchString(got) {
		t.Errorf("not a v4 UUID: %q", got)
	}
}

func TestExpr_RandomIntWithinBounds(t *testing.T) {
	for range 20 {
		got := render(t, "expr", `${randomInt(3, 5)}`)
		if got != "3" && got != "4" && got != "5" {
			t.Fatalf("out of bounds: %q", got)
		}
	}
}

func TestExpr_NestedBracesInsideStrings(t *testing.T) {
	got := render(t, "expr", `${toJSON({"a": 1})}`)
	if got != `{"a":1}` {
		t.Errorf("unexpected output %q", got)
	}
}

func TestExpr_UnclosedDelimiterFails(t *testing.T) {
	if _, err := template.NewRegistry().Compile("expr", "t", "${queryParam("); err == nil {
		t.Error("expected a compile error for an unclosed delimiter")
	}
}

func TestExpr_BadExpressionFailsAtCompile(t *testing.T) {
	if _, err := template.NewRegistry().Compile("expr", "t", "${notAFunction()}"); err == nil {
		t.Error("expected a compile error for an unknown identifier")
	}
}

func TestExpr_XPath(t *testing.T) {
	r := compile(t, "expr", `name=${xpath("//name")}`)
	out, err := r.Render(stub.RenderContext{
		Body: []byte(`<order><name>widget</name></order>`),
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if string(out) != "name=widget" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestJinja2_Variables(t *testing.T) {
	got := render(t, "jinja2", "{{ method }} {{ path }}?limit={{ queryParams.limit }}")
	if got != "POST /orders?limit=5" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestJinja2_HelperFunctions(t *testing.T) {
	got := render(t, "jinja2", `{{ jsonPath("$.order.id") }} at {{ nowFormat("2006") }}`)
	if got != "o-9 at 2025" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestJinja2_Loop(t *testing.T) {
	got := render(t, "jinja2", "{% for i in seq(1, 3) %}{{ i }}{% endfor %}")
	if got != "123" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestJinja2_BadSyntaxFailsAtCompile(t *testing.T) {
	if _, err := template.NewRegistry().Compile("jinja2", "t", "{% if %}"); err == nil {
		t.Error("expected a compile error for bad syntax")
	}
}

func TestJsonPath_FailuresYieldEmptyString(t *testing.T) {
	r := compile(t, "expr", `v=${jsonPath("$.missing.key")}`)
	out, err := r.Render(stub.RenderContext{Body: []byte(`{"a":1}`)})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if string(out) != "v=" {
		t.Errorf("lookup failures should render empty, got %q", out)
	}
}
