package services_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sophialabs/replayd/internal/infrastructure/services"
)

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]string
		expected string
	}{
		{"nil mapping", nil, ""},
		{"empty mapping", map[string]string{}, ""},
		{"single pair", map[string]string{"a": "1"}, "a=1"},
		{"sorted keys", map[string]string{"b": "2", "a": "1"}, "a=1&b=2"},
		{"percent encoding", map[string]string{"q": "a b&c"}, "q=a+b%26c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.EncodeQuery(tt.params)
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDecodeQuery_EmptyYieldsNoConstraint(t *testing.T) {
	if got := services.DecodeQuery(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestDecodeQuery_ParsesPairs(t *testing.T) {
	got := services.DecodeQuery("a=1&b=x%20y")
	want := map[string]string{"a": "1", "b": "x y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDecodeQuery_RepeatedKeyKeepsFirst(t *testing.T) {
	got := services.DecodeQuery("a=1&a=2")
	if got["a"] != "1" {
		t.Errorf("expected first value to win, got %q", got["a"])
	}
}

func TestDecodeQuery_RoundTrip(t *testing.T) {
	params := map[string]string{"key": "value with spaces", "other": "a/b?c"}
	got := services.DecodeQuery(services.EncodeQuery(params))
	if !reflect.DeepEqual(got, params) {
		t.Errorf("round trip mismatch: %v != %v", got, params)
	}
}

func TestDecodeBody_JSONContentType(t *testing.T) {
	v, err := services.DecodeBody([]byte(`{"a":1}`), "application/json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected structured value, got %T", v)
	}
	if obj["a"] != float64(1) {
		t.Errorf("expected a=1, got %v", obj["a"])
	}
}

func TestDecodeBody_JSONWithCharsetSuffix(t *testing.T) {
	v, err := services.DecodeBody([]byte(`[1,2]`), "application/json; charset=utf-8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.([]any); !ok {
		t.Errorf("expected array, got %T", v)
	}
}

func TestDecodeBody_NonJSONStaysText(t *testing.T) {
	v, err := services.DecodeBody([]byte(`{"a":1}`), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != `{"a":1}` {
		t.Errorf("expected literal text, got %v", v)
	}
}

func TestDecodeBody_AbsentBodyIsAbsent(t *testing.T) {
	v, err := services.DecodeBody(nil, "application/json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil for absent body, got %v", v)
	}
}

func TestDecodeBody_MalformedJSONIsParseError(t *testing.T) {
	_, err := services.DecodeBody([]byte(`not-json`), "application/json")
	if err == nil {
		t.Fatal("expected an error")
	}
	var perr *services.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if perr.Message == "" || len(perr.Stack) == 0 {
		t.Error("ParseError should carry a message and a stack")
	}
}
