package match

import "fmt"

// Request represents an incoming HTTP request in domain terms, free of net/http.
// Query is nil when the request carried no query string; Body is nil when the
// request carried no body, the decoded JSON value for application/json bodies,
// and the raw text as a string otherwise.
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Headers map[string]string
	Body    any
	RawBody []byte
}

// Matcher decides whether a stub's constraints accept an incoming request.
// The zero value compares sequences order-independently, which is the
// documented default.
type Matcher struct {
	// OrderedArrays requires sequence elements to match positionally
	// instead of the default any-order comparison.
	OrderedArrays bool
}

// NewMatcher creates a Matcher with default (order-independent) semantics.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// QueryMatches reports whether the actual query parameters satisfy the
// constraint. A nil constraint accepts anything, including no query at all.
// Every constrained key must be present with an equal value; extra keys in
// actual are ignored (subset match).
func (m *Matcher) QueryMatches(actual, constraint map[string]string) bool {
	if constraint == nil {
		return true
	}
	for k, want := range constraint {
		got, ok := actual[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// BodyMatches reports whether the actual body satisfies the constraint using
// recursive structural equality. A nil constraint accepts anything. Mappings
// require the same key set; sequences require the same length and, by
// default, each constraint element must find at least one structurally equal
// counterpart anywhere in the actual sequence. A type mismatch is a
// non-match, never an error.
//
// The any-order sequence rule deliberately does not consume actual elements:
// a constraint [x, x] matches an actual [x, y] of the same length as long as
// x occurs once. Matching behavior elsewhere depends on this staying lenient,
// so it is kept rather than tightened to a pairing semantics.
func (m *Matcher) BodyMatches(actual, constraint any) bool {
	if constraint == nil {
		return true
	}
	return m.valueEqual(Normalize(actual), Normalize(constraint))
}

func (m *Matcher) valueEqual(actual, constraint any) bool {
	switch want := constraint.(type) {
	case map[string]any:
		got, ok := actual.(map[string]any)
		if !ok || len(got) != len(want) {
			return false
		}
		for k, wv := range want {
			gv, present := got[k]
			if !present || !m.valueEqual(gv, wv) {
				return false
			}
		}
		return true
	case []any:
		got, ok := actual.([]any)
		if !ok || len(got) != len(want) {
			return false
		}
		if m.OrderedArrays {
			for i := range want {
				if !m.valueEqual(got[i], want[i]) {
					return false
				}
			}
			return true
		}
		for _, wv := range want {
			found := false
			for _, gv := range got {
				if m.valueEqual(gv, wv) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		// Guard the comparison: == on a slice or map dynamic type panics.
		switch actual.(type) {
		case map[string]any, []any:
			return false
		}
		return actual == constraint
	}
}

// Normalize converts a decoded JSON or YAML value into the canonical shape
// used for structural comparison: all numbers become float64 and nested
// mappings become map[string]any. encoding/json already produces this shape;
// yaml.v3 produces ints and map[string]any, which are converted here.
func Normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = Normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[fmt.Sprint(k)] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = Normalize(e)
		}
		return out
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}
