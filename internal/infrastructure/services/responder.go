package services

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/sophialabs/replayd/internal/domain/stub"
)

const contentTypeJSON = "application/json"

// Rendered is a transport-level response: status, headers, and body bytes.
type Rendered struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Responder validates handler results against the result contract and renders
// them into wire responses. It is stateless.
type Responder struct{}

// NewResponder creates a new Responder.
func NewResponder() *Responder {
	return &Responder{}
}

// Validate checks a handler result against the contract: the result must be
// present and its status code must be an integer in [100, 600). The returned
// ValidationError lists every violated rule.
func (r *Responder) Validate(res *stub.Result) error {
	if res == nil {
		return NewValidationError([]string{"result is missing"})
	}
	var violations []string
	if res.Status == 0 {
		violations = append(violations, "statusCode is required")
	} else if res.Status < 100 || res.Status >= 600 {
		violations = append(violations, fmt.Sprintf("statusCode %d is outside the range [100, 600)", res.Status))
	}
	if len(violations) == 0 {
		return nil
	}
	verr := NewValidationError(violations)
	verr.Result = res
	return verr
}

// Render turns a validated result into a wire response. Structured bodies are
// serialized to JSON and get a JSON content type unless the result's headers
// override it; string bodies pass through unchanged; a nil body renders as an
// empty body.
func (r *Responder) Render(res *stub.Result) (*Rendered, error) {
	out := &Rendered{
		Status:  res.Status,
		Headers: make(map[string]string, len(res.Headers)+1),
	}

	switch body := res.Body.(type) {
	case nil:
	case string:
		out.Body = []byte(body)
	case []byte:
		out.Body = body
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, NewRuntimeError("failed to serialize response body: " + err.Error())
		}
		out.Body = data
		out.Headers["Content-Type"] = contentTypeJSON
	}

	// Explicit headers win over the computed content type.
	for k, v := range res.Headers {
		out.Headers[k] = v
	}
	return out, nil
}

// ErrorBody renders any processing failure into the stable wire error shape:
// {"error": true, "rawError": {message, type, stack, request?, result?}}.
// Validation failures attach the offending request and result; parse and
// runtime errors attach neither. Errors outside the taxonomy carry no type
// and get a stack captured here.
func (r *Responder) ErrorBody(err error) []byte {
	raw := map[string]any{
		"message": err.Error(),
	}
	switch e := err.(type) {
	case *ParseError:
		raw["type"] = "ParseError"
		raw["stack"] = string(e.Stack)
	case *ValidationError:
		raw["type"] = "ValidationError"
		raw["stack"] = string(e.Stack)
		if e.Request != nil {
			raw["request"] = e.Request
		}
		if e.Result != nil {
			raw["result"] = e.Result
		}
	case *RuntimeError:
		raw["type"] = "RuntimeError"
		raw["stack"] = string(e.Stack)
	default:
		raw["stack"] = string(debug.Stack())
	}

	body, merr := json.Marshal(map[string]any{
		"error":    true,
		"rawError": raw,
	})
	if merr != nil {
		return []byte(`{"error":true,"rawError":{"message":"failed to serialize error"}}`)
	}
	return body
}
