package services

import (
	"encoding/json"
	"net/url"
	"strings"
)

// EncodeQuery renders a key/value mapping as a percent-encoded query string.
// A nil or empty mapping renders as the empty string, with no leading
// separator.
func EncodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}

// DecodeQuery parses a percent-encoded query string into a key/value mapping.
// Empty input yields nil, meaning "no constraint": downstream matching treats
// nil as "don't check the query at all", which is distinct from an empty
// mapping. Repeated keys keep the first value; malformed pairs are skipped,
// mirroring how net/http surfaces request queries.
func DecodeQuery(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	values, _ := url.ParseQuery(raw)
	if len(values) == 0 {
		return nil
	}
	params := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params
}

// DecodeBody converts a raw request body into its matchable value. Bodies
// with a JSON content type are parsed, failing with a ParseError on malformed
// input; anything else passes through as text. An absent body yields nil, not
// an empty string.
func DecodeBody(raw []byte, contentType string) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if !strings.Contains(contentType, "application/json") {
		return string(raw), nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, NewParseError("malformed JSON body: " + err.Error())
	}
	return v, nil
}
