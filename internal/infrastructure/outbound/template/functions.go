package template

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/antchfx/xmlquery"

	"github.com/sophialabs/replayd/internal/domain/stub"
)

func buildExprEnv(ctx stub.RenderContext) exprEnv {
	return exprEnv{
		QueryParam: func(name string) string {
			return ctx.QueryParams[name]
		},
		Header: func(name string) string {
			return headerLookup(ctx, name)
		},
		Body: func() string {
			return string(ctx.Body)
		},
		Now: func() string {
			return ctx.Now
		},
		NowFormat: func(layout string) string {
			t, err := time.Parse(time.RFC3339, ctx.Now)
			if err != nil {
				return ctx.Now
			}
			return t.Format(layout)
		},
		UUID:      generateUUID,
		RandomInt: randomIntBetween,
		Seq:       seqInts,
		ToJSON:    toJSONString,
		JsonPath: func(expression string) string {
			return extractJSONPath(ctx.Body, expression)
		},
		XPath: func(expression string) string {
			return extractXPath(ctx.Body, expression)
		},
	}
}

// headerLookup is case-insensitive.
func headerLookup(ctx stub.RenderContext, name string) string {
	for k, v := range ctx.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func randomIntBetween(min, max int) int {
	if min >= max {
		return min
	}
	return min + rand.IntN(max-min+1)
}

func seqInts(start, end int) []int {
	if end < start {
		return nil
	}
	s := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		s = append(s, i)
	}
	return s
}

func toJSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// extractJSONPath evaluates a JSONPath expression against the request body.
// Any parse or lookup failure yields the empty string.
func extractJSONPath(body []byte, expression string) string {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return ""
	}
	result, err := jsonpath.Get(expression, data)
	if err != nil {
		return ""
	}
	switch v := result.(type) {
	case string:
		return v
	default:
		return toJSONString(v)
	}
}

// extractXPath evaluates an XPath expression against an XML request body.
// Any parse or lookup failure yields the empty string.
func extractXPath(body []byte, expression string) string {
	doc, err := xmlquery.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}
	node := xmlquery.FindOne(doc, expression)
	if node == nil {
		return ""
	}
	return node.InnerText()
}

func generateUUID() string {
	var uuid [16]byte
	for i := range uuid {
		uuid[i] = byte(rand.IntN(256))
	}
	uuid[6] = (uuid[6] & 0x0f) | 0x40 // version 4
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 10
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16])
}
