package services

import "net/http"

// InferContentType determines the content type of a rendered body, preferring
// an explicit header and falling back to sniffing.
func InferContentType(explicit string, body []byte) string {
	if explicit != "" {
		return explicit
	}
	if len(body) > 0 {
		return http.DetectContentType(body)
	}
	return "application/octet-stream"
}
