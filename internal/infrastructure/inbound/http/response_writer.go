package http

import "net/http"

// statusWriter wraps http.ResponseWriter to remember whether a status line
// has been written. The error path needs this: a failure after the response
// has started must not attempt to write a second status line, only close the
// response with an error body.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w}
}

func (sw *statusWriter) WriteHeader(statusCode int) {
	if sw.written {
		return
	}
	sw.status = statusCode
	sw.written = true
	sw.ResponseWriter.WriteHeader(statusCode)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.WriteHeader(http.StatusOK)
	}
	return sw.ResponseWriter.Write(b)
}

// Written reports whether the status line has gone out.
func (sw *statusWriter) Written() bool { return sw.written }

// Status returns the written status code, or zero.
func (sw *statusWriter) Status() int { return sw.status }
