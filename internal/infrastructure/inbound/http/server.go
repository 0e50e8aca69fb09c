package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sophialabs/replayd/internal/domain/match"
	"github.com/sophialabs/replayd/internal/domain/stub"
	"github.com/sophialabs/replayd/internal/domain/trace"
	"github.com/sophialabs/replayd/internal/infrastructure/ports"
	"github.com/sophialabs/replayd/internal/infrastructure/services"
	"github.com/sophialabs/replayd/internal/infrastructure/usecases"
)

const maxBodySize = 10 << 20 // 10 MB

// Server is the main HTTP server: an admin API for the stub registry plus a
// catch-all dispatcher that resolves every other request against it. Request
// processing has a single error boundary; whatever goes wrong inside it is
// logged and answered with the structured error body, never a crash.
type Server struct {
	resolveUC  *usecases.ResolveUseCase
	loadUC     *usecases.LoadStubsUseCase
	registerUC *usecases.RegisterStubUseCase
	store      stub.Store
	responder  *services.Responder
	traceBuf   *trace.RingBuffer
	logger     ports.Logger
	router     *chi.Mux
}

// NewServer creates a new Server with its routes installed.
func NewServer(
	resolveUC *usecases.ResolveUseCase,
	loadUC *usecases.LoadStubsUseCase,
	registerUC *usecases.RegisterStubUseCase,
	store stub.Store,
	traceBuf *trace.RingBuffer,
	logger ports.Logger,
) *Server {
	s := &Server{
		resolveUC:  resolveUC,
		loadUC:     loadUC,
		registerUC: registerUC,
		store:      store,
		responder:  services.NewResponder(),
		traceBuf:   traceBuf,
		logger:     logger,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)

	r.Route("/__admin", func(r chi.Router) {
		r.Get("/stubs", s.handleListStubs)
		r.Post("/stubs", s.handleRegisterStub)
		r.Delete("/stubs", s.handleResetStubs)
		r.Delete("/stubs/{stubID}", s.handleDeleteStub)
		r.Get("/requests", s.handleGetRequests)
		r.Post("/reload", s.handleReload)
	})

	// Everything else is mock territory, whatever the method or path.
	r.NotFound(s.handleMock)
	r.MethodNotAllowed(s.handleMock)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleMock is the single request-processing boundary: decode, resolve,
// validate, render. Every failure class, panics included, funnels into
// writeError and produces some HTTP response.
func (s *Server) handleMock(w http.ResponseWriter, r *http.Request) {
	sw := newStatusWriter(w)

	defer func() {
		if rec := recover(); rec != nil {
			s.writeError(sw, r, services.NewRuntimeError(fmt.Sprintf("panic: %v", rec)))
		}
	}()

	s.logger.Info("request received", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery, "remote", r.RemoteAddr)

	defer func() { _ = r.Body.Close() }()
	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(sw, r, services.NewRuntimeError("failed to read request body: "+err.Error()))
		return
	}

	body, err := services.DecodeBody(rawBody, r.Header.Get("Content-Type"))
	if err != nil {
		s.writeError(sw, r, err)
		return
	}

	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[http.CanonicalHeaderKey(k)] = r.Header.Get(k)
	}

	req := &match.Request{
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   services.DecodeQuery(r.URL.RawQuery),
		Headers: headers,
		Body:    body,
		RawBody: rawBody,
	}

	res, err := s.resolveUC.Execute(r.Context(), req)
	if err != nil {
		s.writeError(sw, r, err)
		return
	}

	if res.Outcome == trace.OutcomeRateLimited {
		s.logger.Info("request rate-limited", "method", r.Method, "path", r.URL.Path, "stub", res.TraceEntry.StubID)
		sw.Header().Set("Content-Type", "application/json")
		sw.Header().Set("Retry-After", "1")
		sw.WriteHeader(http.StatusTooManyRequests)
		writeJSON(sw, map[string]string{
			"error":   "rate_limited",
			"message": "Too many requests",
		})
		return
	}

	if err := s.responder.Validate(res.Result); err != nil {
		s.writeError(sw, r, err)
		return
	}

	rendered, err := s.responder.Render(res.Result)
	if err != nil {
		s.writeError(sw, r, err)
		return
	}

	for k, v := range rendered.Headers {
		sw.Header().Set(k, v)
	}
	sw.WriteHeader(rendered.Status)
	if len(rendered.Body) > 0 {
		if _, err := sw.Write(rendered.Body); err != nil {
			s.logger.Debug("failed to write response body", "error", err)
		}
	}

	s.logger.Info("request resolved", "method", r.Method, "path", r.URL.Path, "outcome", res.Outcome, "stub", res.TraceEntry.StubID, "status", rendered.Status)
}

// writeError logs the failure and emits the structured error body. The 500
// status line goes out only if the response has not started yet; otherwise
// the error body just closes out whatever was already in flight.
func (s *Server) writeError(sw *statusWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)

	var verr *services.ValidationError
	if errors.As(err, &verr) && verr.Request == nil {
		verr.Request = map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"query":  r.URL.RawQuery,
		}
	}

	body := s.responder.ErrorBody(err)
	if !sw.Written() {
		sw.Header().Set("Content-Type", "application/json")
		sw.WriteHeader(http.StatusInternalServerError)
	}
	if _, werr := sw.Write(body); werr != nil {
		s.logger.Debug("failed to write error body", "error", werr)
	}
}

func (s *Server) handleListStubs(w http.ResponseWriter, _ *http.Request) {
	all := s.store.All()
	stubs := make([]map[string]any, 0, len(all))
	for _, st := range all {
		entry := map[string]any{
			"id":     st.ID,
			"method": st.Method,
			"path":   st.Path,
			"status": st.Result.Status,
			"seeded": st.Seeded,
		}
		if st.Query != nil {
			entry["query"] = st.Query
		}
		if st.Body != nil {
			entry["body"] = st.Body
		}
		if !st.LastUsed().IsZero() {
			entry["last_used"] = st.LastUsed()
		}
		stubs = append(stubs, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, stubs)
}

func (s *Server) handleRegisterStub(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()

	var def stub.Definition
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&def); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": "invalid_definition", "message": err.Error()})
		return
	}

	registered, err := s.registerUC.Execute(r.Context(), &def)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"error": "register_failed", "message": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"status": "ok", "id": registered.ID})
}

func (s *Server) handleResetStubs(w http.ResponseWriter, _ *http.Request) {
	s.store.Reset()
	s.logger.Info("stub registry reset")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteStub(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "stubID")
	if err := s.store.Remove(id); err != nil {
		if errors.Is(err, stub.ErrNotFound) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"error": "not_found", "message": "stub not found: " + id})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]string{"error": "delete_failed", "message": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetRequests(w http.ResponseWriter, r *http.Request) {
	n := 10
	if lastParam := r.URL.Query().Get("last"); lastParam != "" {
		if parsed, err := strconv.Atoi(lastParam); err == nil && parsed > 0 {
			n = parsed
		}
	}

	entries := s.traceBuf.Last(n)
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, entries)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	count, err := s.loadUC.Execute(r.Context())
	if err != nil {
		s.logger.Error("reload failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]string{
			"error":   "reload_failed",
			"message": "stub reload failed, check server logs",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{"status": "ok", "loaded": count})
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
