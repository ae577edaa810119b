package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/provview/internal/logging"
	"github.com/aretw0/provview/internal/metrics"
	"github.com/aretw0/provview/pkg/domain"
	"github.com/aretw0/provview/pkg/query"
	"github.com/aretw0/provview/pkg/session"
)

// Server serves loaded results over HTTP.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	sessionOpts []session.Option
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records loads and searches and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithSessions shares an existing result manager instead of creating one.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithSessionOptions configures the manager the server creates.
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *Server) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// WithOpener replaces provview.Open as the way sources are loaded.
func WithOpener(open session.Opener) Option {
	return WithSessionOptions(session.WithOpener(open))
}

// NewServer creates a Server with an empty in-memory result manager.
func NewServer(opts ...Option) *Server {
	s := &Server{
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Sessions == nil {
		base := []session.Option{session.WithLogger(s.logger)}
		if s.metrics != nil {
			base = append(base, session.WithMetrics(s.metrics))
		}
		s.Sessions = session.NewManager(append(base, s.sessionOpts...)...)
	}
	s.Sessions.Watch(s.broadcast)
	return s
}

// NewHandler creates the HTTP handler for a new Server.
func NewHandler(opts ...Option) http.Handler {
	return NewServer(opts...).Handler()
}

// Handler returns the routes of s.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/results", func(r chi.Router) {
		r.Post("/", s.LoadResult)
		r.Get("/", s.ListResults)
		r.Route("/{uuid}", func(r chi.Router) {
			r.Get("/", s.GetResult)
			r.Delete("/", s.DeleteResult)
			r.Get("/graph", s.GetGraph)
			r.Get("/nodes/{id}", s.GetNode)
			r.Get("/search", s.Search)
			r.Get("/files/*", s.GetFile)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	// Offset is set for query syntax errors.
	Offset *int `json:"offset,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var syntax *query.SyntaxError
	switch {
	case errors.As(err, &syntax),
		errors.Is(err, domain.ErrSyntax),
		errors.Is(err, query.ErrQueryTooLarge),
		errors.Is(err, query.ErrInvalidUTF8),
		errors.Is(err, query.ErrControlInLiteral):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoMatches),
		errors.Is(err, domain.ErrResultNotFound),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArchive):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	resp := ErrorResponse{Error: err.Error()}
	var syntax *query.SyntaxError
	if errors.As(err, &syntax) {
		resp.Offset = &syntax.Offset
	}
	writeJSON(w, status, resp)
}

// writeJSON encodes v before writing the header so an encoding failure
// becomes a 500 instead of a truncated body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "{\"error\":%q}\n", "response encode failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
