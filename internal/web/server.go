package web

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jaminalder/tic-tac-toe-ai/internal/app"
	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

// ServerOption configures NewServer.
type ServerOption func(*handlers)

// WithDefaultMode sets the mode used when the create form sends none.
func WithDefaultMode(m domain.Mode) ServerOption {
	return func(h *handlers) { h.defaultMode = m }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(h *handlers) { h.log = l }
}

// NewServer wires routes and returns an http.Handler.
// It installs the board renderer on s so subscribers receive board fragments.
func NewServer(s *app.Service, opts ...ServerOption) http.Handler {
	h := &handlers{svc: s, tpl: loadTemplates(), defaultMode: domain.MinimaxAI}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/join", h.join)
		r.Post("/play", h.play)
		r.Post("/restart", h.restart)
		r.Post("/mode", h.mode)
		r.Get("/events", h.events)
	})
	return r
}

func (h *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"dur", time.Since(start),
			"req_id", middleware.GetReqID(r.Context()),
		)
	})
}
