package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-regwizard/internal/session"
)

// Handler is the thin HTTP layer over the session registry. Every request
// maps onto exactly one wizard intent and answers with the fresh snapshot.
type Handler struct {
	sessions *session.Registry
	logger   zerolog.Logger
}

// NewHandler returns a handler backed by sessions.
func NewHandler(sessions *session.Registry, logger zerolog.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

// NewRouter wires the registration API. metrics may be nil.
func NewRouter(h *Handler, metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/registrations", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleSnapshot)
			r.Delete("/", h.handleAbandon)
			r.Put("/role", h.handleRole)
			r.Patch("/fields", h.handleFields)
			r.Post("/selections", h.handleSelection)
			r.Put("/terms", h.handleTerms)
			r.Post("/attachments", h.handleAddAttachments)
			r.Delete("/attachments/{index}", h.handleRemoveAttachment)
			r.Post("/advance", h.handleAdvance)
			r.Post("/retreat", h.handleRetreat)
			r.Post("/submit", h.handleSubmit)
		})
	})
	return r
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("http: request")
		})
	}
}
