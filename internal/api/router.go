package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"admin-welcome-modal/internal/observability"
)

func Router(h *ModalHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.Measure)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Second))

	r.Route("/v1/modal", func(r chi.Router) {
		r.Get("/", h.Decision)
		r.Get("/markup", h.Markup)
		r.Post("/events", h.Event)
		r.Post("/reset", h.Reset)
	})
	r.Route("/v1/settings", func(r chi.Router) {
		r.Get("/", h.GetSettings)
		r.Put("/", h.PutSettings)
		r.Delete("/", h.DeleteSettings)
		r.Post("/preview", h.Preview)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", observability.MetricsHandler())
	return r
}
