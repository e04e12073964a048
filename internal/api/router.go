package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/technosupport/ts-sentinel/internal/metrics"
)

// NewRouter wires the full HTTP surface.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// CORS for browser dashboards; preflight handled inline.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// The stream endpoint skips the request timeout: websocket
		// connections are long lived.
		r.Get("/stream", h.StreamEvents)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(30 * time.Second))

			r.Get("/events", h.ListEvents)
			r.Post("/events", h.CreateEvent)
			r.Patch("/events/{id}", h.PatchEvent)

			r.Get("/analytics", h.GetAnalytics)
			r.Get("/crowd", h.GetCrowdData)
			r.Get("/cameras", h.GetCameraStatus)
		})
	})

	return r
}
