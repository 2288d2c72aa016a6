package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RouterConfig wires the handlers and cross-cutting middleware into one mux.
type RouterConfig struct {
	FloorPlans    *FloorPlanHandler
	Bookings      *BookingHandler
	Recommend     *RecommendHandler
	Notifications *NotificationHandler
	CORSOrigins   []string
	Middleware    []func(http.Handler) http.Handler
}

// NewRouter assembles the API routes. All routes sit behind the identity
// middleware supplied via cfg.Middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", userIDHeader, userRoleHeader},
			AllowCredentials: true,
		}))
	}

	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	if cfg.FloorPlans != nil {
		r.Route("/floor-plans", func(r chi.Router) {
			r.Get("/", cfg.FloorPlans.List)
			r.Post("/", cfg.FloorPlans.Save)
			r.Get("/{id}", cfg.FloorPlans.Get)
			r.Delete("/{id}", cfg.FloorPlans.Delete)
		})
	}

	if cfg.Bookings != nil {
		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", cfg.Bookings.List)
			r.Post("/", cfg.Bookings.Create)
			r.Delete("/{id}", cfg.Bookings.Cancel)
		})
	}

	if cfg.Recommend != nil {
		r.Get("/recommendations", cfg.Recommend.Recommend)
	}

	if cfg.Notifications != nil {
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", cfg.Notifications.List)
			r.Post("/{id}/dismiss", cfg.Notifications.Dismiss)
		})
	}

	return r
}
