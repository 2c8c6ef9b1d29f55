package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/xplainit/xplainit-be/internal/api/handlers"
	"github.com/xplainit/xplainit-be/internal/services"
	"github.com/xplainit/xplainit-be/internal/storage"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(store storage.Store, authService services.AuthServiceProvider, explainService services.ExplainServiceProvider, allowedOrigin string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(authService)
	explainHandler := handlers.NewExplainHandler(explainService)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := store.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", userHandler.Signup)
		r.Post("/login", userHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(handlers.AuthMiddleware(authService))
			r.Get("/me", userHandler.Me)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(handlers.AuthMiddleware(authService))
		r.Post("/explain", explainHandler.Explain)
		r.Get("/history", explainHandler.History)
		r.Delete("/users/{id}", userHandler.Delete)
	})

	return r
}
