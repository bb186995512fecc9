package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mlowery/tasktrack-api/internal/api"
	apimiddleware "github.com/mlowery/tasktrack-api/internal/api/middleware"
	"github.com/mlowery/tasktrack-api/internal/api/shared"
)

// setupRouter configures the router with middleware, handlers and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceID)

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, app.statsService, app.logger)
	tagHandler := api.NewTagHandler(app.tagService, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Get("/health", app.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/statistics/by-user", taskHandler.Statistics)
				r.Get("/{id}", taskHandler.Get)
				r.Patch("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
				r.Post("/{id}/complete", taskHandler.Complete)
				r.Post("/{id}/restore", taskHandler.Restore)
				r.Post("/{id}/tags/attach", taskHandler.AttachTags)
				r.Post("/{id}/tags/detach", taskHandler.DetachTags)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", tagHandler.List)
				r.Post("/", tagHandler.Create)
				r.Get("/{id}", tagHandler.Get)
				r.Patch("/{id}", tagHandler.Update)
				r.Delete("/{id}", tagHandler.Delete)
			})
		})
	})

	return r
}

// handleHealth reports service readiness, including database
// connectivity.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := app.healthCheck(); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Service unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
