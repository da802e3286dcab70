package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/phrazzld/tasks-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/platform/telemetry"
)

// setupRouter creates and configures the application router with all routes and middleware.
// The returned handler is wrapped for tracing.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	if app.config.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, _ string) bool { return true },
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:  []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{
			apiMiddleware.TraceIDHeader,
			"RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset", "Retry-After",
		},
		MaxAge: 300,
	}))
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(app.metrics.Middleware)

	errHandler := api.NewErrorHandler(app.config.Server.IsProduction())
	authHandler := api.NewAuthHandler(app.userService, errHandler, app.logger)
	taskHandler := api.NewTaskHandler(app.taskService, errHandler, app.logger)
	attachmentHandler := api.NewAttachmentHandler(app.attachmentService, app.config.Blob.MaxUploadBytes, errHandler, app.logger)
	healthHandler := api.NewHealthHandler(app.docs, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokens, app.logger)
	ownership := apiMiddleware.NewOwnershipMiddleware(app.taskService, app.logger)

	r.Get("/health", healthHandler.Health)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(apiMiddleware.RateLimit(app.limiter, app.metrics, app.logger))

		r.Route("/users", func(r chi.Router) {
			r.With(apiMiddleware.ValidateJSON[api.RegisterRequest]).Post("/register", authHandler.Register)
			r.With(apiMiddleware.ValidateJSON[api.LoginRequest]).Post("/login", authHandler.Login)
			r.With(authMiddleware.Authenticate).Post("/refresh-token", authHandler.RefreshToken)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/", taskHandler.GetTasks)
			r.With(apiMiddleware.ValidateJSON[api.CreateTaskRequest]).Post("/", taskHandler.CreateTask)

			r.Route("/{"+apiMiddleware.TaskIDParam+"}", func(r chi.Router) {
				r.Use(ownership.RequireTaskOwnership)

				r.Get("/", taskHandler.GetTaskByID)
				r.With(apiMiddleware.ValidateJSON[api.UpdateTaskRequest]).Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)

				r.Post("/attachments", attachmentHandler.Upload)
				r.Get("/attachments", attachmentHandler.List)
				r.Get("/attachments/{name}/url", attachmentHandler.SignedURL)
				r.Delete("/attachments/{name}", attachmentHandler.Delete)
			})
		})
	})

	return telemetry.WrapHandler(r, "tasks-api")
}
