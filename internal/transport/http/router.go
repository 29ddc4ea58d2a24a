package http

import (
	"net/http"

	"quiz-grading-service/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Questions    *QuestionHandler
	Attempts     *AttemptHandler
	Notification *NotificationHandler
	Auth         *AuthHandler
	Feed         *WSHandler
}

// NewRouter builds the HTTP API. authService resolves bearer tokens into
// the request context; corsOrigins defaults to any origin.
func NewRouter(h Handlers, authService *auth.Service, corsOrigins []string) http.Handler {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Middleware(authService))

		api.Post("/auth/login", h.Auth.Login)

		api.Route("/questions", func(qr chi.Router) {
			qr.Get("/", h.Questions.List)
			qr.Get("/{id}", h.Questions.Get)
			qr.Group(func(ar chi.Router) {
				ar.Use(auth.RequireAdmin)
				ar.Post("/", h.Questions.Create)
				ar.Put("/{id}", h.Questions.Replace)
				ar.Patch("/{id}", h.Questions.Patch)
				ar.Delete("/{id}", h.Questions.Delete)
			})
		})

		api.Route("/attempts", func(ar chi.Router) {
			ar.Post("/", h.Attempts.Submit)
			ar.With(auth.RequireAdmin).Get("/", h.Attempts.List)
			ar.With(auth.RequireAdmin).Get("/{id}", h.Attempts.Get)
		})

		api.Group(func(admin chi.Router) {
			admin.Use(auth.RequireAdmin)
			admin.Get("/notification", h.Notification.Get)
			admin.Put("/notification", h.Notification.Update)
			admin.Post("/notification", h.Notification.Update)
			admin.Get("/ws/attempts", h.Feed.ServeWS)
		})
	})

	return r
}
