package api

import (
	"net/http"
	"time"

	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/api/handler"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/api/middleware"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/app/service"
	"github.com/dan-koller/Spring-Web-Quiz-Engine/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	registrationService *service.RegistrationService,
	quizService *service.QuizService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies a bearer token if one is present and puts its claims in the
	// context. The authenticator middleware decides per request whether Basic
	// credentials or these claims resolve the caller.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(apiRouter chi.Router) {
		// Registration and login are open to all
		userHandler := handler.NewUserHandler(registrationService, authService)
		apiRouter.Group(func(public chi.Router) {
			userHandler.RegisterRoutes(public)
		})

		// Every quiz route requires a resolved caller identity
		authenticator := middleware.NewAuthenticator(authService)
		quizHandler := handler.NewQuizHandler(quizService)
		apiRouter.Route("/quizzes", func(quizRouter chi.Router) {
			quizRouter.Use(authenticator.Handler)
			quizHandler.RegisterRoutes(quizRouter)
		})
	})

	return r
}
