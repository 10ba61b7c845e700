package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/askpeer/askpeer-be/internal/api/handlers"
	"github.com/askpeer/askpeer-be/internal/auth"
	"github.com/askpeer/askpeer-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	tokens *auth.TokenService,
	userService services.UserServiceProvider,
	questionService services.QuestionServiceProvider,
	answerService services.AnswerServiceProvider,
	summaryService services.SummaryServiceProvider,
	chatService services.ChatServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, tokens)
	questionHandler := handlers.NewQuestionHandler(questionService)
	answerHandler := handlers.NewAnswerHandler(answerService, summaryService)
	chatHandler := handlers.NewChatHandler(chatService)

	// Public endpoints: registration, login, password recovery.
	r.Route("/user", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Post("/forgot-password", userHandler.ForgotPassword)
		r.Post("/reset-password/{token}", userHandler.ResetPassword)

		// Token-guarded user endpoints.
		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Get("/check", userHandler.Check)
			r.Post("/profile-picture", userHandler.UploadProfilePicture)
			r.Get("/profile-picture", userHandler.GetProfilePicture)
			r.Delete("/profile-picture", userHandler.RemoveProfilePicture)
		})
	})

	// Everything below requires a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware())

		r.Route("/question", func(r chi.Router) {
			r.Get("/", questionHandler.GetAll)
			r.Post("/", questionHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", questionHandler.Get)
				r.Put("/", questionHandler.Update)
				r.Delete("/", questionHandler.Delete)
			})
		})

		r.Route("/answer", func(r chi.Router) {
			r.Post("/", answerHandler.Create)
			// The id segment is a question id on GET and an answer id on
			// PUT/DELETE; chi needs one wildcard name per segment.
			r.Get("/{id}", answerHandler.GetForQuestion)
			r.Get("/{id}/summary", answerHandler.Summary)
			r.Put("/{id}", answerHandler.Update)
			r.Delete("/{id}", answerHandler.Delete)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/", chatHandler.Respond)
			r.Get("/history", chatHandler.History)
		})
	})

	return r
}
