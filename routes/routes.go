package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/jankeeper/jankeeper/handlers"
	"github.com/jankeeper/jankeeper/middleware"
)

// SetupRoutes mounts the full HTTP surface. Everything except login and
// the API docs sits behind JWT authentication; user administration
// additionally requires the admin flag.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	sectionHandler *handlers.SectionHandler,
	gameHandler *handlers.GameHandler,
	statsHandler *handlers.StatsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", authHandler.Login)
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/me", userHandler.GetMe)
		r.Patch("/me", userHandler.UpdateMe)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Get("/{id}", userHandler.GetUser)
			r.Post("/{id}/avatar", userHandler.UploadAvatar)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", userHandler.CreateUser)
				r.Patch("/{id}", userHandler.UpdateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})
		})

		r.Route("/sections", func(r chi.Router) {
			r.Get("/", sectionHandler.ListSections)
			r.Post("/", sectionHandler.CreateSection)

			r.Route("/{sectionID}", func(r chi.Router) {
				r.Get("/", sectionHandler.GetSection)
				r.Patch("/", sectionHandler.UpdateSection)
				r.Delete("/", sectionHandler.DeleteSection)
				r.Post("/close", sectionHandler.CloseSection)
				r.Post("/reopen", sectionHandler.ReopenSection)
				r.Get("/summary", sectionHandler.GetSummary)

				r.Route("/games", func(r chi.Router) {
					r.Get("/", gameHandler.ListGames)
					r.Post("/", gameHandler.CreateGame)
					r.Put("/{gameID}", gameHandler.UpdateGame)
					r.Delete("/{gameID}", gameHandler.DeleteGame)
				})
			})
		})

		r.Get("/stats", statsHandler.GetStats)
		r.Get("/stats/users/{id}", statsHandler.GetUserStats)

		// Browser WebSocket clients pass the token as a query
		// parameter instead of a header.
		r.Get("/ws/sections/{sectionID}", webSocketHandler.ServeSection)
	})
}
