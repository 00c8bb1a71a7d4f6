// Package http exposes the engines over a REST API and a websocket quiz
// session endpoint.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"quizdeck/internal/app"
	"quizdeck/internal/auth"
	"quizdeck/internal/opentdb"
)

// API bundles the services the handlers need.
type API struct {
	Quizzes  *app.QuizService
	Loader   app.QuestionSource
	Sessions *app.Sessions
	Board    *app.Leaderboard
	Users    *auth.Service
	Importer *opentdb.Importer
	Trivia   *opentdb.Client
}

// Router wires all routes. Write routes on quizzes and imports are admin
// guarded; score submission and profile reads need a signed-in user.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	wsHandler := NewWSHandler(a.Sessions, a.Board)
	r.Get("/ws", wsHandler.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/login", a.handleLogin)

		r.Get("/quizzes", a.handleListQuizzes)
		r.Get("/quizzes/{id}", a.handleGetQuiz)
		r.Get("/quizzes/{id}/questions", a.handleListQuestions)

		r.Get("/leaderboard", a.handleFetchLeaderboard)
		r.Get("/leaderboard/{quizID}/rank/{userID}", a.handleUserRank)

		r.Group(func(r chi.Router) {
			r.Use(a.Users.RequireUser)
			r.Post("/leaderboard", a.handleSubmitScore)
			r.Get("/users/{id}", a.handleGetUser)
			r.Get("/users/{id}/scores", a.handleUserScores)
			r.Post("/admin/users/{id}/promote", a.handlePromote)
			r.Post("/admin/users/{id}/demote", a.handleDemote)
			r.Get("/admin/users", a.handleListAdmins)
		})

		r.Group(func(r chi.Router) {
			r.Use(a.Users.RequireAdmin)
			r.Post("/quizzes", a.handleCreateQuiz)
			r.Put("/quizzes/{id}", a.handleUpdateQuiz)
			r.Delete("/quizzes/{id}", a.handleDeleteQuiz)
			r.Post("/quizzes/{id}/questions", a.handleAddQuestion)
			r.Put("/questions/{id}", a.handleUpdateQuestion)
			r.Delete("/questions/{id}", a.handleDeleteQuestion)
			r.Post("/import", a.handleImportNew)
			r.Post("/quizzes/{id}/import", a.handleImportInto)
			r.Get("/import/categories", a.handleImportCategories)
		})
	})

	return r
}
