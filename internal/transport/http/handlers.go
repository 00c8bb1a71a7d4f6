package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"quizdeck/internal/auth"
	"quizdeck/internal/docstore"
	"quizdeck/internal/domain"
	"quizdeck/internal/opentdb"
)

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !readJSON(w, r, &req) {
		return
	}
	user, err := a.Users.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := a.Users.IssueToken(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !readJSON(w, r, &req) {
		return
	}
	token, user, err := a.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (a *API) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	var constraints []docstore.Constraint
	if r.URL.Query().Get("published") == "true" {
		constraints = append(constraints, docstore.Where{Field: "isPublished", Op: docstore.OpEqual, Value: true})
	}
	quizzes, err := a.Quizzes.List(r.Context(), constraints...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.Quizzes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if !readJSON(w, r, &quiz) {
		return
	}
	claims := auth.ClaimsFromContext(r.Context())
	created, err := a.Quizzes.Create(r.Context(), quiz, claims.Sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if !readJSON(w, r, &partial) {
		return
	}
	if err := a.Quizzes.Update(r.Context(), chi.URLParam(r, "id"), partial); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := a.Quizzes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.Loader.Questions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *API) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	var question domain.Question
	if !readJSON(w, r, &question) {
		return
	}
	question.QuizID = chi.URLParam(r, "id")
	created, err := a.Quizzes.AddQuestion(r.Context(), question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var partial map[string]any
	if !readJSON(w, r, &partial) {
		return
	}
	if err := a.Quizzes.UpdateQuestion(r.Context(), chi.URLParam(r, "id"), partial); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := a.Quizzes.DeleteQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleFetchLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := a.Board.Fetch(r.Context(), r.URL.Query().Get("quizId"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var sub domain.ScoreSubmission
	if !readJSON(w, r, &sub) {
		return
	}
	// The token, not the payload, says who is submitting.
	claims := auth.ClaimsFromContext(r.Context())
	sub.UserID = claims.Sub
	if sub.DisplayName == "" {
		sub.DisplayName = claims.Name
	}
	entry, err := a.Board.Submit(r.Context(), sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) handleUserRank(w http.ResponseWriter, r *http.Request) {
	rank, err := a.Board.UserRank(r.Context(), chi.URLParam(r, "quizID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rank == nil {
		// The user simply has no rank here; that is not an error.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, rank)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.Users.User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleUserScores(w http.ResponseWriter, r *http.Request) {
	scores, err := a.Board.UserScores(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (a *API) handlePromote(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if err := a.Users.Promote(r.Context(), claims.Sub, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleDemote(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if err := a.Users.Demote(r.Context(), claims.Sub, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	admins, err := a.Users.Admins(r.Context(), claims.Sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (a *API) handleImportNew(w http.ResponseWriter, r *http.Request) {
	var opts opentdb.ImportOptions
	if !readJSON(w, r, &opts) {
		return
	}
	claims := auth.ClaimsFromContext(r.Context())
	quiz, err := a.Importer.ImportNew(r.Context(), claims.Sub, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (a *API) handleImportInto(w http.ResponseWriter, r *http.Request) {
	var opts opentdb.ImportOptions
	if !readJSON(w, r, &opts) {
		return
	}
	added, err := a.Importer.ImportInto(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (a *API) handleImportCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.Trivia.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
