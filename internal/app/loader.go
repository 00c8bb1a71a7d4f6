package app

import (
	"context"
	"fmt"

	"quizdeck/internal/docstore"
	"quizdeck/internal/domain"
)

// Collections the engines read and write.
const (
	collectionQuizzes     = "quizzes"
	collectionQuestions   = "questions"
	collectionLeaderboard = "leaderboard"
)

// QuestionSource yields a quiz's questions in presentation order. Caches
// implement this by decorating a Loader.
type QuestionSource interface {
	Questions(ctx context.Context, quizID string) ([]domain.Question, error)
}

// Loader reads question sets straight from the document store.
type Loader struct {
	store docstore.Store
}

func NewLoader(store docstore.Store) *Loader {
	return &Loader{store: store}
}

// Questions returns the quiz's questions ordered by their order field.
// A quiz with no questions yields an empty slice, not an error.
func (l *Loader) Questions(ctx context.Context, quizID string) ([]domain.Question, error) {
	docs, err := l.store.Query(ctx, collectionQuestions,
		docstore.Where{Field: "quizId", Op: docstore.OpEqual, Value: quizID},
		docstore.OrderBy{Field: "order"},
	)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return docstore.DecodeAll[domain.Question](docs)
}
