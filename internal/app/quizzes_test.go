package app_test

import (
	"context"
	"testing"

	"quizdeck/internal/app"
	"quizdeck/internal/docstore"
	"quizdeck/internal/domain"
	"quizdeck/internal/infra/memory"
)

func TestQuizCRUD(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuizService(memory.NewStore())

	created, err := svc.Create(ctx, domain.Quiz{Title: "Capitals", Category: "geography"}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedBy != "admin-1" {
		t.Fatalf("unexpected quiz: %+v", created)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Capitals" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected stored quiz: %+v", got)
	}

	if err := svc.Update(ctx, created.ID, map[string]any{"isPublished": true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if !got.IsPublished || got.Title != "Capitals" {
		t.Fatalf("partial update lost fields: %+v", got)
	}

	if err := svc.Update(ctx, "missing", map[string]any{"title": "x"}); err != domain.ErrQuizNotFound {
		t.Fatalf("update missing: expected ErrQuizNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing"); err != domain.ErrQuizNotFound {
		t.Fatalf("get missing: expected ErrQuizNotFound, got %v", err)
	}
}

func TestQuizDeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := app.NewQuizService(store)

	quiz, err := svc.Create(ctx, domain.Quiz{Title: "Doomed"}, "admin-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.AddQuestion(ctx, domain.Question{
			QuizID: quiz.ID, Text: "q", Options: []string{"a", "b"}, CorrectAnswer: "a", Order: i,
		}); err != nil {
			t.Fatalf("add question: %v", err)
		}
	}
	// A question on another quiz must survive the cascade.
	other, err := svc.AddQuestion(ctx, domain.Question{QuizID: "other", Text: "keep", Options: []string{"a"}, CorrectAnswer: "a"})
	if err != nil {
		t.Fatalf("add other question: %v", err)
	}

	if err := svc.Delete(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	count, err := svc.CountQuestions(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cascaded question delete, %d left", count)
	}
	if _, err := store.Get(ctx, "questions", other.ID); err != nil {
		t.Fatalf("foreign question deleted by cascade: %v", err)
	}
}

func TestQuestionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuizService(memory.NewStore())

	q, err := svc.AddQuestion(ctx, domain.Question{
		QuizID: "quiz-1", Text: "before", Options: []string{"a", "b"}, CorrectAnswer: "a", Order: 0,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.UpdateQuestion(ctx, q.ID, map[string]any{"text": "after"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.UpdateQuestion(ctx, "missing", map[string]any{"text": "x"}); err != domain.ErrQuestionNotFound {
		t.Fatalf("update missing: expected ErrQuestionNotFound, got %v", err)
	}

	if err := svc.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteQuestion(ctx, q.ID); err != domain.ErrQuestionNotFound {
		t.Fatalf("delete again: expected ErrQuestionNotFound, got %v", err)
	}
}

func TestListQuizzesWithConstraint(t *testing.T) {
	ctx := context.Background()
	svc := app.NewQuizService(memory.NewStore())

	if _, err := svc.Create(ctx, domain.Quiz{Title: "Live", IsPublished: true}, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, domain.Quiz{Title: "Draft"}, "a"); err != nil {
		t.Fatalf("create: %v", err)
	}

	quizzes, err := svc.List(ctx, docstore.Where{Field: "isPublished", Op: docstore.OpEqual, Value: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].Title != "Live" {
		t.Fatalf("expected only published quizzes, got %+v", quizzes)
	}
}
