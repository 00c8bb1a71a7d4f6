package app_test

import (
	"context"
	"errors"
	"testing"

	"quizdeck/internal/app"
	"quizdeck/internal/domain"
	"quizdeck/internal/infra/memory"
)

func TestLoadUnknownQuiz(t *testing.T) {
	sessions, _ := newTestSessions(t, nil)

	session, err := sessions.Load(context.Background(), "missing")
	if err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if session != nil {
		t.Fatalf("expected no session, got %+v", session)
	}
}

func TestLoadInitializesAnswerSlots(t *testing.T) {
	sessions, _ := newTestSessions(t, threeQuestions())

	session, err := sessions.Load(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(session.Answers()) != len(session.Questions()) {
		t.Fatalf("answers=%d questions=%d, want equal", len(session.Answers()), len(session.Questions()))
	}
	if session.Cursor() != 0 {
		t.Fatalf("expected cursor at 0, got %d", session.Cursor())
	}
	if q, ok := session.Current(); !ok || q.Text != "one" {
		t.Fatalf("expected first question by order, got %+v ok=%v", q, ok)
	}
}

func TestLoadKeepsQuizWhenQuestionsFail(t *testing.T) {
	store := memory.NewStore()
	seedQuiz(t, store)
	sessions := app.NewSessions(store, failingSource{})

	session, err := sessions.Load(context.Background(), "quiz-1")
	if err == nil {
		t.Fatalf("expected question load error")
	}
	if session == nil {
		t.Fatalf("expected session despite question failure")
	}
	if session.Quiz().ID != "quiz-1" {
		t.Fatalf("expected quiz metadata kept, got %+v", session.Quiz())
	}
	if len(session.Questions()) != 0 {
		t.Fatalf("expected empty question list, got %d", len(session.Questions()))
	}
	if _, ok := session.Current(); ok {
		t.Fatalf("expected no current question on empty session")
	}
	if session.Score() != 0 || session.Completed() {
		t.Fatalf("empty session must score 0 and not be completed")
	}
}

func TestNavigationStaysInBounds(t *testing.T) {
	session := loadedSession(t)

	if session.Previous() {
		t.Fatalf("previous at first question must not move")
	}
	if session.Cursor() != 0 {
		t.Fatalf("cursor moved at lower boundary: %d", session.Cursor())
	}

	if !session.Next() || !session.Next() {
		t.Fatalf("expected two forward moves")
	}
	if session.Next() {
		t.Fatalf("next at last question must not move")
	}
	if session.Cursor() != 2 {
		t.Fatalf("cursor moved at upper boundary: %d", session.Cursor())
	}

	if !session.Previous() {
		t.Fatalf("expected backward move")
	}
	if session.Cursor() != 1 {
		t.Fatalf("expected cursor 1, got %d", session.Cursor())
	}
}

func TestAnswerRejectsEmptyValues(t *testing.T) {
	session := loadedSession(t)

	if session.Answer(nil) {
		t.Fatalf("nil answer must be rejected")
	}
	if session.Answer("") {
		t.Fatalf("empty answer must be rejected")
	}
	if session.Completed() {
		t.Fatalf("rejected answers must not mark the session completed")
	}
}

func TestAnswerCoercesAndOverwrites(t *testing.T) {
	session := loadedSession(t)

	if !session.Answer(42) {
		t.Fatalf("expected numeric answer to be stored")
	}
	if session.Answers()[0] != "42" {
		t.Fatalf("expected coerced string 42, got %q", session.Answers()[0])
	}

	// Wrong then right at the same slot: last write wins.
	if !session.Answer("b") {
		t.Fatalf("store wrong answer")
	}
	if session.Score() != 0 {
		t.Fatalf("wrong answer scored: %d", session.Score())
	}
	if !session.Answer("a") {
		t.Fatalf("store right answer")
	}
	if session.Score() != 1 {
		t.Fatalf("expected corrected slot to score 1, got %d", session.Score())
	}
	if len(session.Answers()) != len(session.Questions()) {
		t.Fatalf("answer slots drifted from question count")
	}
}

func TestAnswerIsIdempotentPerSlot(t *testing.T) {
	session := loadedSession(t)

	session.Answer("a")
	first := append([]string(nil), session.Answers()...)
	session.Answer("a")
	second := session.Answers()

	if len(first) != len(second) {
		t.Fatalf("repeat answer changed slot count")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeat answer changed slot %d: %q vs %q", i, first[i], second[i])
		}
	}
	if session.Score() != 1 {
		t.Fatalf("expected score 1, got %d", session.Score())
	}
}

func TestScoreIsExactStringMatch(t *testing.T) {
	session := loadedSession(t)

	session.Answer("A") // wrong case
	session.Next()
	session.Answer("b ") // trailing space
	session.Next()
	session.Answer("c")

	if session.Score() != 1 {
		t.Fatalf("expected only exact match to count, got %d", session.Score())
	}
}

func TestCompletedMeansAnyAnswer(t *testing.T) {
	session := loadedSession(t)

	if session.Completed() {
		t.Fatalf("fresh session must not be completed")
	}
	session.Answer("a")
	if !session.Completed() {
		t.Fatalf("one answer must flip completed")
	}
	// Two questions still unanswered; completed stays true regardless.
	if session.Total() != 3 {
		t.Fatalf("expected 3 questions, got %d", session.Total())
	}
}

func TestAnswersAfterNavigatingBack(t *testing.T) {
	session := loadedSession(t)

	session.Answer("a")
	session.Next()
	session.Answer("b")
	session.Previous()
	session.Answer("wrong")

	if session.Answers()[0] != "wrong" {
		t.Fatalf("revisited slot not overwritten: %q", session.Answers()[0])
	}
	if session.Answers()[1] != "b" {
		t.Fatalf("other slot disturbed: %q", session.Answers()[1])
	}
	if session.Score() != 1 {
		t.Fatalf("expected score 1, got %d", session.Score())
	}
}

func loadedSession(t *testing.T) *app.Session {
	t.Helper()
	sessions, _ := newTestSessions(t, threeQuestions())
	session, err := sessions.Load(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return session
}

// threeQuestions builds quiz-1 with correct answers a, b, c in order.
func threeQuestions() []map[string]any {
	return []map[string]any{
		{"quizId": "quiz-1", "text": "one", "options": []string{"a", "x"}, "correctAnswer": "a", "order": 0},
		{"quizId": "quiz-1", "text": "two", "options": []string{"y", "b"}, "correctAnswer": "b", "order": 1},
		{"quizId": "quiz-1", "text": "three", "options": []string{"c", "z"}, "correctAnswer": "c", "order": 2},
	}
}

func newTestSessions(t *testing.T, questions []map[string]any) (*app.Sessions, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	seedQuiz(t, store)
	ctx := context.Background()
	for _, q := range questions {
		if _, err := store.Add(ctx, "questions", q); err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
	return app.NewSessions(store, app.NewLoader(store)), store
}

func seedQuiz(t *testing.T, store *memory.Store) {
	t.Helper()
	_, err := store.Set(context.Background(), "quizzes", "quiz-1", map[string]any{
		"title":       "Sample Quiz",
		"isPublished": true,
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
}

type failingSource struct{}

func (failingSource) Questions(context.Context, string) ([]domain.Question, error) {
	return nil, errors.New("store unavailable")
}
