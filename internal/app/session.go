package app

import (
	"context"
	"fmt"
	"strconv"

	"quizdeck/internal/docstore"
	"quizdeck/internal/domain"
)

// Sessions creates quiz sessions. A session is exclusively owned by one
// user's connection and must not be shared across goroutines.
type Sessions struct {
	store     docstore.Store
	questions QuestionSource
}

func NewSessions(store docstore.Store, questions QuestionSource) *Sessions {
	return &Sessions{store: store, questions: questions}
}

// Load fetches the quiz and its question set and returns a fresh session
// positioned at the first question. A missing quiz yields (nil,
// ErrQuizNotFound). If only the question fetch fails, the session is still
// returned with the quiz set and an empty question list, alongside the
// error; callers decide whether to surface or retry.
func (f *Sessions) Load(ctx context.Context, quizID string) (*Session, error) {
	doc, err := f.store.Get(ctx, collectionQuizzes, quizID)
	if err == docstore.ErrNotFound {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}

	var quiz domain.Quiz
	if err := docstore.Decode(doc, &quiz); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}

	session := &Session{quiz: quiz}
	questions, err := f.questions.Questions(ctx, quizID)
	if err != nil {
		return session, err
	}
	session.questions = questions
	session.answers = make([]string, len(questions))
	return session, nil
}

// Session holds one user's in-progress traversal of a quiz: a snapshot of
// its questions, a cursor, and one answer slot per question. An empty slot
// means unanswered; stored answers are never empty.
type Session struct {
	quiz      domain.Quiz
	questions []domain.Question
	cursor    int
	answers   []string
}

// Quiz returns the quiz this session was loaded from.
func (s *Session) Quiz() domain.Quiz { return s.quiz }

// Questions returns the session's question snapshot.
func (s *Session) Questions() []domain.Question { return s.questions }

// Cursor returns the zero-based index of the current question.
func (s *Session) Cursor() int { return s.cursor }

// Answers returns the answer slots, parallel to Questions.
func (s *Session) Answers() []string { return s.answers }

// Total returns the number of questions, i.e. the maximum possible score.
func (s *Session) Total() int { return len(s.questions) }

// Current returns the question under the cursor, or false when the session
// has no questions.
func (s *Session) Current() (domain.Question, bool) {
	if s.cursor < 0 || s.cursor >= len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[s.cursor], true
}

// Next advances to the following question and reports whether it moved.
// At the last question it stays put and returns false.
func (s *Session) Next() bool {
	if s.cursor < len(s.questions)-1 {
		s.cursor++
		return true
	}
	return false
}

// Previous steps back one question and reports whether it moved. At the
// first question it stays put and returns false.
func (s *Session) Previous() bool {
	if s.cursor > 0 {
		s.cursor--
		return true
	}
	return false
}

// Answer records value for the current question, overwriting any earlier
// answer in that slot. Nil and empty values are ignored; anything else is
// coerced to its string form. Reports whether the answer was stored.
func (s *Session) Answer(value any) bool {
	answer := coerceAnswer(value)
	if answer == "" {
		return false
	}
	// Pad if the cursor somehow outran the slots; Load keeps them parallel.
	for len(s.answers) <= s.cursor {
		s.answers = append(s.answers, "")
	}
	s.answers[s.cursor] = answer
	return true
}

// Score recounts the slots whose stored answer exactly equals the matching
// question's correct answer. Comparison is case-sensitive and untrimmed.
func (s *Session) Score() int {
	score := 0
	for i, answer := range s.answers {
		if i >= len(s.questions) {
			break
		}
		if answer != "" && answer == s.questions[i].CorrectAnswer {
			score++
		}
	}
	return score
}

// Completed reports whether at least one answer has been recorded. It does
// NOT mean every question was answered; callers wanting that must compare
// against Total themselves.
func (s *Session) Completed() bool {
	for _, answer := range s.answers {
		if answer != "" {
			return true
		}
	}
	return false
}

func coerceAnswer(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		// JSON numbers arrive as float64; keep integral values undecorated.
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
