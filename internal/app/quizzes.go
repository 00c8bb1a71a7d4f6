package app

import (
	"context"
	"fmt"

	"quizdeck/internal/docstore"
	"quizdeck/internal/domain"
)

// QuizService covers quiz and question management around the engines.
type QuizService struct {
	store docstore.Store
}

func NewQuizService(store docstore.Store) *QuizService {
	return &QuizService{store: store}
}

// List returns quizzes, optionally narrowed by caller constraints.
func (s *QuizService) List(ctx context.Context, constraints ...docstore.Constraint) ([]domain.Quiz, error) {
	docs, err := s.store.Query(ctx, collectionQuizzes, constraints...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return docstore.DecodeAll[domain.Quiz](docs)
}

func (s *QuizService) Get(ctx context.Context, id string) (domain.Quiz, error) {
	doc, err := s.store.Get(ctx, collectionQuizzes, id)
	if err == docstore.ErrNotFound {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := docstore.Decode(doc, &quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Create stores a new quiz stamped with its creator.
func (s *QuizService) Create(ctx context.Context, quiz domain.Quiz, createdBy string) (domain.Quiz, error) {
	quiz.CreatedBy = createdBy
	data, err := docstore.Encode(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	doc, err := s.store.Add(ctx, collectionQuizzes, data)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	quiz.ID = doc.ID
	return quiz, nil
}

func (s *QuizService) Update(ctx context.Context, id string, partial map[string]any) error {
	if err := s.store.Update(ctx, collectionQuizzes, id, partial); err != nil {
		if err == docstore.ErrNotFound {
			return domain.ErrQuizNotFound
		}
		return fmt.Errorf("update quiz: %w", err)
	}
	return nil
}

// Delete removes a quiz after deleting every question that belongs to it.
func (s *QuizService) Delete(ctx context.Context, id string) error {
	docs, err := s.store.Query(ctx, collectionQuestions,
		docstore.Where{Field: "quizId", Op: docstore.OpEqual, Value: id},
	)
	if err != nil {
		return fmt.Errorf("delete quiz questions: %w", err)
	}
	for _, doc := range docs {
		if _, err := s.store.Delete(ctx, collectionQuestions, doc.ID); err != nil {
			return fmt.Errorf("delete question %s: %w", doc.ID, err)
		}
	}
	if _, err := s.store.Delete(ctx, collectionQuizzes, id); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}

// AddQuestion stores one question; the caller assigns its order.
func (s *QuizService) AddQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	data, err := docstore.Encode(question)
	if err != nil {
		return domain.Question{}, err
	}
	doc, err := s.store.Add(ctx, collectionQuestions, data)
	if err != nil {
		return domain.Question{}, fmt.Errorf("add question: %w", err)
	}
	question.ID = doc.ID
	return question, nil
}

func (s *QuizService) UpdateQuestion(ctx context.Context, id string, partial map[string]any) error {
	if err := s.store.Update(ctx, collectionQuestions, id, partial); err != nil {
		if err == docstore.ErrNotFound {
			return domain.ErrQuestionNotFound
		}
		return fmt.Errorf("update question: %w", err)
	}
	return nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id string) error {
	deleted, err := s.store.Delete(ctx, collectionQuestions, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if !deleted {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// CountQuestions reports how many questions a quiz already has; imports use
// it to keep appended question orders contiguous.
func (s *QuizService) CountQuestions(ctx context.Context, quizID string) (int, error) {
	docs, err := s.store.Query(ctx, collectionQuestions,
		docstore.Where{Field: "quizId", Op: docstore.OpEqual, Value: quizID},
	)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return len(docs), nil
}
