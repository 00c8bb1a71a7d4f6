package opentdb

import (
	"context"
	"fmt"
	"html"
	"math/rand"
	"strings"
	"time"

	"quizdeck/internal/app"
	"quizdeck/internal/domain"
)

// ImportOptions shape one import run.
type ImportOptions struct {
	Amount     int
	Category   string // OpenTriviaDB category id, empty for any
	Difficulty string // easy, medium, hard, empty for any
	Title      string
	Descr      string
}

// Importer turns OpenTriviaDB payloads into stored quizzes and questions.
type Importer struct {
	quizzes *app.QuizService
	client  *Client
	rnd     *rand.Rand
}

func NewImporter(quizzes *app.QuizService, client *Client) *Importer {
	return &Importer{
		quizzes: quizzes,
		client:  client,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ImportNew fetches questions and creates a fresh published quiz holding
// them, attributed to createdBy.
func (i *Importer) ImportNew(ctx context.Context, createdBy string, opts ImportOptions) (domain.Quiz, error) {
	raw, err := i.client.FetchQuestions(ctx, opts.Amount, opts.Category, opts.Difficulty)
	if err != nil {
		return domain.Quiz{}, err
	}
	if len(raw) == 0 {
		return domain.Quiz{}, fmt.Errorf("no questions returned from opentdb")
	}

	category := opts.Category
	if category == "" {
		category = "General Knowledge"
	}
	title := opts.Title
	if title == "" {
		title = strings.TrimSpace(opts.Difficulty + " " + opts.Category + " Quiz")
	}
	descr := opts.Descr
	if descr == "" {
		topic := opts.Category
		if topic == "" {
			topic = "various topics"
		}
		descr = fmt.Sprintf("A quiz with %d questions about %s", len(raw), topic)
	}

	quiz, err := i.quizzes.Create(ctx, domain.Quiz{
		Title:        title,
		Category:     category,
		Description:  descr,
		IsPublished:  true,
		ShowFeedback: true,
	}, createdBy)
	if err != nil {
		return domain.Quiz{}, err
	}

	if err := i.addQuestions(ctx, quiz.ID, raw, 0); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// ImportInto appends fetched questions to an existing quiz, continuing the
// order sequence after its current questions.
func (i *Importer) ImportInto(ctx context.Context, quizID string, opts ImportOptions) (int, error) {
	if _, err := i.quizzes.Get(ctx, quizID); err != nil {
		return 0, err
	}
	raw, err := i.client.FetchQuestions(ctx, opts.Amount, opts.Category, opts.Difficulty)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, fmt.Errorf("no questions returned from opentdb")
	}

	startOrder, err := i.quizzes.CountQuestions(ctx, quizID)
	if err != nil {
		return 0, err
	}
	if err := i.addQuestions(ctx, quizID, raw, startOrder); err != nil {
		return 0, err
	}
	return len(raw), nil
}

func (i *Importer) addQuestions(ctx context.Context, quizID string, raw []RawQuestion, startOrder int) error {
	for idx, q := range raw {
		question := i.process(q, quizID, startOrder+idx)
		if _, err := i.quizzes.AddQuestion(ctx, question); err != nil {
			return err
		}
	}
	return nil
}

// process decodes HTML entities and shuffles the correct answer in among
// the incorrect ones; the stored option order is what players see.
func (i *Importer) process(q RawQuestion, quizID string, order int) domain.Question {
	correct := html.UnescapeString(q.CorrectAnswer)
	options := make([]string, 0, len(q.IncorrectAnswers)+1)
	options = append(options, correct)
	for _, wrong := range q.IncorrectAnswers {
		options = append(options, html.UnescapeString(wrong))
	}
	i.shuffle(options)

	return domain.Question{
		QuizID:        quizID,
		Text:          html.UnescapeString(q.Question),
		Options:       options,
		CorrectAnswer: correct,
		Order:         order,
	}
}

// shuffle is an in-place Fisher-Yates shuffle.
func (i *Importer) shuffle(options []string) {
	for n := len(options) - 1; n > 0; n-- {
		j := i.rnd.Intn(n + 1)
		options[n], options[j] = options[j], options[n]
	}
}
