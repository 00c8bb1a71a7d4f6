package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"quizdeck/internal/docstore"
	"quizdeck/internal/domain"
)

// DefaultFetchLimit caps leaderboard views when callers pass no limit.
const DefaultFetchLimit = 50

// ScoreCache holds a quiz's full score set between submissions. Implementations
// must treat entries as immutable.
type ScoreCache interface {
	Get(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, bool)
	Set(ctx context.Context, quizID string, entries []domain.LeaderboardEntry)
	Invalidate(ctx context.Context, quizID string)
}

// EventPublisher fans score submissions out to interested consumers.
type EventPublisher interface {
	Publish(eventType string, payload any) error
}

// Leaderboard persists score entries append-only and ranks them. Ranks are
// position-dependent on the entire ordered score set, so every rank query
// rereads the full set for the quiz (through the cache when one is wired).
type Leaderboard struct {
	store  docstore.Store
	cache  ScoreCache
	events EventPublisher
	clock  func() time.Time
	sf     singleflight.Group
}

// NewLeaderboard builds the ranking engine. cache and events may be nil.
func NewLeaderboard(store docstore.Store, cache ScoreCache, events EventPublisher) *Leaderboard {
	return &Leaderboard{store: store, cache: cache, events: events, clock: time.Now}
}

// NewLeaderboardWithClock is test-only for deterministic timestamps.
func NewLeaderboardWithClock(store docstore.Store, cache ScoreCache, events EventPublisher, now func() time.Time) *Leaderboard {
	lb := NewLeaderboard(store, cache, events)
	lb.clock = now
	return lb
}

// Submit appends one immutable entry, defaulting malformed fields rather
// than rejecting them. Every submission is a new row, even for the same
// user/quiz pair; the leaderboard is a full history, not a best-score table.
func (l *Leaderboard) Submit(ctx context.Context, sub domain.ScoreSubmission) (domain.LeaderboardEntry, error) {
	entry := domain.LeaderboardEntry{
		QuizID:         orDefault(sub.QuizID, "unknown"),
		QuizTitle:      orDefault(sub.QuizTitle, "Untitled Quiz"),
		UserID:         orDefault(sub.UserID, "anonymous"),
		DisplayName:    displayNameOrDefault(sub.DisplayName),
		Score:          clampNonNegative(sub.Score),
		TotalQuestions: clampNonNegative(sub.TotalQuestions),
		Timestamp:      l.clock(),
	}

	data, err := docstore.Encode(entry)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("encode score: %w", err)
	}
	doc, err := l.store.Add(ctx, collectionLeaderboard, data)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("submit score: %w", err)
	}
	entry.ID = doc.ID

	if l.cache != nil {
		l.cache.Invalidate(ctx, entry.QuizID)
	}
	if l.events != nil {
		if err := l.events.Publish("score.submitted", entry); err != nil {
			log.Printf("publish score event: %v", err)
		}
	}
	return entry, nil
}

// Fetch returns entries sorted by score descending, optionally filtered to
// one quiz and capped at limit (DefaultFetchLimit when non-positive). The
// order among equal scores is whatever the store returns.
func (l *Leaderboard) Fetch(ctx context.Context, quizID string, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	var constraints []docstore.Constraint
	if quizID != "" {
		constraints = append(constraints, docstore.Where{Field: "quizId", Op: docstore.OpEqual, Value: quizID})
	}
	constraints = append(constraints,
		docstore.OrderBy{Field: "score", Desc: true},
		docstore.Limit{N: limit},
	)

	docs, err := l.store.Query(ctx, collectionLeaderboard, constraints...)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	return docstore.DecodeAll[domain.LeaderboardEntry](docs)
}

// UserScores returns every entry a user has posted, newest first.
func (l *Leaderboard) UserScores(ctx context.Context, userID string) ([]domain.LeaderboardEntry, error) {
	docs, err := l.store.Query(ctx, collectionLeaderboard,
		docstore.Where{Field: "userId", Op: docstore.OpEqual, Value: userID},
		docstore.OrderBy{Field: "timestamp", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("fetch user scores: %w", err)
	}
	return docstore.DecodeAll[domain.LeaderboardEntry](docs)
}

// UserRank computes the user's competition rank among all entries for the
// quiz. Tied scores share a rank; the next distinct score's rank equals one
// plus the count of strictly greater entries. A missing input, an empty
// score set, or an absent user yields (nil, nil): no rank, not an error.
func (l *Leaderboard) UserRank(ctx context.Context, quizID, userID string) (*domain.UserRank, error) {
	if quizID == "" || userID == "" {
		return nil, nil
	}

	entries, err := l.quizScores(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	rank := 0
	sameRankCount := 0
	previousScore := 0
	havePrevious := false
	for _, entry := range entries {
		if !havePrevious || entry.Score != previousScore {
			rank += 1 + sameRankCount
			sameRankCount = 0
			previousScore = entry.Score
			havePrevious = true
		} else {
			sameRankCount++
		}
		if entry.UserID == userID {
			return &domain.UserRank{Rank: rank, Total: len(entries), Score: entry.Score}, nil
		}
	}
	return nil, nil
}

// quizScores loads the full score set for a quiz, score descending. Reads
// are collapsed through singleflight and served from the cache when wired.
func (l *Leaderboard) quizScores(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, error) {
	if l.cache != nil {
		if entries, ok := l.cache.Get(ctx, quizID); ok {
			return entries, nil
		}
	}

	result, err, _ := l.sf.Do(quizID, func() (interface{}, error) {
		if l.cache != nil {
			if entries, ok := l.cache.Get(ctx, quizID); ok {
				return entries, nil
			}
		}
		docs, err := l.store.Query(ctx, collectionLeaderboard,
			docstore.Where{Field: "quizId", Op: docstore.OpEqual, Value: quizID},
			docstore.OrderBy{Field: "score", Desc: true},
		)
		if err != nil {
			return nil, fmt.Errorf("fetch quiz scores: %w", err)
		}
		entries, err := docstore.DecodeAll[domain.LeaderboardEntry](docs)
		if err != nil {
			return nil, err
		}
		if l.cache != nil {
			l.cache.Set(ctx, quizID, entries)
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func displayNameOrDefault(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "Anonymous User"
	}
	return trimmed
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
