package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"quizdeck/internal/domain"
)

// ScoreCache holds a quiz's full score set (score descending, as queried)
// between submissions. The leaderboard invalidates the key on every submit
// for the quiz, so ranks computed from a hit match a fresh read.
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
	rnd    *rand.Rand
}

func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	return &ScoreCache{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ScoreCache) Get(ctx context.Context, quizID string) ([]domain.LeaderboardEntry, bool) {
	raw, err := c.client.Get(ctx, c.key(quizID)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *ScoreCache) Set(ctx context.Context, quizID string, entries []domain.LeaderboardEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	// best-effort: a failed write only costs a future cache miss
	_ = c.client.Set(ctx, c.key(quizID), raw, c.ttlWithJitter()).Err()
}

func (c *ScoreCache) Invalidate(ctx context.Context, quizID string) {
	_ = c.client.Del(ctx, c.key(quizID)).Err()
}

func (c *ScoreCache) key(quizID string) string {
	return "quiz:" + quizID + ":scores"
}

func (c *ScoreCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
