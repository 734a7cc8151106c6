package leaderboard

import (
	"context"

	"github.com/devpulse/api/internal/svc/redis"
)

// Instance keeps per-team activity scores in a sorted set. Scores are
// advisory and rebuilt over time; the set carries no TTL.
type Instance interface {
	Incr(ctx context.Context, teamID string, userID string, by int64) error
	Top(ctx context.Context, teamID string, n int64) ([]Entry, error)
}

type Entry struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}

type Options struct {
	Redis redis.Instance
}

func New(opt Options) Instance {
	return &inst{redis: opt.Redis}
}

type inst struct {
	redis redis.Instance
}

func (l *inst) key(teamID string) redis.Key {
	return l.redis.ComposeKey("leaderboard", teamID)
}

func (l *inst) Incr(ctx context.Context, teamID string, userID string, by int64) error {
	return l.redis.RawClient().ZIncrBy(ctx, l.key(teamID).String(), float64(by), userID).Err()
}

func (l *inst) Top(ctx context.Context, teamID string, n int64) ([]Entry, error) {
	zs, err := l.redis.RawClient().ZRevRangeWithScores(ctx, l.key(teamID).String(), 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zs))

	for _, z := range zs {
		entries = append(entries, Entry{UserID: z.Member, Score: z.Score})
	}

	return entries, nil
}
