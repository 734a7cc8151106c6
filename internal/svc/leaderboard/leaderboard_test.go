package leaderboard

import (
	"context"
	"testing"

	"github.com/devpulse/api/internal/testutil"
)

func TestLeaderboardOrdering(t *testing.T) {
	t.Parallel()

	rdis, _ := testutil.NewRedis(t)
	lb := New(Options{Redis: rdis})

	ctx := context.Background()

	testutil.IsNil(t, lb.Incr(ctx, "teamA", "alice", 5), "incr alice")
	testutil.IsNil(t, lb.Incr(ctx, "teamA", "bob", 10), "incr bob")
	testutil.IsNil(t, lb.Incr(ctx, "teamA", "alice", 1), "incr alice again")

	entries, err := lb.Top(ctx, "teamA", 10)
	testutil.IsNil(t, err, "top readable")
	testutil.Assert(t, 2, len(entries), "two entries")
	testutil.Assert(t, "bob", entries[0].UserID, "highest score first")
	testutil.Assert(t, float64(10), entries[0].Score, "bob score")
	testutil.Assert(t, "alice", entries[1].UserID, "alice second")
	testutil.Assert(t, float64(6), entries[1].Score, "increments accumulate")
}

func TestLeaderboardTruncation(t *testing.T) {
	t.Parallel()

	rdis, _ := testutil.NewRedis(t)
	lb := New(Options{Redis: rdis})

	ctx := context.Background()

	_ = lb.Incr(ctx, "teamA", "alice", 3)
	_ = lb.Incr(ctx, "teamA", "bob", 2)
	_ = lb.Incr(ctx, "teamA", "carol", 1)

	entries, err := lb.Top(ctx, "teamA", 2)
	testutil.IsNil(t, err, "top readable")
	testutil.Assert(t, 2, len(entries), "limit honored")
	testutil.Assert(t, "alice", entries[0].UserID, "top entry")
}

func TestLeaderboardTeamsIsolated(t *testing.T) {
	t.Parallel()

	rdis, _ := testutil.NewRedis(t)
	lb := New(Options{Redis: rdis})

	ctx := context.Background()

	_ = lb.Incr(ctx, "teamA", "alice", 3)
	_ = lb.Incr(ctx, "teamB", "bob", 7)

	entries, err := lb.Top(ctx, "teamA", 10)
	testutil.IsNil(t, err, "top readable")
	testutil.Assert(t, 1, len(entries), "only teamA members")
	testutil.Assert(t, "alice", entries[0].UserID, "teamA entry")
}
