package presences

import (
	"context"
	"testing"
	"time"

	"github.com/devpulse/api/internal/events"
	"github.com/devpulse/api/internal/testutil"
)

func TestPresenceLifecycle(t *testing.T) {
	t.Parallel()

	rdis, mr := testutil.NewRedis(t)

	p := New(Options{
		Redis:             rdis,
		Events:            events.NewPublisher(rdis),
		HeartbeatInterval: 30 * time.Second,
	})

	ctx := context.Background()

	record, err := p.Set(ctx, "alice", StatusOnline, &Activity{FileName: "x.ts", Language: "typescript"})
	testutil.Assert(t, true, err == nil, "set succeeds")
	testutil.Assert(t, "alice", record.UserID, "record user id")

	got, ok := p.Get(ctx, "alice")
	testutil.Assert(t, true, ok, "record is live")
	testutil.Assert(t, StatusOnline, got.Status, "status")
	testutil.IsNotNil(t, got.Activity, "activity present")
	testutil.Assert(t, "x.ts", got.Activity.FileName, "activity file")

	// One TTL window with no renewal: the record is gone and the user reads
	// as offline
	mr.FastForward(61 * time.Second)

	_, ok = p.Get(ctx, "alice")
	testutil.Assert(t, false, ok, "record expired")
}

func TestPresenceSlidingTTL(t *testing.T) {
	t.Parallel()

	rdis, mr := testutil.NewRedis(t)

	p := New(Options{
		Redis:             rdis,
		Events:            events.NewPublisher(rdis),
		HeartbeatInterval: 30 * time.Second,
	})

	ctx := context.Background()

	_, _ = p.Set(ctx, "alice", StatusOnline, nil)

	// A heartbeat near the end of the window resets the expiry
	mr.FastForward(45 * time.Second)
	_, _ = p.Set(ctx, "alice", StatusIdle, nil)

	mr.FastForward(45 * time.Second)

	got, ok := p.Get(ctx, "alice")
	testutil.Assert(t, true, ok, "record renewed by second write")
	testutil.Assert(t, StatusIdle, got.Status, "last write wins")
}

func TestPresenceBatch(t *testing.T) {
	t.Parallel()

	rdis, _ := testutil.NewRedis(t)

	p := New(Options{
		Redis:  rdis,
		Events: events.NewPublisher(rdis),
	})

	ctx := context.Background()

	_, _ = p.Set(ctx, "alice", StatusOnline, nil)
	_, _ = p.Set(ctx, "bob", StatusDND, nil)

	result := p.GetMany(ctx, []string{"alice", "bob", "carol"})

	testutil.Assert(t, 2, len(result), "users with no live record are omitted")
	testutil.Assert(t, StatusOnline, result["alice"].Status, "alice status")
	testutil.Assert(t, StatusDND, result["bob"].Status, "bob status")

	_, ok := result["carol"]
	testutil.Assert(t, false, ok, "carol omitted, not errored")
}

func TestPresenceDelete(t *testing.T) {
	t.Parallel()

	rdis, _ := testutil.NewRedis(t)

	p := New(Options{
		Redis:  rdis,
		Events: events.NewPublisher(rdis),
	})

	ctx := context.Background()

	_, _ = p.Set(ctx, "alice", StatusOnline, nil)

	err := p.Delete(ctx, "alice")
	testutil.Assert(t, true, err == nil, "delete succeeds")

	_, ok := p.Get(ctx, "alice")
	testutil.Assert(t, false, ok, "record removed before TTL")
}

func TestPresencePublishesUpdate(t *testing.T) {
	t.Parallel()

	rdis, _ := testutil.NewRedis(t)

	ev := events.NewPublisher(rdis)
	p := New(Options{Redis: rdis, Events: ev})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan string, 1)
	go rdis.Subscribe(ctx, ch, ev.PresenceChannel("alice"))

	// Give the subscriber a moment to register
	time.Sleep(50 * time.Millisecond)

	_, _ = p.Set(ctx, "alice", StatusOnline, nil)

	select {
	case raw := <-ch:
		testutil.Assert(t, true, len(raw) > 0, "received presence message")
	case <-time.After(2 * time.Second):
		t.Fatal("no presence update published")
	}
}
