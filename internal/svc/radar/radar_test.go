package radar

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/devpulse/api/internal/events"
	"github.com/devpulse/api/internal/testutil"
)

func newTestRadar(t *testing.T) Instance {
	t.Helper()

	rdis, _ := testutil.NewRedis(t)

	return New(Options{
		Redis:         rdis,
		Events:        events.NewPublisher(rdis),
		EditingTTL:    5 * time.Minute,
		ScanBatchSize: 2,
	})
}

func TestConflictDetection(t *testing.T) {
	t.Parallel()

	r := newTestRadar(t)
	ctx := context.Background()

	// bob is first in: no conflict
	result := r.CheckConflicts(ctx, "bob", "teamA", "hash123")
	testutil.Assert(t, false, result.HasConflict, "first editor has no conflict")
	testutil.Assert(t, "bob", strings.Join(result.Editors, ","), "editors after bob")

	// carol arrives while bob holds the file
	result = r.CheckConflicts(ctx, "carol", "teamA", "hash123")
	testutil.Assert(t, true, result.HasConflict, "second distinct editor conflicts")
	testutil.Assert(t, "bob,carol", strings.Join(result.Editors, ","), "editors contain both")
}

func TestNoSelfConflict(t *testing.T) {
	t.Parallel()

	r := newTestRadar(t)
	ctx := context.Background()

	_ = r.CheckConflicts(ctx, "bob", "teamA", "hash123")

	// A repeated call by the same user within the TTL never reports a
	// conflict with their own stale entry
	result := r.CheckConflicts(ctx, "bob", "teamA", "hash123")
	testutil.Assert(t, false, result.HasConflict, "no self conflict")
	testutil.Assert(t, "bob", strings.Join(result.Editors, ","), "bob remains sole editor")
}

func TestEditingSetExpiry(t *testing.T) {
	t.Parallel()

	rdis, mr := testutil.NewRedis(t)

	r := New(Options{
		Redis:      rdis,
		Events:     events.NewPublisher(rdis),
		EditingTTL: 5 * time.Minute,
	})

	ctx := context.Background()

	_ = r.CheckConflicts(ctx, "bob", "teamA", "hash123")

	mr.FastForward(6 * time.Minute)

	editors := r.FileEditors(ctx, "teamA", "hash123")
	testutil.Assert(t, 0, len(editors), "set expired as a whole")

	// The file is free again: a new editor sees no conflict
	result := r.CheckConflicts(ctx, "carol", "teamA", "hash123")
	testutil.Assert(t, false, result.HasConflict, "no conflict after expiry")
}

func TestClearFile(t *testing.T) {
	t.Parallel()

	r := newTestRadar(t)
	ctx := context.Background()

	_ = r.CheckConflicts(ctx, "bob", "teamA", "hash123")
	_ = r.CheckConflicts(ctx, "carol", "teamA", "hash123")

	r.ClearFile(ctx, "bob", "teamA", "hash123")

	editors := r.FileEditors(ctx, "teamA", "hash123")
	testutil.Assert(t, "carol", strings.Join(editors, ","), "only carol remains")
}

func TestClearAllForUser(t *testing.T) {
	t.Parallel()

	r := newTestRadar(t)
	ctx := context.Background()

	// bob edits several files across two teams; the batch size of 2 forces
	// the sweep through multiple cursor steps
	_ = r.CheckConflicts(ctx, "bob", "teamA", "hash1")
	_ = r.CheckConflicts(ctx, "bob", "teamA", "hash2")
	_ = r.CheckConflicts(ctx, "bob", "teamA", "hash3")
	_ = r.CheckConflicts(ctx, "carol", "teamA", "hash3")
	_ = r.CheckConflicts(ctx, "bob", "teamB", "hash4")

	removed := r.ClearAllForUser(ctx, "bob", "teamA")
	testutil.Assert(t, 3, removed, "removed from every teamA set")

	testutil.Assert(t, 0, len(r.FileEditors(ctx, "teamA", "hash1")), "teamA hash1 empty")
	testutil.Assert(t, "carol", strings.Join(r.FileEditors(ctx, "teamA", "hash3"), ","), "other editors untouched")
	testutil.Assert(t, "bob", strings.Join(r.FileEditors(ctx, "teamB", "hash4"), ","), "other team untouched")
}

func TestConflictAlertFanout(t *testing.T) {
	t.Parallel()

	rdis, _ := testutil.NewRedis(t)

	ev := events.NewPublisher(rdis)
	r := New(Options{Redis: rdis, Events: ev})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bobCh := make(chan string, 1)
	carolCh := make(chan string, 1)
	go rdis.Subscribe(ctx, bobCh, ev.PresenceChannel("bob"))
	go rdis.Subscribe(ctx, carolCh, ev.PresenceChannel("carol"))

	time.Sleep(50 * time.Millisecond)

	r.PublishConflictAlert(ctx, ConflictAlert{
		TeamID:   "teamA",
		FileHash: "hash123",
		Editors:  []string{"bob", "carol"},
	})

	for _, ch := range []chan string{bobCh, carolCh} {
		select {
		case raw := <-ch:
			testutil.Assert(t, true, strings.Contains(raw, "conflict_alert"), "alert delivered to editor channel")
		case <-time.After(2 * time.Second):
			t.Fatal("alert not delivered")
		}
	}
}
