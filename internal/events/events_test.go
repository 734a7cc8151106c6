package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/devpulse/api/internal/testutil"
)

func TestMessageEnvelope(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MessageTypePresence, map[string]string{"user_id": "alice"})
	testutil.IsNil(t, err, "message built")
	testutil.Assert(t, MessageTypePresence, msg.Type, "type carried")
	testutil.Assert(t, true, msg.Timestamp > 0, "timestamp set")
	testutil.Assert(t, true, strings.Contains(string(msg.Data), "alice"), "payload embedded")
}

func TestBroadcastReachesEveryUser(t *testing.T) {
	t.Parallel()

	rdis, _ := testutil.NewRedis(t)
	ev := NewPublisher(rdis)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	aliceCh := make(chan string, 1)
	bobCh := make(chan string, 1)
	go rdis.Subscribe(ctx, aliceCh, ev.PresenceChannel("alice"))
	go rdis.Subscribe(ctx, bobCh, ev.PresenceChannel("bob"))

	time.Sleep(50 * time.Millisecond)

	err := ev.BroadcastToUsers(ctx, []string{"alice", "bob"}, MessageTypeAchievementEarned, map[string]string{"type": "pr_merged"})
	testutil.IsNil(t, err, "broadcast succeeds")

	for _, ch := range []chan string{aliceCh, bobCh} {
		select {
		case raw := <-ch:
			testutil.Assert(t, true, strings.Contains(raw, "achievement_earned"), "typed message delivered")
		case <-time.After(2 * time.Second):
			t.Fatal("broadcast not delivered")
		}
	}
}
