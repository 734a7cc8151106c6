package webhooks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/devpulse/api/internal/events"
	"github.com/devpulse/api/internal/svc/achievements"
	"github.com/devpulse/api/internal/svc/leaderboard"
	"github.com/devpulse/api/internal/svc/redis"
)

// Outcome is the terminal state of one inbound delivery:
// a delivery is rejected (bad signature), recognized as a duplicate, ignored
// (unknown or malformed), applied, or failed internally. Everything past
// Rejected is acknowledged to the provider as success, so its at-least-once
// retry behavior never amplifies into a retry storm.
type Outcome uint8

const (
	OutcomeApplied Outcome = iota
	OutcomeDuplicate
	OutcomeIgnored
	OutcomeRejected
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Delivery is one inbound webhook: the provider-supplied delivery id, the
// event name, the signature header and the exact raw body the signature was
// computed over.
type Delivery struct {
	ID        string
	Event     string
	Signature string
	Body      []byte
}

type Instance interface {
	// ProcessGithub runs a delivery through the ingestion state machine.
	// Signature verification happens first: a delivery that fails it never
	// touches the dedup store, so a correctly signed redelivery with the
	// same id is still processed.
	ProcessGithub(ctx context.Context, d Delivery) Outcome
}

type Options struct {
	Redis        redis.Instance
	Events       events.Instance
	Achievements achievements.Store
	Leaderboard  leaderboard.Instance
	// Secret is the shared HMAC secret for the GitHub webhook endpoint.
	Secret string
	// DedupTTL is how long a delivery id is remembered. Defaults to 24h.
	DedupTTL time.Duration
}

func New(opt Options) Instance {
	if opt.DedupTTL <= 0 {
		opt.DedupTTL = 24 * time.Hour
	}

	return &inst{
		redis:        opt.Redis,
		events:       opt.Events,
		achievements: opt.Achievements,
		leaderboard:  opt.Leaderboard,
		secret:       opt.Secret,
		dedupTTL:     opt.DedupTTL,
	}
}

type inst struct {
	redis        redis.Instance
	events       events.Instance
	achievements achievements.Store
	leaderboard  leaderboard.Instance
	secret       string
	dedupTTL     time.Duration
}

func (w *inst) ProcessGithub(ctx context.Context, d Delivery) Outcome {
	if !w.verifySignature(d.Signature, d.Body) {
		zap.S().Warnw("webhook signature verification failed",
			"delivery_id", d.ID,
			"event", d.Event,
		)

		return OutcomeRejected
	}

	seen, err := w.markDelivery(ctx, d.ID)
	if err != nil {
		// Without the marker we cannot bound processing to at most once, so
		// the delivery is dropped rather than risking a double side effect.
		zap.S().Errorw("webhook dedup store unavailable",
			"delivery_id", d.ID,
			"error", err,
		)

		return OutcomeFailed
	}

	if seen {
		zap.S().Debugw("duplicate webhook delivery",
			"delivery_id", d.ID,
			"event", d.Event,
		)

		return OutcomeDuplicate
	}

	outcome := w.applyGithub(ctx, d)

	zap.S().Infow("webhook processed",
		"delivery_id", d.ID,
		"event", d.Event,
		"outcome", outcome.String(),
	)

	return outcome
}

// markDelivery sets the dedup marker for a delivery id with a fixed TTL.
// First writer wins; returns whether the id was already marked.
func (w *inst) markDelivery(ctx context.Context, deliveryID string) (bool, error) {
	key := w.redis.ComposeKey("webhook", "dedup", deliveryID).String()

	set, err := w.redis.RawClient().SetNX(ctx, key, "1", w.dedupTTL).Result()
	if err != nil {
		return false, err
	}

	return !set, nil
}
