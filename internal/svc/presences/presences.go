package presences

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/devpulse/api/internal/events"
	"github.com/devpulse/api/internal/svc/redis"
	"github.com/devpulse/api/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Status string

const (
	StatusOnline  Status = "online"
	StatusIdle    Status = "idle"
	StatusDND     Status = "dnd"
	StatusOffline Status = "offline"
)

// Activity describes what a user is working on while present.
type Activity struct {
	FileName        string `json:"file_name,omitempty"`
	Language        string `json:"language,omitempty"`
	Project         string `json:"project,omitempty"`
	SessionDuration int64  `json:"session_duration,omitempty"`
	// Intensity is a 0-100 measure of how actively the user is editing.
	Intensity int `json:"intensity,omitempty"`
}

// PresenceRecord is the live presence state of one user. It exists only in
// the ephemeral store; absence of a record means the user is offline.
type PresenceRecord struct {
	UserID    string    `json:"user_id"`
	Status    Status    `json:"status"`
	Activity  *Activity `json:"activity,omitempty"`
	UpdatedAt int64     `json:"updated_at"`
}

type Instance interface {
	// Set writes the user's presence with a sliding TTL and publishes the
	// record to the user's presence channel. The publish is best-effort.
	Set(ctx context.Context, userID string, status Status, activity *Activity) (PresenceRecord, error)
	// Get returns the live presence of a user. A miss, whether expired or
	// never set, is reported as not-ok rather than an error.
	Get(ctx context.Context, userID string) (PresenceRecord, bool)
	// GetMany resolves presences for a batch of users. Users with no live
	// record are omitted from the result; callers treat omission as offline.
	GetMany(ctx context.Context, userIDs []string) map[string]PresenceRecord
	// Delete removes the user's presence immediately, independent of TTL.
	Delete(ctx context.Context, userID string) error
	TTL() time.Duration
}

type Options struct {
	Redis  redis.Instance
	Events events.Instance
	// HeartbeatInterval is how often clients are expected to renew their
	// presence. The record TTL is twice this, so one missed heartbeat does
	// not produce a false offline.
	HeartbeatInterval time.Duration
}

func New(opt Options) Instance {
	if opt.HeartbeatInterval <= 0 {
		opt.HeartbeatInterval = 30 * time.Second
	}

	return &inst{
		redis:  opt.Redis,
		events: opt.Events,
		ttl:    2 * opt.HeartbeatInterval,
	}
}

type inst struct {
	redis  redis.Instance
	events events.Instance
	ttl    time.Duration
}

func (p *inst) key(userID string) redis.Key {
	return p.redis.ComposeKey("presence", userID)
}

func (p *inst) TTL() time.Duration {
	return p.ttl
}

func (p *inst) Set(ctx context.Context, userID string, status Status, activity *Activity) (PresenceRecord, error) {
	record := PresenceRecord{
		UserID:    userID,
		Status:    status,
		Activity:  activity,
		UpdatedAt: time.Now().UnixMilli(),
	}

	j, err := json.Marshal(record)
	if err != nil {
		return record, err
	}

	// Each write resets the expiry: a sliding window, not a fixed lease
	if err := p.redis.RawClient().Set(ctx, p.key(userID).String(), utils.B2S(j), p.ttl).Err(); err != nil {
		return record, err
	}

	// Presence is self-healing on the next heartbeat, so a failed publish is
	// logged and swallowed rather than retried
	msg, err := events.NewMessage(events.MessageTypePresence, record)
	if err == nil {
		err = p.events.Publish(ctx, p.events.PresenceChannel(userID), msg)
	}

	if err != nil {
		zap.S().Warnw("failed to publish presence update",
			"user_id", userID,
			"error", err,
		)
	}

	return record, nil
}

func (p *inst) Get(ctx context.Context, userID string) (PresenceRecord, bool) {
	raw, err := p.redis.RawClient().Get(ctx, p.key(userID).String()).Result()
	if err != nil {
		if err != goredis.Nil {
			zap.S().Errorw("failed to read presence",
				"user_id", userID,
				"error", err,
			)
		}

		return PresenceRecord{}, false
	}

	var record PresenceRecord
	if err := json.Unmarshal(utils.S2B(raw), &record); err != nil {
		zap.S().Errorw("malformed presence record",
			"user_id", userID,
			"error", err,
		)

		return PresenceRecord{}, false
	}

	return record, true
}

func (p *inst) GetMany(ctx context.Context, userIDs []string) map[string]PresenceRecord {
	result := make(map[string]PresenceRecord, len(userIDs))
	if len(userIDs) == 0 {
		return result
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = p.key(id).String()
	}

	values, err := p.redis.RawClient().MGet(ctx, keys...).Result()
	if err != nil {
		zap.S().Errorw("failed to read presence batch",
			"count", len(userIDs),
			"error", err,
		)

		return result
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // no live record for this id
		}

		var record PresenceRecord
		if err := json.Unmarshal(utils.S2B(raw), &record); err != nil {
			continue
		}

		result[userIDs[i]] = record
	}

	return result
}

func (p *inst) Delete(ctx context.Context, userID string) error {
	return p.redis.RawClient().Del(ctx, p.key(userID).String()).Err()
}
