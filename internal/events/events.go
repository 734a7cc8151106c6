package events

import (
	"context"
	"encoding/json"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/devpulse/api/internal/svc/redis"
	"github.com/devpulse/api/internal/utils"
)

var jsonx = jsoniter.ConfigCompatibleWithStandardLibrary

// Instance publishes real-time messages to per-user channels over the
// ephemeral store's pub/sub. Delivery is best-effort with no replay: a
// subscriber that is not connected at publish time misses the message.
type Instance interface {
	Publish(ctx context.Context, channel redis.Key, msg Message) error
	PresenceChannel(userID string) redis.Key
	BroadcastToUsers(ctx context.Context, userIDs []string, msgType MessageType, data interface{}) error
}

type MessageType string

const (
	MessageTypePresence          MessageType = "presence_update"
	MessageTypeConflictAlert     MessageType = "conflict_alert"
	MessageTypeAchievementEarned MessageType = "achievement_earned"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(t MessageType, data interface{}) (Message, error) {
	b, err := jsonx.Marshal(data)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Type:      t,
		Data:      b,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

type eventsInst struct {
	redis redis.Instance
}

func NewPublisher(rdis redis.Instance) Instance {
	return &eventsInst{redis: rdis}
}

func (inst *eventsInst) PresenceChannel(userID string) redis.Key {
	return inst.redis.ComposeKey("channel", "presence", userID)
}

func (inst *eventsInst) Publish(ctx context.Context, channel redis.Key, msg Message) error {
	j, err := jsonx.Marshal(msg)
	if err != nil {
		return err
	}

	return inst.redis.RawClient().Publish(ctx, channel.String(), utils.B2S(j)).Err()
}

// BroadcastToUsers delivers one message to each user's presence channel in a
// single pipelined round trip.
func (inst *eventsInst) BroadcastToUsers(ctx context.Context, userIDs []string, msgType MessageType, data interface{}) error {
	msg, err := NewMessage(msgType, data)
	if err != nil {
		return err
	}

	j, err := jsonx.Marshal(msg)
	if err != nil {
		return err
	}

	p := inst.redis.RawClient().Pipeline()

	for _, id := range userIDs {
		p.Publish(ctx, inst.PresenceChannel(id).String(), utils.B2S(j))
	}

	_, err = p.Exec(ctx)

	return err
}
