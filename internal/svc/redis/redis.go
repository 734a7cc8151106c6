package redis

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Instance is the handle to the ephemeral store. Every piece of shared
// mutable state in this service (presence records, editing sets, dedup
// markers, leaderboards) lives behind this interface, and every mutation is a
// single atomic primitive on the store.
type Instance interface {
	Ping(ctx context.Context) error
	RawClient() redis.UniversalClient
	ComposeKey(namespace string, parts ...string) Key
	Subscribe(ctx context.Context, ch chan string, subscribeTo ...Key)
	Close() error
}

type Options struct {
	Username   string
	Password   string
	Database   int
	Sentinel   bool
	MasterName string
	Addresses  []string
}

func New(ctx context.Context, opt Options) (Instance, error) {
	var rc redis.UniversalClient

	if opt.Sentinel {
		rc = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       opt.MasterName,
			SentinelAddrs:    opt.Addresses,
			SentinelUsername: opt.Username,
			SentinelPassword: opt.Password,
			Username:         opt.Username,
			Password:         opt.Password,
			DB:               opt.Database,
		})
	} else {
		rc = redis.NewClient(&redis.Options{
			Addr:     opt.Addresses[0],
			Username: opt.Username,
			Password: opt.Password,
			DB:       opt.Database,
		})
	}

	if err := rc.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &redisInst{client: rc}, nil
}

type redisInst struct {
	client redis.UniversalClient
}

func (r *redisInst) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisInst) RawClient() redis.UniversalClient {
	return r.client
}

func (r *redisInst) ComposeKey(namespace string, parts ...string) Key {
	return Key(strings.Join(append([]string{namespace}, parts...), ":"))
}

// Subscribe forwards every message published to the given channels into ch
// until ctx is canceled. Delivery is best-effort: a message published while
// the receiver is slow is dropped rather than buffered without bound.
func (r *redisInst) Subscribe(ctx context.Context, ch chan string, subscribeTo ...Key) {
	channels := make([]string, len(subscribeTo))
	for i, k := range subscribeTo {
		channels[i] = k.String()
	}

	ps := r.client.Subscribe(ctx, channels...)
	defer func() {
		_ = ps.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ps.Channel():
			if !ok {
				return
			}

			select {
			case ch <- msg.Payload:
			default:
			}
		}
	}
}

func (r *redisInst) Close() error {
	return r.client.Close()
}

type Key string

func (k Key) String() string {
	return string(k)
}
