package testutil

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/devpulse/api/internal/svc/redis"
)

// NewRedis starts an in-process redis and returns a connected store instance.
// Both are torn down with the test.
func NewRedis(t *testing.T) (redis.Instance, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	inst, err := redis.New(context.Background(), redis.Options{
		Addresses: []string{mr.Addr()},
	})
	if err != nil {
		t.Fatalf("failed to connect to test redis: %v", err)
	}

	t.Cleanup(func() {
		_ = inst.Close()
	})

	return inst, mr
}
