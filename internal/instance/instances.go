package instance

import (
	"github.com/devpulse/api/internal/events"
	"github.com/devpulse/api/internal/svc/achievements"
	"github.com/devpulse/api/internal/svc/auth"
	"github.com/devpulse/api/internal/svc/leaderboard"
	"github.com/devpulse/api/internal/svc/postgres"
	"github.com/devpulse/api/internal/svc/presences"
	"github.com/devpulse/api/internal/svc/prometheus"
	"github.com/devpulse/api/internal/svc/radar"
	"github.com/devpulse/api/internal/svc/redis"
	"github.com/devpulse/api/internal/webhooks"
)

type Instances struct {
	Redis        redis.Instance
	Postgres     postgres.Instance
	Auth         auth.Authorizer
	Prometheus   prometheus.Instance
	Events       events.Instance
	Presences    presences.Instance
	Radar        radar.Instance
	Achievements achievements.Store
	Leaderboard  leaderboard.Instance
	Webhooks     webhooks.Instance
}
