package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/bugsnag/panicwrap"
	"go.uber.org/zap"

	"github.com/devpulse/api/internal/api/rest"
	"github.com/devpulse/api/internal/configure"
	"github.com/devpulse/api/internal/events"
	"github.com/devpulse/api/internal/global"
	"github.com/devpulse/api/internal/health"
	"github.com/devpulse/api/internal/monitoring"
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

var (
	Version = "development"
	Time    = "unknown"
	User    = "unknown"
)

func main() {
	config := configure.New()

	exitStatus, err := panicwrap.BasicWrap(func(s string) {
		zap.S().Errorw("panic detected",
			"panic", s,
		)
	})
	if err != nil {
		zap.S().Errorw("failed to setup panic handler",
			"error", err,
		)
		os.Exit(2)
	}

	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if !config.NoHeader {
		zap.S().Info("DevPulse Coordination API")
		zap.S().Infof("Version: %s", Version)
		zap.S().Infof("build.Time: %s", Time)
		zap.S().Infof("build.User: %s", User)
	}

	zap.S().Debugf("MaxProcs: %d", runtime.GOMAXPROCS(0))

	// These secrets have no safe default; refusing to start beats silently
	// accepting unauthenticated traffic
	if config.Webhooks.GithubSecret == "" {
		zap.S().Fatalw("missing webhook secret")
	}

	if config.Credentials.JWTSecret == "" {
		zap.S().Fatalw("missing jwt secret")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	gCtx, cancel := global.WithCancel(global.New(context.Background(), config))

	{
		gCtx.Inst().Redis, err = redis.New(gCtx, redis.Options{
			Username:   config.Redis.Username,
			Password:   config.Redis.Password,
			Database:   config.Redis.Database,
			Sentinel:   config.Redis.Sentinel,
			Addresses:  config.Redis.Addresses,
			MasterName: config.Redis.MasterName,
		})
		if err != nil {
			zap.S().Fatalw("failed to connect to redis",
				"error", err,
			)
		}
	}

	{
		gCtx.Inst().Postgres, err = postgres.New(gCtx, postgres.Options{
			URI: config.Postgres.URI,
		})
		if err != nil {
			zap.S().Fatalw("failed to connect to postgres",
				"error", err,
			)
		}
	}

	{
		gCtx.Inst().Auth = auth.New(auth.Options{
			JWTSecret: config.Credentials.JWTSecret,
		})
	}

	{
		gCtx.Inst().Prometheus = prometheus.New(prometheus.Options{
			Labels: config.Monitoring.Labels.ToPrometheus(),
		})
	}

	{
		gCtx.Inst().Events = events.NewPublisher(gCtx.Inst().Redis)
	}

	{
		gCtx.Inst().Presences = presences.New(presences.Options{
			Redis:             gCtx.Inst().Redis,
			Events:            gCtx.Inst().Events,
			HeartbeatInterval: time.Duration(config.Presence.HeartbeatInterval) * time.Second,
		})
	}

	{
		gCtx.Inst().Radar = radar.New(radar.Options{
			Redis:         gCtx.Inst().Redis,
			Events:        gCtx.Inst().Events,
			EditingTTL:    time.Duration(config.Radar.EditingTTL) * time.Second,
			ScanBatchSize: config.Radar.ScanBatchSize,
		})
	}

	{
		gCtx.Inst().Achievements = achievements.New(achievements.Options{
			Postgres: gCtx.Inst().Postgres,
		})
	}

	{
		gCtx.Inst().Leaderboard = leaderboard.New(leaderboard.Options{
			Redis: gCtx.Inst().Redis,
		})
	}

	{
		gCtx.Inst().Webhooks = webhooks.New(webhooks.Options{
			Redis:        gCtx.Inst().Redis,
			Events:       gCtx.Inst().Events,
			Achievements: gCtx.Inst().Achievements,
			Leaderboard:  gCtx.Inst().Leaderboard,
			Secret:       config.Webhooks.GithubSecret,
			DedupTTL:     time.Duration(config.Webhooks.DedupTTL) * time.Hour,
		})
	}

	wg := sync.WaitGroup{}

	if gCtx.Config().Health.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-health.New(gCtx)
		}()
	}
	if gCtx.Config().Monitoring.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-monitoring.New(gCtx)
		}()
	}

	done := make(chan struct{})
	go func() {
		<-sig
		cancel()
		go func() {
			select {
			case <-time.After(time.Minute):
			case <-sig:
			}
			zap.S().Fatal("force shutdown")
		}()

		zap.S().Info("shutting down")

		wg.Wait()

		_ = gCtx.Inst().Redis.Close()
		gCtx.Inst().Postgres.Close()

		close(done)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := rest.New(gCtx); err != nil {
			zap.S().Fatalw("rest failed",
				"error", err,
			)
		}
	}()

	zap.S().Info("running")

	<-done

	zap.S().Info("shutdown")
	os.Exit(0)
}
