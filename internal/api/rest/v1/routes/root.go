package routes

import (
	"strconv"
	"time"

	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/api/rest/v1/routes/editing"
	"github.com/devpulse/api/internal/api/rest/v1/routes/leaderboard"
	"github.com/devpulse/api/internal/api/rest/v1/routes/presence"
	"github.com/devpulse/api/internal/api/rest/v1/routes/webhooks"
	"github.com/devpulse/api/internal/global"
)

var uptime = time.Now()

type Route struct {
	Ctx global.Context
}

func New(gctx global.Context) rest.Route {
	return &Route{gctx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/v1" + r.Ctx.Config().Http.VersionSuffix,
		Method: rest.GET,
		Children: []rest.Route{
			presence.New(r.Ctx),
			editing.New(r.Ctx),
			webhooks.New(r.Ctx),
			leaderboard.New(r.Ctx),
		},
	}
}

func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	return ctx.JSON(rest.OK, HealthResponse{
		Online: true,
		Uptime: strconv.Itoa(int(uptime.UnixMilli())),
	})
}

type HealthResponse struct {
	Online bool   `json:"online"`
	Uptime string `json:"uptime"`
}
