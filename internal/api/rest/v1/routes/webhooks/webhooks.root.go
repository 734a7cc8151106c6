package webhooks

import (
	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/global"
)

type Route struct {
	Ctx global.Context
}

func New(gctx global.Context) rest.Route {
	return &Route{gctx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/webhooks",
		Method: rest.GET,
		Children: []rest.Route{
			newGithubRoute(r.Ctx),
		},
	}
}

func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	return ctx.JSON(rest.OK, rest.Map{"providers": []string{"github"}})
}
