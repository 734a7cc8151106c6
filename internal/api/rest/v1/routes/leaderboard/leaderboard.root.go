package leaderboard

import (
	"strconv"

	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/global"
	"github.com/devpulse/api/internal/svc/leaderboard"
	"github.com/devpulse/api/internal/utils"
)

type Route struct {
	Ctx global.Context
}

func New(gctx global.Context) rest.Route {
	return &Route{gctx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/leaderboard",
		Method: rest.GET,
		Children: []rest.Route{
			newTeamRoute(r.Ctx),
		},
	}
}

func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	return ctx.JSON(rest.OK, rest.Map{"message": "specify a team id"})
}

type teamRoute struct {
	gctx global.Context
}

func newTeamRoute(gctx global.Context) rest.Route {
	return &teamRoute{gctx}
}

func (r *teamRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{team.id}",
		Method: rest.GET,
	}
}

func (r *teamRoute) Handler(ctx *rest.Ctx) rest.APIError {
	teamID := ctx.Param("team.id")

	limit, err := strconv.ParseInt(utils.B2S(ctx.QueryArgs().Peek("limit")), 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, lbErr := r.gctx.Inst().Leaderboard.Top(ctx, teamID, limit)
	if lbErr != nil {
		ctx.Log().Errorw("failed to read leaderboard", "error", lbErr)

		entries = []leaderboard.Entry{}
	}

	return ctx.JSON(rest.OK, rest.Map{
		"team_id": teamID,
		"entries": entries,
	})
}
