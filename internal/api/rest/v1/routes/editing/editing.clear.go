package editing

import (
	"github.com/devpulse/api/internal/api/rest/middleware"
	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/errors"
	"github.com/devpulse/api/internal/global"
)

type clearRoute struct {
	gctx global.Context
}

func newClearRoute(gctx global.Context) rest.Route {
	return &clearRoute{gctx}
}

func (r *clearRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/clear",
		Method: rest.POST,
		Middleware: []rest.Middleware{
			middleware.Auth(r.gctx, true),
		},
	}
}

// Handler removes the actor from one file's editing set, or from every set
// under the team when no file is given (the disconnect case).
func (r *clearRoute) Handler(ctx *rest.Ctx) rest.APIError {
	var body clearBody

	if err := json.Unmarshal(ctx.Request.Body(), &body); err != nil {
		return errors.ErrInvalidRequest().SetDetail("bad request body: %s", err.Error())
	}

	if body.TeamID == "" {
		return errors.ErrInvalidRequest().SetDetail("team_id is required")
	}

	actor, _ := ctx.GetActor()

	if body.FileHash != "" {
		r.gctx.Inst().Radar.ClearFile(ctx, actor, body.TeamID, body.FileHash)

		return ctx.JSON(rest.OK, rest.Map{"cleared": 1})
	}

	removed := r.gctx.Inst().Radar.ClearAllForUser(ctx, actor, body.TeamID)

	return ctx.JSON(rest.OK, rest.Map{"cleared": removed})
}

type clearBody struct {
	TeamID   string `json:"team_id"`
	FileHash string `json:"file_hash,omitempty"`
}
