package presence

import (
	"github.com/devpulse/api/internal/api/rest/middleware"
	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/errors"
	"github.com/devpulse/api/internal/global"
)

type deleteRoute struct {
	gctx global.Context
}

func newDeleteRoute(gctx global.Context) rest.Route {
	return &deleteRoute{gctx}
}

func (r *deleteRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{user.id}",
		Method: rest.DELETE,
		Middleware: []rest.Middleware{
			middleware.Auth(r.gctx, true),
		},
	}
}

// Handler removes the user's presence on sign-out, independent of TTL.
func (r *deleteRoute) Handler(ctx *rest.Ctx) rest.APIError {
	userID := ctx.Param("user.id")

	actor, _ := ctx.GetActor()
	if actor != userID {
		return errors.ErrInsufficientScope().SetDetail("cannot delete another user's presence")
	}

	if err := r.gctx.Inst().Presences.Delete(ctx, userID); err != nil {
		ctx.Log().Errorw("failed to delete presence", "error", err)
	}

	ctx.SetStatusCode(rest.NoContent)

	return nil
}
