package presence

import (
	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/global"
	"github.com/devpulse/api/internal/svc/presences"
)

type readRoute struct {
	gctx global.Context
}

func newReadRoute(gctx global.Context) rest.Route {
	return &readRoute{gctx}
}

func (r *readRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{user.id}",
		Method: rest.GET,
	}
}

func (r *readRoute) Handler(ctx *rest.Ctx) rest.APIError {
	userID := ctx.Param("user.id")

	record, ok := r.gctx.Inst().Presences.Get(ctx, userID)
	if !ok {
		// An expired or never-set record means offline, not an error
		record = presences.PresenceRecord{
			UserID: userID,
			Status: presences.StatusOffline,
		}
	}

	return ctx.JSON(rest.OK, record)
}
