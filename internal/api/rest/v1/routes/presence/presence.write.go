package presence

import (
	"github.com/devpulse/api/internal/api/rest/middleware"
	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/errors"
	"github.com/devpulse/api/internal/global"
	"github.com/devpulse/api/internal/svc/presences"
)

type writeRoute struct {
	gctx global.Context
}

func newWriteRoute(gctx global.Context) rest.Route {
	return &writeRoute{gctx}
}

func (r *writeRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{user.id}",
		Method: rest.POST,
		Middleware: []rest.Middleware{
			middleware.Auth(r.gctx, true),
		},
	}
}

func (r *writeRoute) Handler(ctx *rest.Ctx) rest.APIError {
	userID := ctx.Param("user.id")

	// Presence keys are single-owner: only the owning user's client may
	// write this key
	actor, _ := ctx.GetActor()
	if actor != userID {
		return errors.ErrInsufficientScope().SetDetail("cannot write another user's presence")
	}

	var body writeBody

	if err := json.Unmarshal(ctx.Request.Body(), &body); err != nil {
		return errors.ErrInvalidRequest().SetDetail("bad request body: %s", err.Error())
	}

	switch body.Status {
	case presences.StatusOnline, presences.StatusIdle, presences.StatusDND, presences.StatusOffline:
	default:
		return errors.ErrInvalidRequest().SetDetail("unknown status %q", body.Status)
	}

	record, err := r.gctx.Inst().Presences.Set(ctx, userID, body.Status, body.Activity)
	if err != nil {
		// Presence is self-healing on the next heartbeat; the write failure
		// is logged and the client is not made to care
		ctx.Log().Errorw("failed to write presence", "error", err)
	}

	r.gctx.Inst().Prometheus.PresenceWrites().Inc()

	return ctx.JSON(rest.OK, record)
}

type writeBody struct {
	Status   presences.Status    `json:"status"`
	Activity *presences.Activity `json:"activity,omitempty"`
}
