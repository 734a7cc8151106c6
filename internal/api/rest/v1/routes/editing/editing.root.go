package editing

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/devpulse/api/internal/api/rest/middleware"
	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/errors"
	"github.com/devpulse/api/internal/global"
	"github.com/devpulse/api/internal/svc/radar"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Route struct {
	Ctx global.Context
}

func New(gctx global.Context) rest.Route {
	return &Route{gctx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/editing",
		Method: rest.POST,
		Middleware: []rest.Middleware{
			middleware.Auth(r.Ctx, true),
		},
		Children: []rest.Route{
			newClearRoute(r.Ctx),
			newEditorsRoute(r.Ctx),
		},
	}
}

// Handler marks the actor as editing a file and reports whether another user
// already holds it. A detected conflict is fanned out to every editor's own
// channel.
func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	var body checkBody

	if err := json.Unmarshal(ctx.Request.Body(), &body); err != nil {
		return errors.ErrInvalidRequest().SetDetail("bad request body: %s", err.Error())
	}

	if body.TeamID == "" || body.FileHash == "" {
		return errors.ErrInvalidRequest().SetDetail("team_id and file_hash are required")
	}

	actor, _ := ctx.GetActor()

	result := r.Ctx.Inst().Radar.CheckConflicts(ctx, actor, body.TeamID, body.FileHash)

	if result.HasConflict {
		r.Ctx.Inst().Prometheus.ConflictsDetected().Inc()

		alert := radar.ConflictAlert{
			TeamID:   body.TeamID,
			FileHash: body.FileHash,
			FileName: body.FileName,
			Editors:  result.Editors,
		}

		// Fan out on the global context: the alert outlives this request
		go r.Ctx.Inst().Radar.PublishConflictAlert(r.Ctx, alert)
	}

	return ctx.JSON(rest.OK, result)
}

type checkBody struct {
	TeamID   string `json:"team_id"`
	FileHash string `json:"file_hash"`
	FileName string `json:"file_name,omitempty"`
}
