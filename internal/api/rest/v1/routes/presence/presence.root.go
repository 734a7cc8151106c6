package presence

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/errors"
	"github.com/devpulse/api/internal/global"
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
		URI:    "/presence",
		Method: rest.POST,
		Children: []rest.Route{
			newWriteRoute(r.Ctx),
			newReadRoute(r.Ctx),
			newDeleteRoute(r.Ctx),
		},
	}
}

// Handler resolves presences for a batch of users. Users with no live record
// are omitted; omission means offline.
func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	var body batchQueryBody

	if err := json.Unmarshal(ctx.Request.Body(), &body); err != nil {
		return errors.ErrInvalidRequest().SetDetail("bad request body: %s", err.Error())
	}

	if len(body.UserIDs) == 0 {
		return errors.ErrInvalidRequest().SetDetail("no user ids given")
	}

	result := r.Ctx.Inst().Presences.GetMany(ctx, body.UserIDs)

	return ctx.JSON(rest.OK, rest.Map{"presences": result})
}

type batchQueryBody struct {
	UserIDs []string `json:"user_ids"`
}
