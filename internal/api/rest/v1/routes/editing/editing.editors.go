package editing

import (
	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/global"
)

type editorsRoute struct {
	gctx global.Context
}

func newEditorsRoute(gctx global.Context) rest.Route {
	return &editorsRoute{gctx}
}

func (r *editorsRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{team.id}/{file.hash}",
		Method: rest.GET,
	}
}

// Handler returns a read-only snapshot of a file's editing set.
func (r *editorsRoute) Handler(ctx *rest.Ctx) rest.APIError {
	teamID := ctx.Param("team.id")
	fileHash := ctx.Param("file.hash")

	editors := r.gctx.Inst().Radar.FileEditors(ctx, teamID, fileHash)
	if editors == nil {
		editors = []string{}
	}

	return ctx.JSON(rest.OK, rest.Map{
		"team_id":   teamID,
		"file_hash": fileHash,
		"editors":   editors,
	})
}
