package v1

import (
	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/api/rest/v1/routes"
	"github.com/devpulse/api/internal/global"
)

func API(gctx global.Context, router *rest.Router) rest.Route {
	return routes.New(gctx)
}
