package webhooks

import (
	"github.com/devpulse/api/internal/api/rest/rest"
	"github.com/devpulse/api/internal/errors"
	"github.com/devpulse/api/internal/global"
	"github.com/devpulse/api/internal/webhooks"
)

type githubRoute struct {
	gctx global.Context
}

func newGithubRoute(gctx global.Context) rest.Route {
	return &githubRoute{gctx}
}

func (r *githubRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/github",
		Method: rest.POST,
	}
}

// Handler is the inbound boundary for GitHub deliveries. Once the signature
// verifies, the provider always sees success, whatever happens downstream;
// only transport-level failures (missing headers, bad signature) surface as
// rejections.
func (r *githubRoute) Handler(ctx *rest.Ctx) rest.APIError {
	delivery := webhooks.Delivery{
		ID:        ctx.Header("X-GitHub-Delivery"),
		Event:     ctx.Header("X-GitHub-Event"),
		Signature: ctx.Header("X-Hub-Signature-256"),
		Body:      ctx.Request.Body(),
	}

	if delivery.ID == "" || delivery.Event == "" {
		return errors.ErrMissingHeader().SetFields(errors.Fields{
			"required": []string{"X-GitHub-Delivery", "X-GitHub-Event"},
		})
	}

	if delivery.Signature == "" {
		return errors.ErrMissingHeader().SetFields(errors.Fields{
			"required": []string{"X-Hub-Signature-256"},
		})
	}

	outcome := r.gctx.Inst().Webhooks.ProcessGithub(ctx, delivery)

	r.gctx.Inst().Prometheus.WebhookOutcomes().WithLabelValues(outcome.String()).Inc()

	if outcome == webhooks.OutcomeRejected {
		return errors.ErrBadSignature().SetFields(errors.Fields{
			"delivery_id": delivery.ID,
		})
	}

	return ctx.JSON(rest.OK, rest.Map{
		"received": true,
		"outcome":  outcome.String(),
	})
}
