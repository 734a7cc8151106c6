package radar

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/devpulse/api/internal/events"
)

func (r *inst) PublishConflictAlert(ctx context.Context, alert ConflictAlert) {
	msg, err := events.NewMessage(events.MessageTypeConflictAlert, alert)
	if err != nil {
		zap.S().Errorw("failed to encode conflict alert",
			"team_id", alert.TeamID,
			"file_hash", alert.FileHash,
			"error", err,
		)

		return
	}

	// Each editor gets one message addressed to their own channel. Publishes
	// are attempted independently; failures are collected, not short-circuited.
	var errs error

	for _, editor := range alert.Editors {
		if err := r.events.Publish(ctx, r.events.PresenceChannel(editor), msg); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if errs != nil {
		zap.S().Warnw("conflict alert partially delivered",
			"team_id", alert.TeamID,
			"file_hash", alert.FileHash,
			"editors", len(alert.Editors),
			"error", errs,
		)
	}
}
