package webhooks

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/devpulse/api/internal/events"
	"github.com/devpulse/api/internal/svc/achievements"
)

var (
	jsonx    = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New()
)

// Achievement types granted from GitHub activity.
const (
	AchievementIssueClosed = "issue_closed"
	AchievementPRMerged    = "pr_merged"
)

// Leaderboard weights.
const (
	pointsIssueClosed = 5
	pointsPRMerged    = 10
	pointsPerCommit   = 1
)

type githubRepository struct {
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login" validate:"required"`
	} `json:"owner" validate:"required"`
}

type githubSender struct {
	Login string `json:"login" validate:"required"`
}

type githubIssuesEvent struct {
	Action string `json:"action" validate:"required"`
	Issue  struct {
		Number int    `json:"number" validate:"required"`
		Title  string `json:"title"`
	} `json:"issue" validate:"required"`
	Repository githubRepository `json:"repository" validate:"required"`
	Sender     githubSender     `json:"sender" validate:"required"`
}

type githubPullRequestEvent struct {
	Action      string `json:"action" validate:"required"`
	PullRequest struct {
		Number int    `json:"number" validate:"required"`
		Merged bool   `json:"merged"`
		Title  string `json:"title"`
	} `json:"pull_request" validate:"required"`
	Repository githubRepository `json:"repository" validate:"required"`
	Sender     githubSender     `json:"sender" validate:"required"`
}

type githubPushEvent struct {
	Ref     string `json:"ref"`
	Commits []struct {
		ID string `json:"id"`
	} `json:"commits"`
	Repository githubRepository `json:"repository" validate:"required"`
	Pusher     struct {
		Name string `json:"name" validate:"required"`
	} `json:"pusher" validate:"required"`
}

// decodeEvent unmarshals and validates one tagged payload variant. An
// invalid shape is a distinct rejected variant at this boundary; business
// logic never sees it.
func decodeEvent[T any](d Delivery) (T, bool) {
	var payload T

	if err := jsonx.Unmarshal(d.Body, &payload); err != nil {
		zap.S().Warnw("malformed webhook payload",
			"delivery_id", d.ID,
			"event", d.Event,
			"error", err,
		)

		return payload, false
	}

	if err := validate.Struct(payload); err != nil {
		zap.S().Warnw("invalid webhook payload",
			"delivery_id", d.ID,
			"event", d.Event,
			"error", err,
		)

		return payload, false
	}

	return payload, true
}

func (w *inst) applyGithub(ctx context.Context, d Delivery) Outcome {
	switch d.Event {
	case "issues":
		payload, ok := decodeEvent[githubIssuesEvent](d)
		if !ok {
			return OutcomeIgnored
		}

		if payload.Action != "closed" {
			return OutcomeIgnored
		}

		return w.grant(ctx, grantRequest{
			TeamID:  payload.Repository.Owner.Login,
			UserID:  payload.Sender.Login,
			Type:    AchievementIssueClosed,
			Ref:     strconv.Itoa(payload.Issue.Number),
			Points:  pointsIssueClosed,
			Subject: payload.Issue.Title,
		})

	case "pull_request":
		payload, ok := decodeEvent[githubPullRequestEvent](d)
		if !ok {
			return OutcomeIgnored
		}

		if payload.Action != "closed" || !payload.PullRequest.Merged {
			return OutcomeIgnored
		}

		return w.grant(ctx, grantRequest{
			TeamID:  payload.Repository.Owner.Login,
			UserID:  payload.Sender.Login,
			Type:    AchievementPRMerged,
			Ref:     strconv.Itoa(payload.PullRequest.Number),
			Points:  pointsPRMerged,
			Subject: payload.PullRequest.Title,
		})

	case "push":
		payload, ok := decodeEvent[githubPushEvent](d)
		if !ok {
			return OutcomeIgnored
		}

		if len(payload.Commits) == 0 {
			return OutcomeIgnored
		}

		if err := w.leaderboard.Incr(ctx, payload.Repository.Owner.Login, payload.Pusher.Name, int64(len(payload.Commits))*pointsPerCommit); err != nil {
			zap.S().Errorw("failed to apply push to leaderboard",
				"delivery_id", d.ID,
				"error", err,
			)

			return OutcomeFailed
		}

		return OutcomeApplied

	default:
		zap.S().Debugw("unhandled webhook event type",
			"delivery_id", d.ID,
			"event", d.Event,
		)

		return OutcomeIgnored
	}
}

type grantRequest struct {
	TeamID  string
	UserID  string
	Type    string
	Ref     string
	Points  int64
	Subject string
}

type achievementNotice struct {
	UserID string `json:"user_id"`
	TeamID string `json:"team_id"`
	Type   string `json:"type"`
	Ref    string `json:"ref"`
}

func (w *inst) grant(ctx context.Context, req grantRequest) Outcome {
	// The dedup marker alone is not sufficient: a redelivery after a consumer
	// restart carries a fresh delivery id for the same logical event. The
	// durable tuple check catches that case.
	if exists, err := w.achievements.Exists(ctx, req.UserID, req.Type, req.Ref); err != nil {
		zap.S().Warnw("achievement pre-check failed, deferring to unique constraint",
			"user_id", req.UserID,
			"type", req.Type,
			"error", err,
		)
	} else if exists {
		return OutcomeDuplicate
	}

	meta, _ := jsonx.Marshal(map[string]string{"subject": req.Subject})

	outcome, err := w.achievements.Create(ctx, achievements.Record{
		UserID:   req.UserID,
		Type:     req.Type,
		Ref:      req.Ref,
		Metadata: meta,
	})

	switch outcome {
	case achievements.OutcomeAlreadyExists:
		return OutcomeDuplicate
	case achievements.OutcomeStoreError:
		zap.S().Errorw("failed to create achievement",
			"user_id", req.UserID,
			"type", req.Type,
			"ref", req.Ref,
			"error", err,
		)

		return OutcomeFailed
	}

	// Side effects fire only after a successful creation, never on a
	// detected duplicate
	if err := w.leaderboard.Incr(ctx, req.TeamID, req.UserID, req.Points); err != nil {
		zap.S().Errorw("failed to increment leaderboard",
			"team_id", req.TeamID,
			"user_id", req.UserID,
			"error", err,
		)
	}

	if err := w.events.BroadcastToUsers(ctx, []string{req.UserID}, events.MessageTypeAchievementEarned, achievementNotice{
		UserID: req.UserID,
		TeamID: req.TeamID,
		Type:   req.Type,
		Ref:    req.Ref,
	}); err != nil {
		zap.S().Warnw("failed to notify achievement",
			"user_id", req.UserID,
			"type", req.Type,
			"error", err,
		)
	}

	return OutcomeApplied
}
