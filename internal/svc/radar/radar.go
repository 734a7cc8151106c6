package radar

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/devpulse/api/internal/events"
	"github.com/devpulse/api/internal/svc/redis"
)

// Instance is the conflict radar: it tracks which users are editing which
// files and flags concurrent edits of the same file within a team.
//
// Conflict detection is advisory, not safety-critical. Every operation here
// degrades gracefully on a store error: the failure is logged and reported as
// "no conflict" or "no editors", never surfaced to the caller.
type Instance interface {
	// CheckConflicts marks the user as editing the file, slides the editing
	// set's TTL, and reports whether a different user already held the file.
	CheckConflicts(ctx context.Context, userID string, teamID string, fileHash string) ConflictResult
	// PublishConflictAlert fans the alert out to each editor's own presence
	// channel. One failing recipient does not block delivery to the others.
	PublishConflictAlert(ctx context.Context, alert ConflictAlert)
	// ClearFile removes the user from one file's editing set.
	ClearFile(ctx context.Context, userID string, teamID string, fileHash string)
	// ClearAllForUser removes the user from every editing set under a team.
	ClearAllForUser(ctx context.Context, userID string, teamID string) int
	// FileEditors returns a read-only snapshot of a file's editing set.
	FileEditors(ctx context.Context, teamID string, fileHash string) []string
}

type ConflictResult struct {
	HasConflict bool     `json:"has_conflict"`
	Editors     []string `json:"editors"`
}

// ConflictAlert is transient: produced at detection time, consumed once by
// fan-out, never stored.
type ConflictAlert struct {
	TeamID   string   `json:"team_id"`
	FileHash string   `json:"file_hash"`
	FileName string   `json:"file_name,omitempty"`
	Editors  []string `json:"editors"`
}

type Options struct {
	Redis  redis.Instance
	Events events.Instance
	// EditingTTL is the sliding expiry of an editing set. The whole set
	// expires if no member refreshes it within this window.
	EditingTTL time.Duration
	// ScanBatchSize bounds each SCAN step of the clear-all sweep.
	ScanBatchSize int
}

func New(opt Options) Instance {
	if opt.EditingTTL <= 0 {
		opt.EditingTTL = 5 * time.Minute
	}

	if opt.ScanBatchSize <= 0 {
		opt.ScanBatchSize = 100
	}

	return &inst{
		redis:     opt.Redis,
		events:    opt.Events,
		ttl:       opt.EditingTTL,
		scanBatch: int64(opt.ScanBatchSize),
	}
}

type inst struct {
	redis     redis.Instance
	events    events.Instance
	ttl       time.Duration
	scanBatch int64
}

func (r *inst) key(teamID string, fileHash string) redis.Key {
	return r.redis.ComposeKey("editing", teamID, fileHash)
}

func (r *inst) CheckConflicts(ctx context.Context, userID string, teamID string, fileHash string) ConflictResult {
	key := r.key(teamID, fileHash).String()

	// Snapshot the membership before adding the caller, then decide the
	// conflict from the pre-add snapshot. The caller is never "the
	// conflicting other", even if their own previous entry has not expired.
	p := r.redis.RawClient().Pipeline()
	membersCmd := p.SMembers(ctx, key)
	p.SAdd(ctx, key, userID)
	p.Expire(ctx, key, r.ttl)

	if _, err := p.Exec(ctx); err != nil {
		zap.S().Errorw("conflict check failed",
			"user_id", userID,
			"team_id", teamID,
			"file_hash", fileHash,
			"error", err,
		)

		return ConflictResult{}
	}

	var others []string

	for _, m := range membersCmd.Val() {
		if m != userID {
			others = append(others, m)
		}
	}

	return ConflictResult{
		HasConflict: len(others) > 0,
		Editors:     append(others, userID),
	}
}

func (r *inst) ClearFile(ctx context.Context, userID string, teamID string, fileHash string) {
	if err := r.redis.RawClient().SRem(ctx, r.key(teamID, fileHash).String(), userID).Err(); err != nil {
		zap.S().Errorw("failed to clear file editing state",
			"user_id", userID,
			"team_id", teamID,
			"file_hash", fileHash,
			"error", err,
		)
	}
}

// ClearAllForUser sweeps the team's editing keys with a cursor-driven,
// bounded-batch scan and removes the user from each set it visits. Each
// removal is an independent single-key operation, so the sweep is safe to
// interrupt and retry from scratch. Returns the number of sets the user was
// removed from.
func (r *inst) ClearAllForUser(ctx context.Context, userID string, teamID string) int {
	var (
		cursor  uint64
		removed int
	)

	pattern := r.redis.ComposeKey("editing", teamID, "*").String()

	for {
		keys, next, err := r.redis.RawClient().Scan(ctx, cursor, pattern, r.scanBatch).Result()
		if err != nil {
			zap.S().Errorw("editing sweep aborted",
				"user_id", userID,
				"team_id", teamID,
				"removed", removed,
				"error", err,
			)

			return removed
		}

		for _, key := range keys {
			n, err := r.redis.RawClient().SRem(ctx, key, userID).Result()
			if err != nil {
				zap.S().Errorw("failed to remove user from editing set",
					"user_id", userID,
					"key", key,
					"error", err,
				)

				continue
			}

			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			return removed
		}
	}
}

func (r *inst) FileEditors(ctx context.Context, teamID string, fileHash string) []string {
	editors, err := r.redis.RawClient().SMembers(ctx, r.key(teamID, fileHash).String()).Result()
	if err != nil {
		zap.S().Errorw("failed to read file editors",
			"team_id", teamID,
			"file_hash", fileHash,
			"error", err,
		)

		return nil
	}

	return editors
}
