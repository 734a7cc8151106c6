package achievements

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/devpulse/api/internal/svc/postgres"
)

// Record is a durable achievement grant. At most one record may exist per
// (user, type, ref) tuple; the ref field discriminates the triggering event,
// e.g. an issue or pull request number.
type Record struct {
	UserID   string
	Type     string
	Ref      string
	Metadata []byte
	EarnedAt time.Time
}

type CreateOutcome uint8

const (
	OutcomeCreated CreateOutcome = iota
	// OutcomeAlreadyExists covers both the pre-check hit and a lost creation
	// race. Callers treat it as success with no side effects.
	OutcomeAlreadyExists
	OutcomeStoreError
)

// Store proposes achievement creation against the durable store. The only
// property it relies on is that creation fails when a matching unique tuple
// already exists.
type Store interface {
	Create(ctx context.Context, rec Record) (CreateOutcome, error)
	Exists(ctx context.Context, userID string, achievementType string, ref string) (bool, error)
}

type Options struct {
	Postgres postgres.Instance
}

func New(opt Options) Store {
	return &pgStore{pg: opt.Postgres}
}

type pgStore struct {
	pg postgres.Instance
}

const pgUniqueViolation = "23505"

func (s *pgStore) Create(ctx context.Context, rec Record) (CreateOutcome, error) {
	if rec.EarnedAt.IsZero() {
		rec.EarnedAt = time.Now()
	}

	_, err := s.pg.Pool().Exec(ctx,
		`INSERT INTO achievements (user_id, type, ref, metadata, earned_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.UserID, rec.Type, rec.Ref, rec.Metadata, rec.EarnedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			// Lost the race against a concurrent grant. The record exists, so
			// this attempt is a success with nothing left to do.
			return OutcomeAlreadyExists, nil
		}

		return OutcomeStoreError, err
	}

	return OutcomeCreated, nil
}

func (s *pgStore) Exists(ctx context.Context, userID string, achievementType string, ref string) (bool, error) {
	var exists bool

	err := s.pg.Pool().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM achievements WHERE user_id = $1 AND type = $2 AND ref = $3)`,
		userID, achievementType, ref,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}
