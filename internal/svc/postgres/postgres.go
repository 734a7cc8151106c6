package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Instance is the handle to the durable relational store. It is constructed
// once at startup and injected; nothing in this service opens ad-hoc
// connections.
type Instance interface {
	Ping(ctx context.Context) error
	Pool() *pgxpool.Pool
	Close()
}

type Options struct {
	URI string
}

func New(ctx context.Context, opt Options) (Instance, error) {
	pool, err := pgxpool.New(ctx, opt.URI)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return &pgInst{pool: pool}, nil
}

type pgInst struct {
	pool *pgxpool.Pool
}

func (p *pgInst) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *pgInst) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *pgInst) Close() {
	p.pool.Close()
}
