package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	URL             string `split_words:"true" required:"true"`
	MaxConns        int    `split_words:"true" default:"20"`
	MinConns        int    `split_words:"true" default:"2"`
	ConnMaxIdleMin  int    `split_words:"true" default:"5"`
	ConnLifetimeMin int    `split_words:"true" default:"30"`
}

func (c *Config) New(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = int32(c.MaxConns)
	cfg.MinConns = int32(c.MinConns)
	cfg.MaxConnIdleTime = time.Duration(c.ConnMaxIdleMin) * time.Minute
	cfg.MaxConnLifetime = time.Duration(c.ConnLifetimeMin) * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func (c *Config) MustNew(ctx context.Context) *pgxpool.Pool {
	pool, err := c.New(ctx)
	if err != nil {
		panic(err)
	}

	return pool
}
