package discount

import (
	"context"
	"errors"

	errx "github.com/bayti-store/server/internal/core/error"
	"github.com/bayti-store/server/internal/pricing"
	logx "github.com/bayti-store/server/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInvalidPercent is returned when an admin writes a percentage outside [0,100].
var ErrInvalidPercent = errors.New("discount percent must be within [0,100]")

// Rule is a category-level discount. Category name is the lookup key, at most
// one rule per name. Renaming a category silently orphans its rule; the name
// keying matches the storefront's admin UI and is kept as-is.
type Rule struct {
	Category string  `json:"category"`
	Percent  float64 `json:"percent"`
}

// Store owns the category discount rules. Reads feed the pricing resolver;
// writes are admin-only and validated at this boundary.
type Store interface {
	All(ctx context.Context) (pricing.CategoryDiscounts, error)
	Upsert(ctx context.Context, r Rule) error
	Delete(ctx context.Context, category string) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS category_discounts (
			category TEXT PRIMARY KEY,
			percent DOUBLE PRECISION NOT NULL CHECK (percent >= 0 AND percent <= 100)
		)`)
	return err
}

// All loads every rule into the resolver's lookup map. No rules is a valid,
// empty result, not an error.
func (s *PostgresStore) All(ctx context.Context) (pricing.CategoryDiscounts, error) {
	rows, err := s.pool.Query(ctx, `SELECT category, percent FROM category_discounts`)
	if err != nil {
		logx.Error().Err(err).Msg("failed to load category discounts")
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()

	out := pricing.CategoryDiscounts{}
	for rows.Next() {
		var r Rule
		if err := rows.Scan(&r.Category, &r.Percent); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		out[r.Category] = r.Percent
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return out, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, r Rule) error {
	if r.Percent < 0 || r.Percent > 100 {
		return ErrInvalidPercent
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO category_discounts (category, percent) VALUES ($1, $2)
		ON CONFLICT (category) DO UPDATE SET percent = EXCLUDED.percent`,
		r.Category, r.Percent)
	if err != nil {
		logx.Error().Err(err).Str("category", r.Category).Msg("failed to upsert category discount")
		return errx.WrapPostgres(err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, category string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM category_discounts WHERE category = $1`, category)
	if err != nil {
		logx.Error().Err(err).Str("category", category).Msg("failed to delete category discount")
		return errx.WrapPostgres(err)
	}
	if tag.RowsAffected() == 0 {
		return errx.WrapPostgres(pgx.ErrNoRows)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
