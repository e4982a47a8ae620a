package profile

import (
	"context"
	"errors"

	errx "github.com/bayti-store/server/internal/core/error"
	"github.com/bayti-store/server/internal/pricing"
	logx "github.com/bayti-store/server/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInvalidDiscount is returned when an admin writes a malformed pending discount.
var ErrInvalidDiscount = errors.New("invalid pending discount")

// Profile is a user's pricing context: the tier flag plus at most one pending
// order-level discount.
type Profile struct {
	UserID    string                `json:"user_id"`
	Wholesale bool                  `json:"wholesale"`
	Discount  *pricing.UserDiscount `json:"discount,omitempty"`
}

// Store owns pricing profiles. Get never fails on an unknown user: absence
// means a standard-tier profile with no pending discount.
type Store interface {
	Get(ctx context.Context, userID string) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
	// ConsumeDiscount clears the pending discount only if it still equals the
	// one the order used (compare-and-clear). Returns false when another
	// checkout consumed it first.
	ConsumeDiscount(ctx context.Context, userID string, used pricing.UserDiscount) (bool, error)
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pricing_profiles (
			user_id TEXT PRIMARY KEY,
			wholesale BOOLEAN NOT NULL DEFAULT FALSE,
			discount_value DOUBLE PRECISION NOT NULL DEFAULT 0,
			discount_kind TEXT NOT NULL DEFAULT 'fixed'
		)`)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (Profile, error) {
	p := Profile{UserID: userID}
	var value float64
	var kind string
	err := s.pool.QueryRow(ctx,
		`SELECT wholesale, discount_value, discount_kind FROM pricing_profiles WHERE user_id = $1`,
		userID).Scan(&p.Wholesale, &value, &kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, nil
		}
		logx.Error().Err(err).Str("userID", userID).Msg("failed to load pricing profile")
		return Profile{}, errx.WrapPostgres(err)
	}
	if value != 0 {
		p.Discount = &pricing.UserDiscount{Value: value, Kind: pricing.DiscountKind(kind)}
	}
	return p, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, p Profile) error {
	value, kind := 0.0, pricing.DiscountFixed
	if p.Discount != nil {
		value, kind = p.Discount.Value, p.Discount.Kind
		if value < 0 {
			return ErrInvalidDiscount
		}
		if kind != pricing.DiscountFixed && kind != pricing.DiscountPercent {
			return ErrInvalidDiscount
		}
		if kind == pricing.DiscountPercent && value > 100 {
			return ErrInvalidDiscount
		}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pricing_profiles (user_id, wholesale, discount_value, discount_kind)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET wholesale = EXCLUDED.wholesale,
			discount_value = EXCLUDED.discount_value,
			discount_kind = EXCLUDED.discount_kind`,
		p.UserID, p.Wholesale, value, string(kind))
	if err != nil {
		logx.Error().Err(err).Str("userID", p.UserID).Msg("failed to upsert pricing profile")
		return errx.WrapPostgres(err)
	}
	return nil
}

// ConsumeDiscount is the single atomic post-order write: it zeroes the pending
// discount keyed by user identity, guarded by the value the order actually
// honored so two concurrent checkouts cannot both consume it.
func (s *PostgresStore) ConsumeDiscount(ctx context.Context, userID string, used pricing.UserDiscount) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE pricing_profiles
		SET discount_value = 0, discount_kind = 'fixed'
		WHERE user_id = $1 AND discount_value = $2 AND discount_kind = $3`,
		userID, used.Value, string(used.Kind))
	if err != nil {
		logx.Error().Err(err).Str("userID", userID).Msg("failed to consume pending discount")
		return false, errx.WrapPostgres(err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Store = (*PostgresStore)(nil)
