package catalog

import (
	"context"
	"errors"
	"time"

	errx "github.com/bayti-store/server/internal/core/error"
	logx "github.com/bayti-store/server/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errEmptyName              = errors.New("product name is required")
	errEmptyCategory          = errors.New("product category is required")
	errNegativePrice          = errors.New("price must be non-negative")
	errNegativeWholesale      = errors.New("wholesale price must be non-negative")
	errWholesaleAboveStandard = errors.New("wholesale price must not exceed standard price")
)

// Store is the catalog collaborator surface. Read methods are what the
// storefront and the pricing workflow consume; writes are admin-only.
type Store interface {
	ListVisible(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the products table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			wholesale_price NUMERIC(12,2) CHECK (wholesale_price >= 0),
			description TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			images TEXT[] NOT NULL DEFAULT '{}',
			colors TEXT[] NOT NULL DEFAULT '{}',
			rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			reviews INT NOT NULL DEFAULT 0,
			is_visible BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

const productColumns = `id, name, category, price, wholesale_price, description, image, images, colors, rating, reviews, is_visible, created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.WholesalePrice,
		&p.Description, &p.Image, &p.Images, &p.Colors, &p.Rating, &p.Reviews,
		&p.Visible, &p.CreatedAt)
	return p, err
}

func (s *PostgresStore) ListVisible(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE is_visible ORDER BY created_at DESC, id`)
	if err != nil {
		logx.Error().Err(err).Msg("failed to list products")
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errx.WrapPostgres(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logx.Error().Err(err).Str("id", id).Msg("failed to get product")
		}
		return Product{}, errx.WrapPostgres(err)
	}
	return p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.ID, p.Name, p.Category, p.Price, p.WholesalePrice, p.Description,
		p.Image, p.Images, p.Colors, p.Rating, p.Reviews, p.Visible, p.CreatedAt)
	if err != nil {
		logx.Error().Err(err).Str("id", p.ID).Msg("failed to insert product")
		return errx.WrapPostgres(err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name=$2, category=$3, price=$4, wholesale_price=$5, description=$6,
			image=$7, images=$8, colors=$9, rating=$10, reviews=$11, is_visible=$12
		WHERE id=$1`,
		p.ID, p.Name, p.Category, p.Price, p.WholesalePrice, p.Description,
		p.Image, p.Images, p.Colors, p.Rating, p.Reviews, p.Visible)
	if err != nil {
		logx.Error().Err(err).Str("id", p.ID).Msg("failed to update product")
		return errx.WrapPostgres(err)
	}
	if tag.RowsAffected() == 0 {
		return errx.WrapPostgres(pgx.ErrNoRows)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logx.Error().Err(err).Str("id", id).Msg("failed to delete product")
		return errx.WrapPostgres(err)
	}
	if tag.RowsAffected() == 0 {
		return errx.WrapPostgres(pgx.ErrNoRows)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
