package order

import (
	"context"
	"errors"

	errx "github.com/bayti-store/server/internal/core/error"
	logx "github.com/bayti-store/server/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists orders. Create must write the header and its items as one
// unit: a partially failed checkout may never lose items without an order
// header to account for them.
type Store interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, userID, id string) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			customer_phone_2 TEXT,
			customer_address TEXT NOT NULL,
			subtotal NUMERIC(14,2) NOT NULL,
			discount_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			total NUMERIC(14,2) NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('pending','processing','shipped','delivered','cancelled')) DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			unit_price NUMERIC(12,2) NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			selected_color TEXT,
			line_net NUMERIC(14,2) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts the header and every item in a single transaction.
func (s *PostgresStore) Create(ctx context.Context, o *Order) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errx.WrapPostgres(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, customer_name, customer_phone, customer_phone_2,
			customer_address, subtotal, discount_amount, total, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		o.ID, o.UserID, o.Customer.Name, o.Customer.Phone, nullable(o.Customer.AltPhone),
		o.Customer.Address, o.Subtotal, o.DiscountAmount, o.Total, string(o.Status), o.CreatedAt)
	if err != nil {
		logx.Error().Err(err).Str("orderID", o.ID).Msg("failed to insert order header")
		return errx.WrapPostgres(err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, selected_color, line_net)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id`,
			it.OrderID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity,
			nullable(it.SelectedColor), it.LineNet).Scan(&it.ID)
		if err != nil {
			logx.Error().Err(err).Str("orderID", o.ID).Msg("failed to insert order item")
			return errx.WrapPostgres(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errx.WrapPostgres(err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, id string) (Order, error) {
	var o Order
	var altPhone *string
	var status string
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, customer_name, customer_phone, customer_phone_2, customer_address,
			subtotal, discount_amount, total, status, created_at
		FROM orders WHERE user_id = $1 AND id = $2`, userID, id).
		Scan(&o.ID, &o.UserID, &o.Customer.Name, &o.Customer.Phone, &altPhone,
			&o.Customer.Address, &o.Subtotal, &o.DiscountAmount, &o.Total, &status, &o.CreatedAt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			logx.Error().Err(err).Str("orderID", id).Msg("failed to load order")
		}
		return Order{}, errx.WrapPostgres(err)
	}
	if altPhone != nil {
		o.Customer.AltPhone = *altPhone
	}
	o.Status = Status(status)

	items, err := s.items(ctx, id)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

func (s *PostgresStore) items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, selected_color, line_net
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		var color *string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.UnitPrice, &it.Quantity, &color, &it.LineNet); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		if color != nil {
			it.SelectedColor = *color
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return out, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, customer_name, customer_phone, customer_phone_2, customer_address,
			subtotal, discount_amount, total, status, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logx.Error().Err(err).Str("userID", userID).Msg("failed to list orders")
		return nil, errx.WrapPostgres(err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var altPhone *string
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.Customer.Name, &o.Customer.Phone, &altPhone,
			&o.Customer.Address, &o.Subtotal, &o.DiscountAmount, &o.Total, &status, &o.CreatedAt); err != nil {
			return nil, errx.WrapPostgres(err)
		}
		if altPhone != nil {
			o.Customer.AltPhone = *altPhone
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	tag, err := s.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		logx.Error().Err(err).Str("orderID", id).Msg("failed to update order status")
		return errx.WrapPostgres(err)
	}
	if tag.RowsAffected() == 0 {
		return errx.WrapPostgres(pgx.ErrNoRows)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var _ Store = (*PostgresStore)(nil)
