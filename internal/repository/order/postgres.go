package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, order domain.OrderSnapshot) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const orderQuery = `
INSERT INTO orders (
	id, number, session_id,
	first_name, last_name, email, phone, address, city, zip_code, country, notes,
	payment_method,
	subtotal, shipping, tax, total,
	created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
`
	_, err = tx.Exec(ctx, orderQuery,
		order.ID, order.Number, order.SessionID,
		order.Delivery.FirstName, order.Delivery.LastName, order.Delivery.Email,
		order.Delivery.Phone, order.Delivery.Address, order.Delivery.City,
		order.Delivery.ZipCode, order.Delivery.Country, order.Delivery.Notes,
		order.PaymentMethod,
		order.Totals.Subtotal.String(), order.Totals.Shipping.String(),
		order.Totals.Tax.String(), order.Totals.Total.String(),
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const lineQuery = `
INSERT INTO order_lines (order_id, position, product_id, title, unit_price, image_url, image_alt, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	for i, line := range order.Items {
		if _, err := tx.Exec(ctx, lineQuery,
			order.ID, i, line.ProductID.String(), line.Title,
			line.UnitPrice.String(), line.ImageRef.URL, line.ImageRef.Alt, line.Quantity,
		); err != nil {
			return fmt.Errorf("insert order line %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Info().Str("order_id", order.ID).Str("number", order.Number).Int("lines", len(order.Items)).Msg("order archived")
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.OrderSnapshot, error) {
	// The column is UUID; a malformed id would fail parameter encoding,
	// and an order with such an id cannot exist anyway.
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT id::text, number, session_id,
	first_name, last_name, email, phone, address, city, zip_code, country, notes,
	payment_method,
	subtotal::text, shipping::text, tax::text, total::text,
	created_at
FROM orders
WHERE id = $1
`
	return r.fetchOrder(ctx, q, id)
}

func (r *postgresRepo) GetLatestBySession(ctx context.Context, sessionID string) (*domain.OrderSnapshot, error) {
	const q = `
SELECT id::text, number, session_id,
	first_name, last_name, email, phone, address, city, zip_code, country, notes,
	payment_method,
	subtotal::text, shipping::text, tax::text, total::text,
	created_at
FROM orders
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT 1
`
	return r.fetchOrder(ctx, q, sessionID)
}

func (r *postgresRepo) fetchOrder(ctx context.Context, query string, args ...interface{}) (*domain.OrderSnapshot, error) {
	var (
		order                          domain.OrderSnapshot
		subtotal, shipping, tax, total string
	)
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&order.ID, &order.Number, &order.SessionID,
		&order.Delivery.FirstName, &order.Delivery.LastName, &order.Delivery.Email,
		&order.Delivery.Phone, &order.Delivery.Address, &order.Delivery.City,
		&order.Delivery.ZipCode, &order.Delivery.Country, &order.Delivery.Notes,
		&order.PaymentMethod,
		&subtotal, &shipping, &tax, &total,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if order.Totals, err = parseTotals(subtotal, shipping, tax, total); err != nil {
		return nil, err
	}

	const linesQuery = `
SELECT product_id, title, unit_price::text, image_url, image_alt, quantity
FROM order_lines
WHERE order_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, order.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line      domain.LineItem
			productID string
			unitPrice string
		)
		if err := rows.Scan(&productID, &line.Title, &unitPrice, &line.ImageRef.URL, &line.ImageRef.Alt, &line.Quantity); err != nil {
			return nil, err
		}
		line.ProductID = domain.ProductID(productID)
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		order.Items = append(order.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &order, nil
}

func parseTotals(subtotal, shipping, tax, total string) (domain.OrderTotals, error) {
	var (
		t   domain.OrderTotals
		err error
	)
	if t.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return t, fmt.Errorf("parse subtotal: %w", err)
	}
	if t.Shipping, err = decimal.NewFromString(shipping); err != nil {
		return t, fmt.Errorf("parse shipping: %w", err)
	}
	if t.Tax, err = decimal.NewFromString(tax); err != nil {
		return t, fmt.Errorf("parse tax: %w", err)
	}
	if t.Total, err = decimal.NewFromString(total); err != nil {
		return t, fmt.Errorf("parse total: %w", err)
	}
	return t, nil
}
