package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/models"
)

// OrderStore manages customer orders.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore returns a new OrderStore.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create records an order.
func (s *OrderStore) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	out := *o
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO orders (product_id, contact_type, contact_value)
		VALUES ($1, $2, $3)
		RETURNING id, seen, created_at
	`, o.ProductID, o.ContactType, o.ContactValue).Scan(&out.ID, &out.Seen, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", translate(err, ErrUnknownProduct))
	}
	return &out, nil
}

// List returns all orders, unseen first, then newest first.
func (s *OrderStore) List(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.product_id, o.contact_type, o.contact_value, o.seen, o.created_at,
		       p.title, p.slug
		FROM orders o
		JOIN products p ON p.id = o.product_id
		ORDER BY o.seen, o.created_at DESC, o.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var items []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.ProductID, &o.ContactType, &o.ContactValue, &o.Seen, &o.CreatedAt,
			&o.ProductTitle, &o.ProductSlug,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// SetSeen marks an order as handled or not.
func (s *OrderStore) SetSeen(ctx context.Context, id int64, seen bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET seen = $1 WHERE id = $2`, seen, id)
	if err != nil {
		return fmt.Errorf("set order seen: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnseen returns the number of orders not yet marked seen.
func (s *OrderStore) CountUnseen(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE NOT seen`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unseen orders: %w", err)
	}
	return n, nil
}
