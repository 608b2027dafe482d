// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/catalog"
	"storefront/internal/models"
)

// MembershipStore keeps the per-category product ordering stored on
// product_categories rows. Every write that changes a category's order
// locks the category row and bumps its membership_version.
type MembershipStore struct {
	db *sql.DB
}

// NewMembershipStore returns a new MembershipStore.
func NewMembershipStore(db *sql.DB) *MembershipStore {
	return &MembershipStore{db: db}
}

// MemberFilter narrows a MembersOf listing.
type MemberFilter struct {
	// ExcludeSold hides sold products that cannot be made again.
	ExcludeSold bool
}

// thumbnailSubquery picks the thumbnail image, falling back to the oldest.
const thumbnailSubquery = `COALESCE((
	SELECT i.image_path FROM product_images i
	WHERE i.product_id = p.id
	ORDER BY i.is_thumbnail DESC, i.created_at, i.id
	LIMIT 1
), '')`

// MembersOf returns the products linked to any category in scope, each
// once, ordered by their lowest in-scope position and then newest first.
func (s *MembershipStore) MembersOf(ctx context.Context, scope []int64, f MemberFilter) ([]models.Product, error) {
	if len(scope) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumnsP+`, m.sort_order, `+thumbnailSubquery+`
		FROM products p
		JOIN (
			SELECT product_id, MIN(sort_order) AS sort_order
			FROM product_categories
			WHERE category_id = ANY($1)
			GROUP BY product_id
		) m ON m.product_id = p.id
		WHERE NOT $2::boolean OR p.sold_at IS NULL OR p.is_recreatable
		ORDER BY m.sort_order ASC, p.created_at DESC, p.id DESC
	`, scope, f.ExcludeSold)
	if err != nil {
		return nil, fmt.Errorf("members of: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanListedProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// AssignInitialOrder returns the position that appends a product to the
// end of categoryID's list: the current maximum plus one, or 1 for an empty
// category. It locks the category row for the rest of tx and bumps the
// membership version, so the caller must write the link inside the same tx.
func (s *MembershipStore) AssignInitialOrder(ctx context.Context, tx *sql.Tx, categoryID int64) (int, error) {
	if _, err := lockCategory(ctx, tx, categoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrUnknownCategory
		}
		return 0, err
	}

	var maxOrder sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(sort_order) FROM product_categories WHERE category_id = $1`, categoryID,
	).Scan(&maxOrder)
	if err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}

	if err := bumpVersion(ctx, tx, categoryID); err != nil {
		return 0, err
	}
	return catalog.NextSortOrder(maxOrder.Int64, maxOrder.Valid), nil
}

// Reorder rewrites the positions of categoryID's products to 1..N in the
// given order and returns the new membership version. ordered must be
// exactly the category's current product set. When expectedVersion is
// non-nil it must match the stored version or catalog.ErrStaleOrder is
// returned. Validation happens before any write and the whole rewrite
// commits or rolls back as one.
func (s *MembershipStore) Reorder(ctx context.Context, categoryID int64, ordered []int64, expectedVersion *int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	version, err := lockCategory(ctx, tx, categoryID)
	if err != nil {
		return 0, err
	}
	if expectedVersion != nil && *expectedVersion != version {
		return 0, catalog.ErrStaleOrder
	}

	current, err := queryIDs(ctx, tx,
		`SELECT product_id FROM product_categories WHERE category_id = $1`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("load members: %w", err)
	}
	if err := catalog.ValidateReorder(current, ordered); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE product_categories SET sort_order = $1
		WHERE category_id = $2 AND product_id = $3`)
	if err != nil {
		return 0, fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	for i, productID := range ordered {
		if _, err := stmt.ExecContext(ctx, i+1, categoryID, productID); err != nil {
			return 0, fmt.Errorf("reorder product %d: %w", productID, err)
		}
	}

	var newVersion int64
	err = tx.QueryRowContext(ctx, `
		UPDATE categories SET membership_version = membership_version + 1
		WHERE id = $1 RETURNING membership_version
	`, categoryID).Scan(&newVersion)
	if err != nil {
		return 0, fmt.Errorf("bump membership version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reorder: %w", err)
	}
	return newVersion, nil
}

// CategoryProducts lists the products linked directly to categoryID in
// their current order, together with the category's membership version.
// Returns ErrNotFound for an unknown category.
func (s *MembershipStore) CategoryProducts(ctx context.Context, categoryID int64) ([]models.CategoryProduct, int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT membership_version FROM categories WHERE id = $1`, categoryID,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("category version: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, pc.sort_order, (
			SELECT i.image_path FROM product_images i
			WHERE i.product_id = p.id
			ORDER BY i.is_thumbnail DESC, i.created_at, i.id
			LIMIT 1
		)
		FROM product_categories pc
		JOIN products p ON p.id = pc.product_id
		WHERE pc.category_id = $1
		ORDER BY pc.sort_order ASC, p.created_at DESC, p.id DESC
	`, categoryID)
	if err != nil {
		return nil, 0, fmt.Errorf("category products: %w", err)
	}
	defer rows.Close()

	items := []models.CategoryProduct{}
	for rows.Next() {
		var cp models.CategoryProduct
		if err := rows.Scan(&cp.ID, &cp.Title, &cp.SortOrder, &cp.ImagePath); err != nil {
			return nil, 0, fmt.Errorf("scan category product: %w", err)
		}
		items = append(items, cp)
	}
	return items, version, rows.Err()
}

// lockCategory takes a row lock on the category for the rest of tx and
// returns its membership version.
func lockCategory(ctx context.Context, tx *sql.Tx, categoryID int64) (int64, error) {
	var version int64
	err := tx.QueryRowContext(ctx,
		`SELECT membership_version FROM categories WHERE id = $1 FOR UPDATE`, categoryID,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock category %d: %w", categoryID, err)
	}
	return version, nil
}

func bumpVersion(ctx context.Context, tx *sql.Tx, categoryID int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE categories SET membership_version = membership_version + 1 WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("bump membership version: %w", err)
	}
	return nil
}
