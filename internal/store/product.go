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

// ProductStore manages products and their category links.
type ProductStore struct {
	db      *sql.DB
	members *MembershipStore
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db, members: NewMembershipStore(db)}
}

const productColumns = `id, slug, title, description_md, price_cents, sold_at, is_recreatable, created_at, updated_at`

const productColumnsP = `p.id, p.slug, p.title, p.description_md, p.price_cents, p.sold_at, p.is_recreatable, p.created_at, p.updated_at`

func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.DescriptionMD, &p.PriceCents,
		&p.SoldAt, &p.IsRecreatable, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanListedProduct scans productColumnsP followed by a position and a
// thumbnail path.
func scanListedProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.DescriptionMD, &p.PriceCents,
		&p.SoldAt, &p.IsRecreatable, &p.CreatedAt, &p.UpdatedAt,
		&p.SortOrder, &p.ThumbnailPath,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every product, newest first, with thumbnails and links.
func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	return s.listWhere(ctx, `TRUE`, `p.created_at DESC, p.id DESC`)
}

// ListSold returns sold products, most recently sold first.
func (s *ProductStore) ListSold(ctx context.Context) ([]models.Product, error) {
	return s.listWhere(ctx, `p.sold_at IS NOT NULL`, `p.sold_at DESC, p.id DESC`)
}

func (s *ProductStore) listWhere(ctx context.Context, where, order string) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumnsP+`, 0, `+thumbnailSubquery+`
		FROM products p
		WHERE `+where+`
		ORDER BY `+order)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanListedProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachLinks(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID retrieves a product with its links. Returns nil if not found.
func (s *ProductStore) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.findOne(ctx, `id = $1`, id)
}

// FindBySlug retrieves a product with its links. Returns nil if not found.
func (s *ProductStore) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.findOne(ctx, `slug = $1`, slug)
}

func (s *ProductStore) findOne(ctx context.Context, where string, arg any) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}

	one := []models.Product{*p}
	if err := s.attachLinks(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// attachLinks fills PrimaryCategoryID and CategoryIDs from the join table.
// The primary category is listed first.
func (s *ProductStore) attachLinks(ctx context.Context, items []models.Product) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	index := make(map[int64]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
		items[i].CategoryIDs = []int64{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, category_id, is_primary
		FROM product_categories
		WHERE product_id = ANY($1)
		ORDER BY product_id, is_primary DESC, created_at, category_id
	`, ids)
	if err != nil {
		return fmt.Errorf("load product links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID, categoryID int64
		var primary bool
		if err := rows.Scan(&productID, &categoryID, &primary); err != nil {
			return fmt.Errorf("scan product link: %w", err)
		}
		p := &items[index[productID]]
		p.CategoryIDs = append(p.CategoryIDs, categoryID)
		if primary {
			p.PrimaryCategoryID = &categoryID
		}
	}
	return rows.Err()
}

// Create inserts a product and links it to its categories. The product is
// appended to the end of every category it joins.
func (s *ProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (slug, title, description_md, price_cents, sold_at, is_recreatable)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, p.Slug, p.Title, p.DescriptionMD, p.PriceCents, p.SoldAt, p.IsRecreatable).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", translate(err, nil))
	}

	links := catalog.NormalizeLinks(p.PrimaryCategoryID, p.CategoryIDs)
	for _, categoryID := range links {
		if err := s.appendLink(ctx, tx, id, categoryID); err != nil {
			return nil, err
		}
	}
	if p.PrimaryCategoryID != nil {
		if err := setPrimary(ctx, tx, id, p.PrimaryCategoryID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit product: %w", err)
	}
	return s.FindByID(ctx, id)
}

// Update saves a product's fields and reconciles its category links.
// Categories the product joins, and a changed primary category, get the
// product appended at the end. Categories it leaves are not renumbered.
func (s *ProductStore) Update(ctx context.Context, p *models.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE products SET
			slug = $1, title = $2, description_md = $3, price_cents = $4,
			sold_at = $5, is_recreatable = $6, updated_at = NOW()
		WHERE id = $7
	`, p.Slug, p.Title, p.DescriptionMD, p.PriceCents, p.SoldAt, p.IsRecreatable, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", translate(err, nil))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	oldPrimary, oldIDs, err := loadLinks(ctx, tx, p.ID)
	if err != nil {
		return err
	}
	newIDs := catalog.NormalizeLinks(p.PrimaryCategoryID, p.CategoryIDs)
	changes := catalog.DiffLinks(oldPrimary, oldIDs, p.PrimaryCategoryID, newIDs)

	for _, categoryID := range changes.Remove {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM product_categories WHERE product_id = $1 AND category_id = $2`,
			p.ID, categoryID)
		if err != nil {
			return fmt.Errorf("remove product link: %w", err)
		}
	}
	for _, categoryID := range changes.Append {
		if err := s.appendLink(ctx, tx, p.ID, categoryID); err != nil {
			return err
		}
	}
	if changes.PrimaryChanged {
		if err := setPrimary(ctx, tx, p.ID, p.PrimaryCategoryID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a product. Links, images and orders cascade.
func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// appendLink links the product to a category at the end of its list, or
// moves an existing link to the end.
func (s *ProductStore) appendLink(ctx context.Context, tx *sql.Tx, productID, categoryID int64) error {
	pos, err := s.members.AssignInitialOrder(ctx, tx, categoryID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO product_categories (product_id, category_id, is_primary, sort_order)
		VALUES ($1, $2, FALSE, $3)
		ON CONFLICT (product_id, category_id) DO UPDATE SET sort_order = EXCLUDED.sort_order
	`, productID, categoryID, pos)
	if err != nil {
		return fmt.Errorf("link product to category %d: %w", categoryID, translate(err, ErrUnknownCategory))
	}
	return nil
}

// setPrimary moves the primary flag to categoryID, or clears it when nil.
// The old flag is cleared first so the one-primary index never sees two.
func setPrimary(ctx context.Context, tx *sql.Tx, productID int64, categoryID *int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE product_categories SET is_primary = FALSE
		WHERE product_id = $1 AND is_primary
	`, productID)
	if err != nil {
		return fmt.Errorf("clear primary link: %w", err)
	}
	if categoryID == nil {
		return nil
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE product_categories SET is_primary = TRUE
		WHERE product_id = $1 AND category_id = $2
	`, productID, *categoryID)
	if err != nil {
		return fmt.Errorf("set primary link: %w", err)
	}
	return nil
}

func loadLinks(ctx context.Context, tx *sql.Tx, productID int64) (*int64, []int64, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT category_id, is_primary FROM product_categories
		WHERE product_id = $1
		ORDER BY is_primary DESC, created_at, category_id
	`, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("load product links: %w", err)
	}
	defer rows.Close()

	var primary *int64
	var ids []int64
	for rows.Next() {
		var id int64
		var isPrimary bool
		if err := rows.Scan(&id, &isPrimary); err != nil {
			return nil, nil, fmt.Errorf("scan product link: %w", err)
		}
		if isPrimary {
			primary = &id
		}
		ids = append(ids, id)
	}
	return primary, ids, rows.Err()
}
