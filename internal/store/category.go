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

// categoryTreeLock is the advisory lock key held while a transaction
// changes parent links, so two concurrent moves cannot form a loop.
const categoryTreeLock = 0x63617465

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, title, slug, parent_id, membership_version, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Title, &c.Slug, &c.ParentID,
		&c.MembershipVersion, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by title, with product counts.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.slug, c.parent_id, c.membership_version,
		       c.created_at, c.updated_at,
		       COUNT(pc.product_id) AS product_count
		FROM categories c
		LEFT JOIN product_categories pc ON pc.category_id = c.id
		GROUP BY c.id
		ORDER BY c.title, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Title, &c.Slug, &c.ParentID, &c.MembershipVersion,
			&c.CreatedAt, &c.UpdatedAt, &c.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Tree returns categories as a nested tree structure.
func (s *CategoryStore) Tree(ctx context.Context) ([]models.Category, error) {
	flat, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.BuildTree(flat), nil
}

// FlatTree returns categories in depth-first display order with Depth set
// for indentation.
func (s *CategoryStore) FlatTree(ctx context.Context) ([]models.Category, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Flatten(tree), nil
}

// Picker returns the candidate parents for category excludeID.
func (s *CategoryStore) Picker(ctx context.Context, excludeID int64) ([]models.Category, error) {
	flat, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ListForPicker(excludeID, flat), nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (title, slug, parent_id)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		c.Title, c.Slug, c.ParentID,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", translate(err, ErrUnknownCategory))
	}
	return result, nil
}

// Update modifies an existing category. A parent that would make the
// category its own ancestor is rejected with ErrCategoryCycle before
// anything is written.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, categoryTreeLock); err != nil {
		return fmt.Errorf("lock category tree: %w", err)
	}

	parents, err := loadParents(ctx, tx)
	if err != nil {
		return err
	}
	if _, ok := parents[c.ID]; !ok {
		return ErrNotFound
	}
	if c.ParentID != nil {
		if _, ok := parents[*c.ParentID]; !ok {
			return ErrUnknownCategory
		}
	}
	if catalog.WouldCreateCycle(c.ID, c.ParentID, parents) {
		return ErrCategoryCycle
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE categories SET title = $1, slug = $2, parent_id = $3, updated_at = NOW()
		WHERE id = $4
	`, c.Title, c.Slug, c.ParentID, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", translate(err, ErrUnknownCategory))
	}

	return tx.Commit()
}

// Delete removes a category. Its product links go with it (ON DELETE
// CASCADE) and its children become roots (ON DELETE SET NULL). A product
// whose primary link pointed here gets its oldest remaining link promoted
// to primary; with no links left it becomes unassigned.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, categoryTreeLock); err != nil {
		return fmt.Errorf("lock category tree: %w", err)
	}

	orphaned, err := queryIDs(ctx, tx, `
		SELECT product_id FROM product_categories
		WHERE category_id = $1 AND is_primary
	`, id)
	if err != nil {
		return fmt.Errorf("find primary links: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if len(orphaned) > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE product_categories pc SET is_primary = TRUE
			FROM (
				SELECT DISTINCT ON (product_id) product_id, category_id
				FROM product_categories
				WHERE product_id = ANY($1)
				ORDER BY product_id, created_at, category_id
			) first
			WHERE pc.product_id = first.product_id AND pc.category_id = first.category_id
		`, orphaned)
		if err != nil {
			return fmt.Errorf("promote primary links: %w", err)
		}
	}

	return tx.Commit()
}

// Parents returns the id → parent_id map of every category.
func (s *CategoryStore) Parents(ctx context.Context) (catalog.Parents, error) {
	return loadParents(ctx, s.db)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func loadParents(ctx context.Context, q querier) (catalog.Parents, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, parent_id FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("load category parents: %w", err)
	}
	defer rows.Close()

	parents := make(catalog.Parents)
	for rows.Next() {
		var id int64
		var parent *int64
		if err := rows.Scan(&id, &parent); err != nil {
			return nil, fmt.Errorf("scan category parent: %w", err)
		}
		parents[id] = parent
	}
	return parents, rows.Err()
}

func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
