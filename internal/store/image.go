// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// ImageStore manages product gallery images.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore returns a new ImageStore.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

const imageColumns = `id, product_id, image_path, is_thumbnail, created_at`

func scanImage(scanner interface{ Scan(...any) error }) (*models.ProductImage, error) {
	var img models.ProductImage
	if err := scanner.Scan(&img.ID, &img.ProductID, &img.ImagePath, &img.IsThumbnail, &img.CreatedAt); err != nil {
		return nil, err
	}
	return &img, nil
}

// ListByProduct returns a product's images in gallery order (oldest first).
func (s *ImageStore) ListByProduct(ctx context.Context, productID int64) ([]models.ProductImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+imageColumns+` FROM product_images
		WHERE product_id = $1
		ORDER BY created_at, id
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	items := []models.ProductImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		items = append(items, *img)
	}
	return items, rows.Err()
}

// Add attaches an image to a product. A second thumbnail is rejected with
// ErrThumbnailTaken; use SetThumbnail to switch it.
func (s *ImageStore) Add(ctx context.Context, productID int64, imagePath string, isThumbnail bool) (*models.ProductImage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockProduct(ctx, tx, productID); err != nil {
		return nil, err
	}

	if isThumbnail {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM product_images WHERE product_id = $1 AND is_thumbnail)
		`, productID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check thumbnail: %w", err)
		}
		if exists {
			return nil, ErrThumbnailTaken
		}
	}

	img, err := scanImage(tx.QueryRowContext(ctx, `
		INSERT INTO product_images (product_id, image_path, is_thumbnail)
		VALUES ($1, $2, $3)
		RETURNING `+imageColumns,
		productID, imagePath, isThumbnail,
	))
	if err != nil {
		return nil, fmt.Errorf("add product image: %w", translate(err, ErrUnknownProduct))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit product image: %w", err)
	}
	return img, nil
}

// SetThumbnail makes imageID the product's only thumbnail.
func (s *ImageStore) SetThumbnail(ctx context.Context, productID, imageID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockProduct(ctx, tx, productID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE product_images SET is_thumbnail = FALSE
		WHERE product_id = $1 AND is_thumbnail AND id <> $2
	`, productID, imageID); err != nil {
		return fmt.Errorf("clear thumbnail: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE product_images SET is_thumbnail = TRUE
		WHERE product_id = $1 AND id = $2
	`, productID, imageID)
	if err != nil {
		return fmt.Errorf("set thumbnail: %w", translate(err, nil))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Delete removes an image from a product and returns the removed row so
// the caller can delete the stored file.
func (s *ImageStore) Delete(ctx context.Context, productID, imageID int64) (*models.ProductImage, error) {
	img, err := scanImage(s.db.QueryRowContext(ctx, `
		DELETE FROM product_images WHERE product_id = $1 AND id = $2
		RETURNING `+imageColumns,
		productID, imageID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete product image: %w", err)
	}
	return img, nil
}

// lockProduct takes a row lock on a product for the rest of tx.
func lockProduct(ctx context.Context, tx *sql.Tx, productID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownProduct
	}
	if err != nil {
		return fmt.Errorf("lock product %d: %w", productID, err)
	}
	return nil
}
