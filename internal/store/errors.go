// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Write-side errors returned by the stores. Lookups that find nothing
// return (nil, nil) instead of ErrNotFound.
var (
	ErrNotFound        = errors.New("not found")
	ErrSlugTaken       = errors.New("slug already in use")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownProduct  = errors.New("unknown product")
	ErrCategoryCycle   = errors.New("Category cannot be its own ancestor")
	ErrThumbnailTaken  = errors.New("Product already has a thumbnail")
	ErrEmailTaken      = errors.New("email already registered")
)

// PostgreSQL SQLSTATE codes the stores translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps constraint violations to store errors. Other errors are
// returned unchanged. fkErr is the error for a foreign key violation,
// which depends on the table being written.
func translate(err error, fkErr error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case "idx_product_images_one_thumbnail":
			return ErrThumbnailTaken
		case "idx_users_email":
			return ErrEmailTaken
		default:
			return ErrSlugTaken
		}
	case pgForeignKeyViolation:
		if fkErr != nil {
			return fkErr
		}
	}
	return err
}
