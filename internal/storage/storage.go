// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage stores uploaded files, either in an S3-compatible bucket
// or in a local directory served under /uploads/.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid storage key")

// Storage is the upload backend used by the handlers.
type Storage interface {
	// Save stores body under key and returns the public URL of the file.
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes the file stored under key.
	Delete(ctx context.Context, key string) error
	// KeyFromURL returns the key of a URL produced by Save.
	KeyFromURL(url string) (string, bool)
}
