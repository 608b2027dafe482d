package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// URLPrefix is where local uploads are served.
const URLPrefix = "/uploads/"

// Local stores uploads in a directory on disk.
type Local struct {
	dir string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Path resolves key to a file inside the upload directory. Keys that are
// absolute or climb out of the directory are rejected with ErrInvalidKey.
func (l *Local) Path(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") || strings.ContainsRune(key, 0) {
		return "", ErrInvalidKey
	}
	clean := path.Clean("/" + key)
	if clean == "/" || clean != "/"+key {
		return "", ErrInvalidKey
	}
	return filepath.Join(l.dir, filepath.FromSlash(clean[1:])), nil
}

// Save writes body to disk and returns its /uploads/ URL.
func (l *Local) Save(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	p, err := l.Path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create upload subdir: %w", err)
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("write upload %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload %s: %w", key, err)
	}
	return URLPrefix + key, nil
}

// Delete removes a stored file. Missing files are not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	p, err := l.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete upload %s: %w", key, err)
	}
	return nil
}

// KeyFromURL strips the /uploads/ prefix.
func (l *Local) KeyFromURL(rawURL string) (string, bool) {
	key, ok := strings.CutPrefix(rawURL, URLPrefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// Open opens a stored file for serving.
func (l *Local) Open(key string) (*os.File, error) {
	p, err := l.Path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}
