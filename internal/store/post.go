package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/models"
)

// PostStore manages blog posts.
type PostStore struct {
	db *sql.DB
}

// NewPostStore returns a new PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.slug, p.title, p.content_md, p.image_path, p.published_at,
	p.author_id, p.created_at, p.updated_at, COALESCE(u.display_name, '')`

const postFrom = ` FROM posts p LEFT JOIN users u ON u.id = p.author_id`

func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.ContentMD, &p.ImagePath, &p.PublishedAt,
		&p.AuthorID, &p.CreatedAt, &p.UpdatedAt, &p.AuthorName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all posts, drafts included, newest first.
func (s *PostStore) List(ctx context.Context) ([]models.Post, error) {
	return s.query(ctx, `SELECT `+postColumns+postFrom+` ORDER BY p.created_at DESC, p.id DESC`)
}

// ListPublished returns up to limit posts whose publish time has passed,
// most recently published first.
func (s *PostStore) ListPublished(ctx context.Context, limit int) ([]models.Post, error) {
	return s.query(ctx, `SELECT `+postColumns+postFrom+`
		WHERE p.published_at IS NOT NULL AND p.published_at <= NOW()
		ORDER BY p.published_at DESC, p.id DESC
		LIMIT $1`, limit)
}

func (s *PostStore) query(ctx context.Context, q string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a post. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+postFrom+` WHERE p.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post. Returns nil if not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, `SELECT `+postColumns+postFrom+` WHERE p.slug = $1`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// Create inserts a post and returns its ID.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (slug, title, content_md, image_path, published_at, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, p.Slug, p.Title, p.ContentMD, p.ImagePath, p.PublishedAt, p.AuthorID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create post: %w", translate(err, nil))
	}
	return id, nil
}

// Update saves a post. The author is not changed.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET slug = $1, title = $2, content_md = $3, image_path = $4,
			published_at = $5, updated_at = NOW()
		WHERE id = $6
	`, p.Slug, p.Title, p.ContentMD, p.ImagePath, p.PublishedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", translate(err, nil))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post.
func (s *PostStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
