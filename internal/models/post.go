package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog article written in Markdown. A nil PublishedAt marks a draft.
type Post struct {
	ID          int64      `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	ContentMD   string     `json:"contentMd"`
	ImagePath   *string    `json:"imagePath"`
	PublishedAt *time.Time `json:"publishedAt"`
	AuthorID    uuid.UUID  `json:"authorId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Populated by joins.
	AuthorName string `json:"authorName,omitempty"`
}

// IsPublished reports whether the post is visible on the public site at t.
func (p *Post) IsPublished(t time.Time) bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(t)
}
