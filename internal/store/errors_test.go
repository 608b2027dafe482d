package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslate(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name  string
		err   error
		fkErr error
		want  error
	}{
		{"non-pg error passes through", plain, ErrUnknownCategory, plain},
		{"unique slug", &pgconn.PgError{Code: "23505", ConstraintName: "categories_slug_key"}, nil, ErrSlugTaken},
		{"user email", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, nil, ErrEmailTaken},
		{"second thumbnail", &pgconn.PgError{Code: "23505", ConstraintName: "idx_product_images_one_thumbnail"}, nil, ErrThumbnailTaken},
		{"foreign key", &pgconn.PgError{Code: "23503"}, ErrUnknownCategory, ErrUnknownCategory},
		{"wrapped foreign key", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), ErrUnknownProduct, ErrUnknownProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translate(tt.err, tt.fkErr); !errors.Is(got, tt.want) {
				t.Errorf("translate() = %v, want %v", got, tt.want)
			}
		})
	}

	fk := &pgconn.PgError{Code: "23503"}
	if got := translate(fk, nil); got != error(fk) {
		t.Errorf("foreign key without mapping should pass through, got %v", got)
	}
}
