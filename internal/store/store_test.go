// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"storefront/internal/database"
	"storefront/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "storefront")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "storefront")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE lower(email) = lower($1)", email)
	}
}

var uniq atomic.Int64

// testSlug returns a slug unique to this test run.
func testSlug(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), uniq.Add(1))
}

// testCategory creates a category and removes it when the test ends.
func testCategory(t *testing.T, db *sql.DB, title string, parent *int64) *models.Category {
	t.Helper()
	c, err := NewCategoryStore(db).Create(context.Background(), &models.Category{
		Title:    title,
		Slug:     testSlug("cat"),
		ParentID: parent,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", title, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// testProductInput returns an unsaved product with a unique slug.
func testProductInput(title string) *models.Product {
	return &models.Product{Title: title, Slug: testSlug("prod"), PriceCents: 1000}
}

// testProduct creates a product linked to the given categories (the first
// one primary) and removes it when the test ends.
func testProduct(t *testing.T, db *sql.DB, title string, categoryIDs ...int64) *models.Product {
	t.Helper()
	p := testProductInput(title)
	if len(categoryIDs) > 0 {
		primary := categoryIDs[0]
		p.PrimaryCategoryID = &primary
		p.CategoryIDs = categoryIDs
	}
	created, err := NewProductStore(db).Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create product %q: %v", title, err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM products WHERE id = $1", created.ID) })
	return created
}

func ptr(id int64) *int64 { return &id }
