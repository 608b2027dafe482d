package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// demoCategory is a seeded category; Parent refers to another slug.
type demoCategory struct {
	Title  string
	Slug   string
	Parent string
}

var demoCategories = []demoCategory{
	{Title: "Šperky", Slug: "sperky"},
	{Title: "Náušnice", Slug: "nausnice", Parent: "sperky"},
	{Title: "Náhrdelníky", Slug: "nahrdelniky", Parent: "sperky"},
	{Title: "Keramika", Slug: "keramika"},
}

type demoProduct struct {
	Title      string
	Slug       string
	PriceCents int
	Categories []string // first entry is the primary category
}

var demoProducts = []demoProduct{
	{Title: "Strieborné náušnice", Slug: "strieborne-nausnice", PriceCents: 2450, Categories: []string{"nausnice"}},
	{Title: "Perlový náhrdelník", Slug: "perlovy-nahrdelnik", PriceCents: 5900, Categories: []string{"nahrdelniky", "sperky"}},
	{Title: "Modrá šálka", Slug: "modra-salka", PriceCents: 1800, Categories: []string{"keramika"}},
}

// Seed populates the database with initial development data.
// It creates the admin user when no users exist and a small demo catalog
// when no categories exist. The admin will be prompted to set up 2FA on
// first login (totp_enabled = false).
func Seed(db *sql.DB, adminEmail, adminPassword string) error {
	ctx := context.Background()

	if err := SeedAdmin(ctx, db, adminEmail, adminPassword); err != nil {
		return err
	}
	return seedCatalog(ctx, db)
}

// SeedAdmin creates the first administrator when the users table is empty.
func SeedAdmin(ctx context.Context, db *sql.DB, email, password string) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, strings.ToLower(strings.TrimSpace(email)), string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin user", "email", email)
	return nil
}

func seedCatalog(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := make(map[string]int64, len(demoCategories))
	for _, c := range demoCategories {
		var parent sql.NullInt64
		if c.Parent != "" {
			parent = sql.NullInt64{Int64: ids[c.Parent], Valid: true}
		}
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO categories (title, slug, parent_id) VALUES ($1, $2, $3) RETURNING id`,
			c.Title, c.Slug, parent,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.Slug, err)
		}
		ids[c.Slug] = id
	}

	// Positions per category, appended in seed order.
	next := make(map[int64]int)
	for _, p := range demoProducts {
		var productID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO products (title, slug, price_cents) VALUES ($1, $2, $3) RETURNING id`,
			p.Title, p.Slug, p.PriceCents,
		).Scan(&productID)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.Slug, err)
		}
		for i, slug := range p.Categories {
			catID := ids[slug]
			next[catID]++
			_, err := tx.ExecContext(ctx, `
				INSERT INTO product_categories (product_id, category_id, is_primary, sort_order)
				VALUES ($1, $2, $3, $4)
			`, productID, catID, i == 0, next[catID])
			if err != nil {
				return fmt.Errorf("seed product link %s/%s: %w", p.Slug, slug, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo catalog",
		"categories", len(demoCategories),
		"products", len(demoProducts),
	)
	return nil
}
