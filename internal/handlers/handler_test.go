// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Integration tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"storefront/internal/cache"
	"storefront/internal/database"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/render"
	"storefront/internal/session"
	"storefront/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "storefront")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "storefront")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})
	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Renderer   *render.Renderer
	Sessions   *session.Store
	Users      *store.UserStore
	Categories *store.CategoryStore
	Members    *store.MembershipStore
	Products   *store.ProductStore
	Images     *store.ImageStore
	Posts      *store.PostStore
	Orders     *store.OrderStore
	PageCache  *cache.PageCache
	API        *API
	Admin      *Admin
	Auth       *Auth
	Public     *Public
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	env := &testEnv{
		DB:         db,
		Valkey:     vk,
		Renderer:   renderer,
		Sessions:   session.NewStore(vk, false),
		Users:      store.NewUserStore(db),
		Categories: store.NewCategoryStore(db),
		Members:    store.NewMembershipStore(db),
		Products:   store.NewProductStore(db),
		Images:     store.NewImageStore(db),
		Posts:      store.NewPostStore(db),
		Orders:     store.NewOrderStore(db),
		PageCache:  cache.NewPageCache(vk, time.Minute),
	}
	env.API = NewAPI(env.Categories, env.Members, env.Products, env.Images, env.Posts, env.Orders, nil, env.PageCache, 10)
	env.Admin = NewAdmin(renderer, env.Categories, env.Products, env.Images, env.Posts, env.Orders, env.PageCache)
	env.Auth = NewAuth(renderer, env.Sessions, env.Users)
	env.Public = NewPublic(renderer, env.Categories, env.Members, env.Products, env.Images, env.Posts, env.PageCache, false)
	return env
}

var uniq atomic.Int64

// testSlug returns a slug unique to this test run.
func testSlug(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), uniq.Add(1))
}

// testCategory creates a category and removes it when the test ends.
func (e *testEnv) testCategory(t *testing.T, title string, parentID *int64) *models.Category {
	t.Helper()
	c, err := e.Categories.Create(context.Background(), &models.Category{
		Title:    title,
		Slug:     testSlug("cat"),
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() { e.DB.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

// testProduct creates a product in the given categories, the first one
// primary, and removes it when the test ends.
func (e *testEnv) testProduct(t *testing.T, title string, catIDs ...int64) *models.Product {
	t.Helper()
	p := &models.Product{Title: title, Slug: testSlug("prod"), PriceCents: 1500}
	if len(catIDs) > 0 {
		p.PrimaryCategoryID = &catIDs[0]
		p.CategoryIDs = catIDs[1:]
	}
	created, err := e.Products.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	t.Cleanup(func() { e.DB.Exec("DELETE FROM products WHERE id = $1", created.ID) })
	return created
}

// testUser creates a user and removes it when the test ends.
func (e *testEnv) testUser(t *testing.T, password string, role models.Role) *models.User {
	t.Helper()
	email := testSlug("user") + "@example.com"
	u, err := e.Users.Create(context.Background(), email, password, "Test User", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { e.DB.Exec("DELETE FROM users WHERE id = $1", u.ID) })
	return u
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withURLParams adds chi URL parameters to a request, given as
// alternating names and values.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
