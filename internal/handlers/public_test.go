package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/i18n"
	"storefront/internal/middleware"
	"storefront/internal/models"
)

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"/category/mugs?x=1":   "/category/mugs?x=1",
		"/":                    "/",
		"":                     "/",
		"https://evil.example": "/",
		"//evil.example":       "/",
		"/\\evil.example":      "/",
		"category/mugs":        "/",
	}
	for in, want := range tests {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestSetLang(t *testing.T) {
	p := &Public{secure: true}

	form := url.Values{"lang": {"en"}, "next": {"/sold"}}
	req := httptest.NewRequest(http.MethodPost, "/lang", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	p.SetLang(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/sold" {
		t.Errorf("Location: got %q, want /sold", loc)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != i18n.CookieName || cookies[0].Value != "en" {
		t.Fatalf("cookies: got %+v", cookies)
	}
	if !cookies[0].Secure {
		t.Error("language cookie should be Secure when configured")
	}
}

func TestSetLangRejectsUnknownLocale(t *testing.T) {
	p := &Public{}
	form := url.Values{"lang": {"de"}}
	req := httptest.NewRequest(http.MethodPost, "/lang", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	p.SetLang(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookie should be set for an unsupported locale")
	}
}

// --- Integration ---

func publicGet(env *testEnv, handler http.HandlerFunc, target string, loc i18n.Locale, params ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = withURLParams(req, params...)
	req = req.WithContext(middleware.WithLocale(req.Context(), loc))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestPublicCategoryHidesSoldPieces(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.PageCache.InvalidateAll(ctx)

	cat := env.testCategory(t, "Misky", nil)
	child := env.testCategory(t, "Malé misky", &cat.ID)
	available := env.testProduct(t, "Modrá miska", cat.ID)
	inChild := env.testProduct(t, "Malá miska", child.ID)
	sold := env.testProduct(t, "Predaná miska", cat.ID)
	again := env.testProduct(t, "Opakovaná miska", cat.ID)

	now := time.Now()
	sold.SoldAt = &now
	if err := env.Products.Update(ctx, sold); err != nil {
		t.Fatalf("mark sold: %v", err)
	}
	again.SoldAt, again.IsRecreatable = &now, true
	if err := env.Products.Update(ctx, again); err != nil {
		t.Fatalf("mark recreatable: %v", err)
	}

	rec := publicGet(env, env.Public.Category, "/category/"+cat.Slug, i18n.SK, "slug", cat.Slug)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{available.Title, inChild.Title, again.Title, child.Title} {
		if !strings.Contains(body, want) {
			t.Errorf("category page should list %q", want)
		}
	}
	if strings.Contains(body, sold.Title) {
		t.Errorf("category page should hide sold piece %q", sold.Title)
	}

	// Narrowed to the child category.
	target := "/category/" + cat.Slug + "?subcategory=" + jsonID(child.ID)
	rec = publicGet(env, env.Public.Category, target, i18n.SK, "slug", cat.Slug)
	body = rec.Body.String()
	if !strings.Contains(body, inChild.Title) || strings.Contains(body, available.Title) {
		t.Errorf("subcategory filter not applied")
	}
}

func TestPublicPagesAreCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.PageCache.InvalidateAll(ctx)

	prod := env.testProduct(t, "Cached vase")
	target := "/products/" + prod.Slug

	rec := publicGet(env, env.Public.Product, target, i18n.EN, "slug", prod.Slug)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "€15.00") {
		t.Errorf("product page should show the English price")
	}

	if _, _, ok := env.PageCache.Get(ctx, cache.PageKey(string(i18n.EN), target)); !ok {
		t.Fatal("product page was not cached")
	}
	if _, _, ok := env.PageCache.Get(ctx, cache.PageKey(string(i18n.SK), target)); ok {
		t.Error("cache entries must be per locale")
	}
}

func TestPublicNotFound(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  string
	}{
		{"category", env.Public.Category, "/category/no-such-category"},
		{"product", env.Public.Product, "/products/no-such-product"},
		{"post", env.Public.Post, "/blog/no-such-post"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slug := tt.target[strings.LastIndex(tt.target, "/")+1:]
			rec := publicGet(env, tt.handler, tt.target, i18n.EN, "slug", slug)
			if rec.Code != http.StatusNotFound {
				t.Errorf("status: got %d, want 404", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "Page not found.") {
				t.Error("404 page should be rendered")
			}
		})
	}
}

func TestPublicDraftPostIsHidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.testUser(t, "secret-pass", models.RoleAuthor)

	s := testSlug("draft")
	id, err := env.Posts.Create(ctx, &models.Post{Slug: s, Title: "Draft", ContentMD: "soon", AuthorID: author.ID})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE id = $1", id) })

	rec := publicGet(env, env.Public.Post, "/blog/"+s, i18n.SK, "slug", s)
	if rec.Code != http.StatusNotFound {
		t.Errorf("draft post: got %d, want 404", rec.Code)
	}
}
