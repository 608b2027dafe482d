// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/i18n"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/render"
	"storefront/internal/store"
)

// homePosts is how many posts the homepage lists.
const homePosts = 10

// langCookieAge keeps the language choice for a year.
const langCookieAge = 365 * 24 * 60 * 60

// Public groups the storefront pages. Rendered pages are kept in the
// Valkey page cache per locale and URL until the next catalog write.
type Public struct {
	renderer   *render.Renderer
	categories *store.CategoryStore
	members    *store.MembershipStore
	products   *store.ProductStore
	images     *store.ImageStore
	posts      *store.PostStore
	pageCache  *cache.PageCache
	secure     bool
}

// NewPublic creates a new Public handler group. pageCache may be nil.
func NewPublic(renderer *render.Renderer, categories *store.CategoryStore, members *store.MembershipStore, products *store.ProductStore, images *store.ImageStore, posts *store.PostStore, pageCache *cache.PageCache, secure bool) *Public {
	return &Public{
		renderer:   renderer,
		categories: categories,
		members:    members,
		products:   products,
		images:     images,
		posts:      posts,
		pageCache:  pageCache,
		secure:     secure,
	}
}

// page builds the data for one public page from the request and the full
// category list. A nil data map means "not found".
type page func(r *http.Request, cats []models.Category) (name, title string, data map[string]any, err error)

// serve answers from the page cache or renders and caches the page.
func (p *Public) serve(w http.ResponseWriter, r *http.Request, build page) {
	ctx := r.Context()
	loc := middleware.LocaleFromCtx(ctx)
	key := cache.PageKey(string(loc), r.URL.RequestURI())

	cached, gen, ok := p.pageCache.Get(ctx, key)
	if ok {
		writeHTML(w, http.StatusOK, cached)
		return
	}

	cats, err := p.categories.List(ctx)
	if err != nil {
		p.fail(w, r, err)
		return
	}
	nav, _ := catalog.Partition(cats)

	name, title, data, err := build(r, cats)
	if err != nil {
		p.fail(w, r, err)
		return
	}
	if data == nil {
		p.notFound(w, r, nav)
		return
	}
	data["Nav"] = nav

	body, err := p.renderer.Public(name, &render.PageData{
		Title:  title,
		Locale: loc,
		Path:   r.URL.RequestURI(),
		Data:   data,
	})
	if err != nil {
		p.fail(w, r, err)
		return
	}
	p.pageCache.Set(ctx, key, gen, body)
	writeHTML(w, http.StatusOK, body)
}

// Home lists the root categories and the latest published posts.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, func(r *http.Request, _ []models.Category) (string, string, map[string]any, error) {
		posts, err := p.posts.ListPublished(r.Context(), homePosts)
		if err != nil {
			return "", "", nil, err
		}
		return "home", "", map[string]any{"Posts": posts}, nil
	})
}

// Category lists the products of a category. ?subcategory=N narrows the
// listing to one child; without it the direct children are included.
// Sold pieces that cannot be made again are hidden.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, func(r *http.Request, cats []models.Category) (string, string, map[string]any, error) {
		ctx := r.Context()
		var cat *models.Category
		want := chi.URLParam(r, "slug")
		for i := range cats {
			if cats[i].Slug == want {
				cat = &cats[i]
				break
			}
		}
		if cat == nil {
			return "", "", nil, nil
		}

		filter := r.URL.Query().Get("subcategory")
		scope := catalog.ResolveScope(cat.ID, filter, cats)
		products, err := p.members.MembersOf(ctx, scope, store.MemberFilter{ExcludeSold: true})
		if err != nil {
			return "", "", nil, err
		}

		_, children := catalog.Partition(cats)
		var active int64
		if id, err := strconv.ParseInt(filter, 10, 64); err == nil && id > 0 {
			active = id
		}
		return "category", cat.Title, map[string]any{
			"Category": cat,
			"Children": children[cat.ID],
			"Active":   active,
			"Products": products,
		}, nil
	})
}

// Product shows one product with its gallery and the order form.
func (p *Public) Product(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, func(r *http.Request, _ []models.Category) (string, string, map[string]any, error) {
		ctx := r.Context()
		prod, err := p.products.FindBySlug(ctx, chi.URLParam(r, "slug"))
		if err != nil || prod == nil {
			return "", "", nil, err
		}
		images, err := p.images.ListByProduct(ctx, prod.ID)
		if err != nil {
			return "", "", nil, err
		}
		data := map[string]any{"Product": prod, "Images": images}
		if prod.PrimaryCategoryID != nil {
			cat, err := p.categories.FindByID(ctx, *prod.PrimaryCategoryID)
			if err != nil {
				return "", "", nil, err
			}
			if cat != nil {
				data["Category"] = cat
			}
		}
		return "product", prod.Title, data, nil
	})
}

// Sold lists sold pieces, most recent first.
func (p *Public) Sold(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, func(r *http.Request, _ []models.Category) (string, string, map[string]any, error) {
		products, err := p.products.ListSold(r.Context())
		if err != nil {
			return "", "", nil, err
		}
		title := i18n.T(middleware.LocaleFromCtx(r.Context()), "sold.title", nil)
		return "sold", title, map[string]any{"Products": products}, nil
	})
}

// Post renders a published blog post. Drafts and scheduled posts are 404.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, func(r *http.Request, _ []models.Category) (string, string, map[string]any, error) {
		post, err := p.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil || post == nil || !post.IsPublished(time.Now()) {
			return "", "", nil, err
		}
		return "post", post.Title, map[string]any{"Post": post}, nil
	})
}

// NotFound renders the 404 page for unmatched routes.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	cats, err := p.categories.List(r.Context())
	if err != nil {
		slog.Warn("load navigation failed", "error", err)
	}
	nav, _ := catalog.Partition(cats)
	p.notFound(w, r, nav)
}

// SetLang stores the chosen language in a cookie and goes back to the
// page the switch was made on.
func (p *Public) SetLang(w http.ResponseWriter, r *http.Request) {
	loc, ok := i18n.Parse(r.FormValue("lang"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.CookieName,
		Value:    string(loc),
		Path:     "/",
		MaxAge:   langCookieAge,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, safeNext(r.FormValue("next")), http.StatusSeeOther)
}

func (p *Public) notFound(w http.ResponseWriter, r *http.Request, nav []models.Category) {
	loc := middleware.LocaleFromCtx(r.Context())
	body, err := p.renderer.Public("not_found", &render.PageData{
		Title:  "404",
		Locale: loc,
		Path:   r.URL.RequestURI(),
		Data:   map[string]any{"Nav": nav},
	})
	if err != nil {
		slog.Error("render not found page failed", "error", err)
		http.NotFound(w, r)
		return
	}
	writeHTML(w, http.StatusNotFound, body)
}

func (p *Public) fail(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("public page failed", "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

// safeNext only allows local paths as a redirect target.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
