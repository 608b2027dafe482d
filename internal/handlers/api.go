// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/slug"
	"storefront/internal/storage"
	"storefront/internal/store"
)

// membershipHeader carries a category's membership version so a client
// can send it back with a reorder.
const membershipHeader = "X-Membership-Version"

// productOrderer is the part of the membership store the reorder
// endpoints need.
type productOrderer interface {
	CategoryProducts(ctx context.Context, categoryID int64) ([]models.CategoryProduct, int64, error)
	Reorder(ctx context.Context, categoryID int64, ordered []int64, expectedVersion *int64) (int64, error)
}

// API serves the JSON endpoints under /api. Access control is applied by
// the router, so handlers assume the caller is allowed.
type API struct {
	categories *store.CategoryStore
	members    productOrderer
	products   *store.ProductStore
	images     *store.ImageStore
	posts      *store.PostStore
	orders     *store.OrderStore
	files      storage.Storage
	pageCache  *cache.PageCache
	maxUpload  int64
}

// NewAPI creates the JSON API handler group. pageCache may be nil.
func NewAPI(categories *store.CategoryStore, members productOrderer, products *store.ProductStore, images *store.ImageStore, posts *store.PostStore, orders *store.OrderStore, files storage.Storage, pageCache *cache.PageCache, maxUploadMB int) *API {
	return &API{
		categories: categories,
		members:    members,
		products:   products,
		images:     images,
		posts:      posts,
		orders:     orders,
		files:      files,
		pageCache:  pageCache,
		maxUpload:  int64(maxUploadMB) << 20,
	}
}

// invalidate drops cached public pages after a catalog or blog write.
func (a *API) invalidate(ctx context.Context) {
	a.pageCache.InvalidateAll(ctx)
}

// --- Categories ---

// ListCategories returns every category ordered by title.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := a.categories.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(items))
}

// CategoryPicker returns the parent picker list: every category except
// ?exclude, with depth, sorted by depth then title.
func (a *API) CategoryPicker(w http.ResponseWriter, r *http.Request) {
	var exclude int64
	if v := r.URL.Query().Get("exclude"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid ID")
			return
		}
		exclude = id
	}

	items, err := a.categories.Picker(r.Context(), exclude)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(items))
}

// CreateCategory adds a category. The slug defaults to one generated from
// the title.
func (a *API) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	created, err := a.categories.Create(r.Context(), in.category(0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

// UpdateCategory renames or moves a category.
func (a *API) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var in categoryInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	if err := a.categories.Update(r.Context(), in.category(id)); err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())

	updated, err := a.categories.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteCategory removes a category; see CategoryStore.Delete for what
// happens to its products and children.
func (a *API) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := a.categories.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeSuccess(w)
}

// CategoryProducts lists a category's products in display order for the
// reorder dialog, with the membership version in a response header.
func (a *API) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	items, version, err := a.members.CategoryProducts(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set(membershipHeader, strconv.FormatInt(version, 10))
	writeJSON(w, http.StatusOK, orEmpty(items))
}

// ReorderCategoryProducts stores a new product order for a category. The
// list must name every current member exactly once.
func (a *API) ReorderCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var in reorderInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	version, err := a.members.Reorder(r.Context(), id, in.OrderedProductIDs, in.Version)
	if err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	w.Header().Set(membershipHeader, strconv.FormatInt(version, 10))
	writeSuccess(w)
}

func (in categoryInput) category(id int64) *models.Category {
	s := in.Slug
	if s == "" {
		s = slug.Generate(in.Title)
	}
	return &models.Category{ID: id, Title: in.Title, Slug: s, ParentID: in.ParentID}
}
