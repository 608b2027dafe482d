// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the storefront.
// Handlers are grouped by concern (admin pages, JSON API, public pages,
// auth) and receive their dependencies through the handler struct.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/cache"
	"storefront/internal/i18n"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/render"
	"storefront/internal/store"
)

// recentOrders is how many orders the dashboard lists.
const recentOrders = 5

// Admin groups the server-rendered admin pages. Forms post back to the
// same handlers the JSON API uses, through the same validation.
type Admin struct {
	renderer   *render.Renderer
	categories *store.CategoryStore
	products   *store.ProductStore
	images     *store.ImageStore
	posts      *store.PostStore
	orders     *store.OrderStore
	pageCache  *cache.PageCache
}

// NewAdmin creates a new Admin handler group. pageCache may be nil.
func NewAdmin(renderer *render.Renderer, categories *store.CategoryStore, products *store.ProductStore, images *store.ImageStore, posts *store.PostStore, orders *store.OrderStore, pageCache *cache.PageCache) *Admin {
	return &Admin{
		renderer:   renderer,
		categories: categories,
		products:   products,
		images:     images,
		posts:      posts,
		orders:     orders,
		pageCache:  pageCache,
	}
}

// Dashboard renders the admin landing page. Authors only manage posts, so
// they are sent there.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if sess := middleware.SessionFromCtx(ctx); sess != nil && !sess.IsAdmin() {
		http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
		return
	}

	unseen, err := a.orders.CountUnseen(ctx)
	if err != nil {
		slog.Error("count unseen orders failed", "error", err)
	}
	products, err := a.products.List(ctx)
	if err != nil {
		slog.Error("list products failed", "error", err)
	}
	categories, err := a.categories.List(ctx)
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}
	posts, err := a.posts.List(ctx)
	if err != nil {
		slog.Error("list posts failed", "error", err)
	}
	orders, err := a.orders.List(ctx)
	if err != nil {
		slog.Error("list orders failed", "error", err)
	}
	if len(orders) > recentOrders {
		orders = orders[:recentOrders]
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   a.t(r, "admin.dashboard"),
		Section: "dashboard",
		Data: map[string]any{
			"UnseenOrders":  unseen,
			"ProductCount":  len(products),
			"CategoryCount": len(categories),
			"PostCount":     len(posts),
			"RecentOrders":  orders,
		},
	})
}

// --- Categories ---

func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.categories.FlatTree(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
	}
	a.renderer.Page(w, r, "categories", &render.PageData{
		Title:   a.t(r, "admin.categories"),
		Section: "categories",
		Data:    map[string]any{"Items": items},
	})
}

func (a *Admin) CategoryNew(w http.ResponseWriter, r *http.Request) {
	a.categoryForm(w, r, http.StatusOK, nil, "")
}

func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	in := categoryInput{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Slug:     strings.TrimSpace(r.FormValue("slug")),
		ParentID: formID(r.FormValue("parent_id")),
	}
	item := in.category(0)
	if msg := a.check(r, in); msg != "" {
		a.categoryForm(w, r, http.StatusBadRequest, item, msg)
		return
	}
	if _, err := a.categories.Create(r.Context(), item); err != nil {
		a.categoryForm(w, r, statusFor(err), item, a.saveFailed(r, err))
		return
	}
	a.invalidate(r.Context())
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (a *Admin) CategoryEdit(w http.ResponseWriter, r *http.Request) {
	item, ok := a.findCategory(w, r)
	if !ok {
		return
	}
	a.categoryForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	in := categoryInput{
		Title:    strings.TrimSpace(r.FormValue("title")),
		Slug:     strings.TrimSpace(r.FormValue("slug")),
		ParentID: formID(r.FormValue("parent_id")),
	}
	item := in.category(id)
	if msg := a.check(r, in); msg != "" {
		a.categoryForm(w, r, http.StatusBadRequest, item, msg)
		return
	}
	if err := a.categories.Update(r.Context(), item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		a.categoryForm(w, r, statusFor(err), item, a.saveFailed(r, err))
		return
	}
	a.invalidate(r.Context())
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := a.categories.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("delete category failed", "id", id, "error", err)
	} else {
		a.invalidate(r.Context())
	}
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// CategoryReorder renders the drag-and-drop product order dialog. The list
// itself is loaded from the JSON API.
func (a *Admin) CategoryReorder(w http.ResponseWriter, r *http.Request) {
	item, ok := a.findCategory(w, r)
	if !ok {
		return
	}
	a.renderer.Page(w, r, "category_reorder", &render.PageData{
		Title:   a.t(r, "admin.reorder") + ": " + item.Title,
		Section: "categories",
		Data:    map[string]any{"Item": item},
	})
}

func (a *Admin) categoryForm(w http.ResponseWriter, r *http.Request, status int, item *models.Category, errMsg string) {
	var exclude int64
	if item != nil {
		exclude = item.ID
	}
	parents, err := a.categories.Picker(r.Context(), exclude)
	if err != nil {
		slog.Error("load category picker failed", "error", err)
	}

	title := a.t(r, "admin.new")
	if item != nil && item.ID != 0 {
		title = item.Title
	}
	data := map[string]any{
		"IsNew":   item == nil || item.ID == 0,
		"Item":    item,
		"Parents": parents,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "category_form", &render.PageData{
		Title:   title,
		Section: "categories",
		Data:    data,
	})
}

func (a *Admin) findCategory(w http.ResponseWriter, r *http.Request) (*models.Category, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}
	item, err := a.categories.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find category failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if item == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return item, true
}

// --- Products ---

func (a *Admin) ProductsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.products.List(r.Context())
	if err != nil {
		slog.Error("list products failed", "error", err)
	}
	a.renderer.Page(w, r, "products", &render.PageData{
		Title:   a.t(r, "admin.products"),
		Section: "products",
		Data:    map[string]any{"Items": items},
	})
}

func (a *Admin) ProductNew(w http.ResponseWriter, r *http.Request) {
	a.productForm(w, r, http.StatusOK, nil, "")
}

func (a *Admin) ProductCreate(w http.ResponseWriter, r *http.Request) {
	in, err := productFromForm(r)
	item := in.product(0)
	if err != nil {
		a.productForm(w, r, http.StatusBadRequest, item, a.t(r, "admin.invalidForm", "fields", err.Error()))
		return
	}
	if msg := a.check(r, in); msg != "" {
		a.productForm(w, r, http.StatusBadRequest, item, msg)
		return
	}
	created, err := a.products.Create(r.Context(), item)
	if err != nil {
		a.productForm(w, r, statusFor(err), item, a.saveFailed(r, err))
		return
	}
	a.invalidate(r.Context())
	// Straight to the edit page so images can be added.
	http.Redirect(w, r, "/admin/products/"+strconv.FormatInt(created.ID, 10)+"/edit", http.StatusSeeOther)
}

func (a *Admin) ProductEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	item, err := a.products.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find product failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.NotFound(w, r)
		return
	}
	a.productForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	in, err := productFromForm(r)
	item := in.product(id)
	if err != nil {
		a.productForm(w, r, http.StatusBadRequest, item, a.t(r, "admin.invalidForm", "fields", err.Error()))
		return
	}
	if msg := a.check(r, in); msg != "" {
		a.productForm(w, r, http.StatusBadRequest, item, msg)
		return
	}
	if err := a.products.Update(r.Context(), item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		a.productForm(w, r, statusFor(err), item, a.saveFailed(r, err))
		return
	}
	a.invalidate(r.Context())
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (a *Admin) ProductDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := a.products.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("delete product failed", "id", id, "error", err)
	} else {
		a.invalidate(r.Context())
	}
	http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
}

func (a *Admin) productForm(w http.ResponseWriter, r *http.Request, status int, item *models.Product, errMsg string) {
	ctx := r.Context()
	categories, err := a.categories.FlatTree(ctx)
	if err != nil {
		slog.Error("load categories failed", "error", err)
	}
	isNew := item == nil || item.ID == 0

	var images []models.ProductImage
	if !isNew {
		if images, err = a.images.ListByProduct(ctx, item.ID); err != nil {
			slog.Error("load product images failed", "id", item.ID, "error", err)
		}
	}

	title := a.t(r, "admin.new")
	if !isNew {
		title = item.Title
	}
	data := map[string]any{
		"IsNew":      isNew,
		"Item":       item,
		"Categories": categories,
		"Images":     images,
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "product_form", &render.PageData{
		Title:   title,
		Section: "products",
		Data:    data,
	})
}

// productFromForm reads the product form. Only malformed numbers and dates
// are reported here; the rest is left to the validator.
func productFromForm(r *http.Request) (productInput, error) {
	if err := r.ParseForm(); err != nil {
		return productInput{}, err
	}
	in := productInput{
		Title:         strings.TrimSpace(r.PostFormValue("title")),
		Slug:          strings.TrimSpace(r.PostFormValue("slug")),
		DescriptionMD: r.PostFormValue("description_md"),
		CategoryID:    formID(r.PostFormValue("category_id")),
		IsRecreatable: r.PostFormValue("is_recreatable") != "",
	}

	var bad []string
	if v := r.PostFormValue("price_cents"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			bad = append(bad, "priceCents")
		}
		in.PriceCents = n
	}
	for _, v := range r.PostForm["category_ids"] {
		if id := formID(v); id != nil {
			in.CategoryIDs = append(in.CategoryIDs, *id)
		}
	}
	soldAt, err := formDate(r.PostFormValue("sold_at"))
	if err != nil {
		bad = append(bad, "soldAt")
	}
	in.SoldAt = soldAt

	if len(bad) > 0 {
		return in, errors.New(strings.Join(bad, ", "))
	}
	return in, nil
}

// --- Posts ---

func (a *Admin) PostsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.posts.List(r.Context())
	if err != nil {
		slog.Error("list posts failed", "error", err)
	}
	a.renderer.Page(w, r, "posts", &render.PageData{
		Title:   a.t(r, "admin.posts"),
		Section: "posts",
		Data:    map[string]any{"Items": items},
	})
}

func (a *Admin) PostNew(w http.ResponseWriter, r *http.Request) {
	a.postForm(w, r, http.StatusOK, nil, "")
}

func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	in, err := postFromForm(r)
	item := in.post(0)
	if err != nil {
		a.postForm(w, r, http.StatusBadRequest, item, a.t(r, "admin.invalidForm", "fields", "publishedAt"))
		return
	}
	if msg := a.check(r, in); msg != "" {
		a.postForm(w, r, http.StatusBadRequest, item, msg)
		return
	}
	item.AuthorID = sess.UserID
	if _, err := a.posts.Create(r.Context(), item); err != nil {
		a.postForm(w, r, statusFor(err), item, a.saveFailed(r, err))
		return
	}
	a.invalidate(r.Context())
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (a *Admin) PostEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	item, err := a.posts.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find post failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.NotFound(w, r)
		return
	}
	a.postForm(w, r, http.StatusOK, item, "")
}

func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	in, err := postFromForm(r)
	item := in.post(id)
	if err != nil {
		a.postForm(w, r, http.StatusBadRequest, item, a.t(r, "admin.invalidForm", "fields", "publishedAt"))
		return
	}
	if msg := a.check(r, in); msg != "" {
		a.postForm(w, r, http.StatusBadRequest, item, msg)
		return
	}
	if err := a.posts.Update(r.Context(), item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		a.postForm(w, r, statusFor(err), item, a.saveFailed(r, err))
		return
	}
	a.invalidate(r.Context())
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := a.posts.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("delete post failed", "id", id, "error", err)
	} else {
		a.invalidate(r.Context())
	}
	http.Redirect(w, r, "/admin/posts", http.StatusSeeOther)
}

func (a *Admin) postForm(w http.ResponseWriter, r *http.Request, status int, item *models.Post, errMsg string) {
	isNew := item == nil || item.ID == 0
	title := a.t(r, "admin.new")
	if !isNew {
		title = item.Title
	}
	data := map[string]any{"IsNew": isNew, "Item": item}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	a.renderer.PageStatus(w, r, status, "post_form", &render.PageData{
		Title:   title,
		Section: "posts",
		Data:    data,
	})
}

func postFromForm(r *http.Request) (postInput, error) {
	in := postInput{
		Title:     strings.TrimSpace(r.FormValue("title")),
		Slug:      strings.TrimSpace(r.FormValue("slug")),
		ContentMD: r.FormValue("content_md"),
	}
	if v := strings.TrimSpace(r.FormValue("image_path")); v != "" {
		in.ImagePath = &v
	}
	publishedAt, err := formDate(r.FormValue("published_at"))
	in.PublishedAt = publishedAt
	return in, err
}

// --- Orders ---

func (a *Admin) OrdersList(w http.ResponseWriter, r *http.Request) {
	items, err := a.orders.List(r.Context())
	if err != nil {
		slog.Error("list orders failed", "error", err)
	}
	a.renderer.Page(w, r, "orders", &render.PageData{
		Title:   a.t(r, "admin.orders"),
		Section: "orders",
		Data:    map[string]any{"Items": items},
	})
}

// OrderSeen toggles the seen flag from the orders table.
func (a *Admin) OrderSeen(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	seen := r.FormValue("seen") == "1"
	if err := a.orders.SetSeen(r.Context(), id, seen); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("set order seen failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin/orders", http.StatusSeeOther)
}

// --- Helpers ---

func (a *Admin) invalidate(ctx context.Context) {
	a.pageCache.InvalidateAll(ctx)
}

func (a *Admin) t(r *http.Request, key string, kv ...any) string {
	return i18n.Translator(middleware.LocaleFromCtx(r.Context()))(key, kv...)
}

// check validates a form DTO and returns a message naming the failing
// fields, or "" when the input is valid.
func (a *Admin) check(r *http.Request, in any) string {
	err := validate.Struct(in)
	if err == nil {
		return ""
	}
	var fields []string
	for _, d := range validationDetails(err) {
		fields = append(fields, d.Field)
	}
	return a.t(r, "admin.invalidForm", "fields", strings.Join(fields, ", "))
}

// saveFailed turns a store error into a form message. Unexpected errors
// are logged and shown without detail.
func (a *Admin) saveFailed(r *http.Request, err error) string {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("admin save failed", "path", r.URL.Path, "error", err)
	}
	return a.t(r, "admin.saveFailed", "reason", msg)
}

// statusFor is the status a form is re-rendered with after a store error.
func statusFor(err error) int {
	status, _ := classify(err)
	return status
}

// formID parses an optional positive ID from a form value.
func formID(v string) *int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// formDate parses an optional YYYY-MM-DD date as midnight UTC.
func formDate(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
