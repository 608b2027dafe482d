// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"storefront/internal/models"
	"storefront/internal/slug"
)

type productDetail struct {
	*models.Product
	Images []models.ProductImage `json:"images"`
}

// ListProducts returns every product, newest first.
func (a *API) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := a.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(items))
}

// GetProduct returns one product with its gallery.
func (a *API) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	p, err := a.products.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	images, err := a.images.ListByProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productDetail{Product: p, Images: orEmpty(images)})
}

// CreateProduct adds a product and appends it to every linked category.
func (a *API) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	created, err := a.products.Create(r.Context(), in.product(0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusCreated, created)
}

// UpdateProduct replaces a product's fields and category links.
func (a *API) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var in productInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	if err := a.products.Update(r.Context(), in.product(id)); err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())

	updated, err := a.products.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteProduct removes a product and the files of its gallery.
func (a *API) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	images, err := a.images.ListByProduct(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := a.products.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	for _, img := range images {
		a.removeFile(r, img.ImagePath)
	}
	a.invalidate(r.Context())
	writeSuccess(w)
}

// --- Images ---

// AddImage attaches an uploaded image to a product's gallery.
func (a *API) AddImage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var in imageInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	img, err := a.images.Add(r.Context(), id, in.ImagePath, in.IsThumbnail)
	if err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusCreated, img)
}

// SetThumbnail makes an image the product's thumbnail, clearing the old one.
func (a *API) SetThumbnail(w http.ResponseWriter, r *http.Request) {
	productID, ok1 := idParam(r, "id")
	imageID, ok2 := idParam(r, "imageID")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := a.images.SetThumbnail(r.Context(), productID, imageID); err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeSuccess(w)
}

// DeleteImage removes an image from the gallery and from storage.
func (a *API) DeleteImage(w http.ResponseWriter, r *http.Request) {
	productID, ok1 := idParam(r, "id")
	imageID, ok2 := idParam(r, "imageID")
	if !ok1 || !ok2 {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	img, err := a.images.Delete(r.Context(), productID, imageID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	a.removeFile(r, img.ImagePath)
	a.invalidate(r.Context())
	writeSuccess(w)
}

// removeFile deletes an uploaded file and its thumbnail. Failures are
// logged only; the database row is already gone.
func (a *API) removeFile(r *http.Request, url string) {
	if a.files == nil {
		return
	}
	key, ok := a.files.KeyFromURL(url)
	if !ok {
		return
	}
	for _, k := range []string{key, thumbKey(key)} {
		if err := a.files.Delete(r.Context(), k); err != nil {
			slog.Warn("delete upload failed", "key", k, "error", err)
		}
	}
}

func (in productInput) product(id int64) *models.Product {
	s := in.Slug
	if s == "" {
		s = slug.Generate(in.Title)
	}
	return &models.Product{
		ID:                id,
		Slug:              s,
		Title:             in.Title,
		DescriptionMD:     in.DescriptionMD,
		PriceCents:        in.PriceCents,
		SoldAt:            in.SoldAt,
		IsRecreatable:     in.IsRecreatable,
		PrimaryCategoryID: in.CategoryID,
		CategoryIDs:       in.CategoryIDs,
	}
}

