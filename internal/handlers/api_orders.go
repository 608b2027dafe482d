// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"storefront/internal/models"
)

// CreateOrder records a visitor's interest in a product. It is public;
// the router rate limits it per client.
func (a *API) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in orderInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	p, err := a.products.FindByID(r.Context(), in.ProductID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if !p.IsOrderable() {
		writeError(w, http.StatusConflict, "Product is not available")
		return
	}

	o := &models.Order{ProductID: p.ID, ContactType: models.ContactEmail, ContactValue: in.Email}
	if in.Email == "" {
		o.ContactType, o.ContactValue = models.ContactPhone, in.Phone
	}
	created, err := a.orders.Create(r.Context(), o)
	if err != nil {
		respondError(w, r, err)
		return
	}

	slog.Info("order received", "order_id", created.ID, "product_id", p.ID, "contact_type", created.ContactType)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": created.ID})
}

// ListOrders returns orders, unseen first.
func (a *API) ListOrders(w http.ResponseWriter, r *http.Request) {
	items, err := a.orders.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(items))
}

// SetOrderSeen marks an order as handled or not.
func (a *API) SetOrderSeen(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var in seenInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	if err := a.orders.SetSeen(r.Context(), id, in.Seen); err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w)
}
