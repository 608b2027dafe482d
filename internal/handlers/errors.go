// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"storefront/internal/catalog"
	"storefront/internal/middleware"
	"storefront/internal/store"
)

// errorResponse is the body of every non-2xx JSON answer.
type errorResponse struct {
	Error   string       `json:"error"`
	Details []fieldError `json:"details,omitempty"`
}

// clientErrors maps domain errors to the status and message the API
// reports. Anything not listed is a 500.
var clientErrors = []struct {
	err    error
	status int
	msg    string
}{
	{catalog.ErrMismatchedSet, http.StatusBadRequest, ""},
	{catalog.ErrInvalidProduct, http.StatusBadRequest, ""},
	{catalog.ErrDuplicateProduct, http.StatusBadRequest, ""},
	{store.ErrCategoryCycle, http.StatusBadRequest, ""},
	{store.ErrUnknownCategory, http.StatusBadRequest, "Unknown category"},
	{catalog.ErrStaleOrder, http.StatusConflict, ""},
	{store.ErrThumbnailTaken, http.StatusConflict, ""},
	{store.ErrSlugTaken, http.StatusConflict, "Slug already in use"},
	{store.ErrUnknownProduct, http.StatusNotFound, "Product not found"},
	{store.ErrNotFound, http.StatusNotFound, "Not found"},
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// respondError answers err with its client status, or logs it and sends a
// bare 500 so storage details never reach the caller.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"request_id", middleware.RequestIDFromCtx(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeError(w, status, msg)
}

// classify returns the status and client message for err. Unknown errors
// are a 500 with a generic message.
func classify(err error) (int, string) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			if ce.msg == "" {
				return ce.status, ce.err.Error()
			}
			return ce.status, ce.msg
		}
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
