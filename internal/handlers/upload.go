// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"storefront/internal/imaging"
	"storefront/internal/storage"
)

// extensions maps the accepted upload types to file extensions.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// uploadResponse is the body of a successful upload.
type uploadResponse struct {
	Path      string `json:"path"`
	ThumbPath string `json:"thumbPath,omitempty"`
}

// Upload stores a product or post image and a JPEG thumbnail next to it.
// The returned path is what clients send back as imagePath.
func (a *API) Upload(w http.ResponseWriter, r *http.Request) {
	if a.files == nil {
		writeError(w, http.StatusServiceUnavailable, "Uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload+1024)
	if err := r.ParseMultipartForm(a.maxUpload); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size is %d MB.", a.maxUpload>>20))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > a.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size is %d MB.", a.maxUpload>>20))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	contentType, err := imaging.Detect(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Only JPEG, PNG and WebP images are allowed")
		return
	}

	now := time.Now()
	key := fmt.Sprintf("products/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), extensions[contentType])

	ctx := r.Context()
	url, err := a.files.Save(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		respondError(w, r, err)
		return
	}
	resp := uploadResponse{Path: url}

	thumb, err := imaging.Thumbnail(data, imaging.ThumbWidth)
	if err != nil {
		slog.Warn("thumbnail generation failed", "key", key, "error", err)
	} else {
		tk := thumbKey(key)
		if thumbURL, err := a.files.Save(ctx, tk, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
			slog.Warn("thumbnail upload failed", "key", tk, "error", err)
		} else {
			resp.ThumbPath = thumbURL
		}
	}

	slog.Info("file uploaded", "key", key, "size", len(data), "type", contentType)
	writeJSON(w, http.StatusCreated, resp)
}

// thumbKey derives the thumbnail key of an upload:
// products/2026/01/abc.png -> products/2026/01/abc_thumb.jpg.
func thumbKey(key string) string {
	if i := strings.LastIndexByte(key, '.'); i > strings.LastIndexByte(key, '/') {
		key = key[:i]
	}
	return key + "_thumb.jpg"
}

// ServeUploads serves files from local storage under /uploads/. Keys that
// would leave the upload directory are rejected.
func ServeUploads(local *storage.Local) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		f, err := local.Open(key)
		switch {
		case errors.Is(err, storage.ErrInvalidKey):
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		case errors.Is(err, fs.ErrNotExist):
			http.NotFound(w, r)
			return
		case err != nil:
			slog.Error("open upload failed", "key", key, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}
}
