package handlers

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/slug"
)

// ListPosts returns every post including drafts.
func (a *API) ListPosts(w http.ResponseWriter, r *http.Request) {
	items, err := a.posts.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(items))
}

// CreatePost stores a post authored by the session user.
func (a *API) CreatePost(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	var in postInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	p := in.post(0)
	p.AuthorID = sess.UserID
	id, err := a.posts.Create(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())

	created, err := a.posts.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var in postInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	if err := a.posts.Update(r.Context(), in.post(id)); err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())

	updated, err := a.posts.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := a.posts.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeSuccess(w)
}

func (in postInput) post(id int64) *models.Post {
	s := in.Slug
	if s == "" {
		s = slug.Generate(in.Title)
	}
	return &models.Post{
		ID:          id,
		Slug:        s,
		Title:       in.Title,
		ContentMD:   in.ContentMD,
		ImagePath:   in.ImagePath,
		PublishedAt: in.PublishedAt,
	}
}
