package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/draftmill/draftmill/internal/core"
	apperrors "github.com/draftmill/draftmill/internal/errors"
)

// ArticleStore is the read/delete surface the article endpoints need.
type ArticleStore interface {
	GetArticle(ctx context.Context, slug string) (*core.Article, error)
	ListArticles(ctx context.Context, q core.ArticleQuery) ([]*core.Article, error)
	DeleteArticle(ctx context.Context, slug string) (bool, error)
}

// Articles serves the /api/v1/articles endpoints.
type Articles struct {
	store ArticleStore
}

// NewArticles creates the article endpoint handler.
func NewArticles(store ArticleStore) *Articles {
	return &Articles{store: store}
}

// ArticleListResponse wraps the article listing payload.
type ArticleListResponse struct {
	Articles []*core.Article `json:"articles"`
	Count    int             `json:"count"`
}

// List handles GET /api/v1/articles with optional category, tag, featured,
// and limit query parameters.
func (h *Articles) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		respondWithError(w, r, apperrors.NewInternalError("article store is not configured"))
		return
	}

	q := core.ArticleQuery{
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Tag:      strings.TrimSpace(r.URL.Query().Get("tag")),
	}
	if featured := r.URL.Query().Get("featured"); featured != "" {
		value, err := strconv.ParseBool(featured)
		if err != nil {
			respondWithError(w, r, apperrors.NewInvalidInputError("featured must be true or false"))
			return
		}
		q.FeaturedOnly = value
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		value, err := strconv.Atoi(limit)
		if err != nil || value < 1 {
			respondWithError(w, r, apperrors.NewInvalidInputError("limit must be a positive integer"))
			return
		}
		q.Limit = value
	}

	articles, err := h.store.ListArticles(r.Context(), q)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to list articles"))
		return
	}

	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: articles, Count: len(articles)})
}

// Get handles GET /api/v1/articles/{slug}.
func (h *Articles) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		respondWithError(w, r, apperrors.NewInternalError("article store is not configured"))
		return
	}

	slug := chi.URLParam(r, "slug")
	article, err := h.store.GetArticle(r.Context(), slug)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to fetch article"))
		return
	}
	if article == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("article not found: "+slug))
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// Delete handles DELETE /api/v1/articles/{slug}.
func (h *Articles) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.store == nil {
		respondWithError(w, r, apperrors.NewInternalError("article store is not configured"))
		return
	}

	slug := chi.URLParam(r, "slug")
	deleted, err := h.store.DeleteArticle(r.Context(), slug)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "failed to delete article"))
		return
	}
	if !deleted {
		respondWithError(w, r, apperrors.NewNotFoundError("article not found: "+slug))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
