package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill/internal/core"
	apperrors "github.com/draftmill/draftmill/internal/errors"
	"github.com/draftmill/draftmill/internal/server/handlers"
	"github.com/draftmill/draftmill/internal/throttle"
)

type fakeArticleStore struct {
	articles map[string]*core.Article
}

func newFakeArticleStore(articles ...*core.Article) *fakeArticleStore {
	s := &fakeArticleStore{articles: map[string]*core.Article{}}
	for _, a := range articles {
		s.articles[a.Slug] = a
	}
	return s
}

func (s *fakeArticleStore) GetArticle(_ context.Context, slug string) (*core.Article, error) {
	return s.articles[slug], nil
}

func (s *fakeArticleStore) ListArticles(_ context.Context, q core.ArticleQuery) ([]*core.Article, error) {
	out := []*core.Article{}
	for _, a := range s.articles {
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *fakeArticleStore) DeleteArticle(_ context.Context, slug string) (bool, error) {
	if _, ok := s.articles[slug]; !ok {
		return false, nil
	}
	delete(s.articles, slug)
	return true, nil
}

func newTestServer(t *testing.T) (*Server, *fakeArticleStore, *throttle.Limiter) {
	t.Helper()
	store := newFakeArticleStore(
		&core.Article{Slug: "soc2-audit-timeline", Title: "SOC 2 Audit Timeline", Category: "compliance"},
		&core.Article{Slug: "pen-test-basics", Title: "Pen Test Basics", Category: "security"},
	)
	limiter := throttle.New()
	return New("127.0.0.1", 0, store, limiter), store, limiter
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/does-not-exist")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestListArticlesEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/articles?category=compliance")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.ArticleListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	require.Equal(t, "soc2-audit-timeline", body.Articles[0].Slug)
}

func TestGetArticleEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/articles/soc2-audit-timeline")
	require.Equal(t, http.StatusOK, rec.Code)

	var article core.Article
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&article))
	require.Equal(t, "SOC 2 Audit Timeline", article.Title)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/articles/no-such-article")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteArticleEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/api/v1/articles/pen-test-basics")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotContains(t, store.articles, "pen-test-basics")

	rec = doRequest(t, srv, http.MethodDelete, "/api/v1/articles/pen-test-basics")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestThrottleStatsEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/throttle")
	require.Equal(t, http.StatusOK, rec.Code)

	var list handlers.ThrottleListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.NotEmpty(t, list.Services)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/throttle/content")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats throttle.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Equal(t, "content", stats.Service)
	require.True(t, stats.CanProceed)
}

func TestClearQueueEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodDelete, "/api/v1/throttle/content/queue")
	require.Equal(t, http.StatusOK, rec.Code)

	var body handlers.ClearQueueResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "content", body.Service)
	require.Zero(t, body.Cleared)
}
