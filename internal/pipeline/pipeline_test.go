package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill/internal/core"
	"github.com/draftmill/draftmill/internal/provider/content"
	"github.com/draftmill/draftmill/internal/provider/forum"
	"github.com/draftmill/draftmill/internal/provider/research"
	"github.com/draftmill/draftmill/internal/throttle"
)

type memStore struct {
	articles map[string]*core.Article
}

func newMemStore() *memStore {
	return &memStore{articles: map[string]*core.Article{}}
}

func (m *memStore) UpsertArticle(_ context.Context, article *core.Article) error {
	m.articles[article.Slug] = article
	return nil
}

const draftJSON = `{
	"choices": [{
		"message": {"content": "{\"title\": \"How Long Does a SOC 2 Audit Take?\", \"excerpt\": \"A realistic timeline.\", \"meta_title\": \"SOC 2 Audit Timeline\", \"meta_description\": \"What to expect.\", \"blocks\": [{\"type\": \"heading\", \"text\": \"Timeline\", \"level\": 2}, {\"type\": \"paragraph\", \"text\": \"Most audits take three to twelve months.\"}]}"},
		"finish_reason": "stop"
	}]
}`

func contentServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

// testLimiter turns off retries so provider failures settle immediately.
func testLimiter() *throttle.Limiter {
	l := throttle.New()
	for _, service := range []string{throttle.ServiceContent, throttle.ServiceResearch, throttle.ServiceForum} {
		l.Configure(service, throttle.ServiceConfig{MaxRequests: 100, MaxRetries: -1})
	}
	return l
}

func newTestDrafter(t *testing.T, contentBody string) (*Drafter, *memStore) {
	t.Helper()

	contentSrv := contentServer(t, http.StatusOK, contentBody)
	t.Cleanup(contentSrv.Close)

	researchSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "soc2 audit",
			"keywords": [{"term": "soc2 audit timeline", "volume": 880, "difficulty": 34.5}],
			"competitors": ["vanta.com", "drata.com"]
		}`))
	}))
	t.Cleanup(researchSrv.Close)

	forumSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"threads": [{"title": "How long does a SOC2 audit take?", "permalink": "/t/123", "score": 58, "replies": 23}]
		}`))
	}))
	t.Cleanup(forumSrv.Close)

	store := newMemStore()
	drafter := &Drafter{
		Content:  content.NewClient(contentSrv.URL, "test-key", ""),
		Research: research.NewClient(researchSrv.URL, "test-key"),
		Forum:    forum.NewClient(forumSrv.URL, "draftmill-test/1.0"),
		Limiter:  testLimiter(),
		Store:    store,
	}
	return drafter, store
}

func TestDraftHappyPath(t *testing.T) {
	drafter, store := newTestDrafter(t, draftJSON)

	result, err := drafter.Draft(context.Background(), Request{
		Topic:    "soc2 audit timeline",
		Category: "compliance",
		Tags:     []string{"soc2"},
		Featured: true,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Article)
	require.True(t, result.Stored)
	require.False(t, result.ResearchFellBack)
	require.Equal(t, 1, result.ForumThreads)

	article := result.Article
	require.Equal(t, "how-long-does-a-soc-2-audit-take", article.Slug)
	require.Equal(t, "How Long Does a SOC 2 Audit Take?", article.Title)
	require.Equal(t, "compliance", article.Category)
	require.True(t, article.Featured)
	require.Len(t, article.Blocks, 2)
	require.Equal(t, core.BlockTypeHeading, article.Blocks[0].Type)
	require.Equal(t, []string{"soc2 audit timeline"}, article.SEO.Keywords)
	require.Equal(t, []string{"vanta.com", "drata.com"}, article.SEO.Competitors)

	require.Contains(t, store.articles, article.Slug)
}

func TestDraftResearchFallback(t *testing.T) {
	drafter, _ := newTestDrafter(t, draftJSON)

	brokenResearch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer brokenResearch.Close()
	drafter.Research = research.NewClient(brokenResearch.URL, "test-key")

	result, err := drafter.Draft(context.Background(), Request{Topic: "soc2 audit timeline"})
	require.NoError(t, err)
	require.True(t, result.ResearchFellBack)
	require.Equal(t, []string{"soc2 audit timeline"}, result.Article.SEO.Keywords)
}

func TestDraftForumFailureNonFatal(t *testing.T) {
	drafter, _ := newTestDrafter(t, draftJSON)

	brokenForum := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer brokenForum.Close()
	drafter.Forum = forum.NewClient(brokenForum.URL, "draftmill-test/1.0")

	result, err := drafter.Draft(context.Background(), Request{Topic: "soc2 audit timeline"})
	require.NoError(t, err)
	require.Zero(t, result.ForumThreads)
}

func TestDraftContentFailureIsFatal(t *testing.T) {
	drafter, store := newTestDrafter(t, draftJSON)

	brokenContent := contentServer(t, http.StatusUnauthorized, `{"error": "bad key"}`)
	drafter.Content = content.NewClient(brokenContent.URL, "bad-key", "")

	_, err := drafter.Draft(context.Background(), Request{Topic: "soc2 audit timeline"})
	require.Error(t, err)
	require.Empty(t, store.articles)
}

func TestDraftProseFallsBackToParagraphs(t *testing.T) {
	prose := `{
		"choices": [{
			"message": {"content": "SOC 2 audits are long.\n\nPlan for several months."},
			"finish_reason": "stop"
		}]
	}`
	drafter, _ := newTestDrafter(t, prose)

	result, err := drafter.Draft(context.Background(), Request{Topic: "soc2 audit timeline"})
	require.NoError(t, err)

	article := result.Article
	require.Equal(t, "soc2 audit timeline", article.Title)
	require.Len(t, article.Blocks, 2)
	require.Equal(t, core.BlockTypeParagraph, article.Blocks[0].Type)
	require.Equal(t, "SOC 2 audits are long.", article.Blocks[0].Text)
}

func TestDraftDryRunSkipsStore(t *testing.T) {
	drafter, store := newTestDrafter(t, draftJSON)

	result, err := drafter.Draft(context.Background(), Request{Topic: "soc2 audit timeline", DryRun: true})
	require.NoError(t, err)
	require.False(t, result.Stored)
	require.Empty(t, store.articles)
}

func TestDraftRequiresTopic(t *testing.T) {
	drafter, _ := newTestDrafter(t, draftJSON)

	_, err := drafter.Draft(context.Background(), Request{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "topic")
}
