//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill/internal/config"
	"github.com/draftmill/draftmill/internal/core"
)

func newMemoryStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func sampleArticle(slug string) *core.Article {
	return &core.Article{
		Slug:     slug,
		Title:    "How Long Does a SOC 2 Audit Take?",
		Author:   "Draftmill",
		Category: "compliance",
		Excerpt:  "A realistic timeline for SOC 2 Type II audits.",
		Blocks: []core.Block{
			{Type: core.BlockTypeHeading, Text: "Timeline", Level: 2},
			{Type: core.BlockTypeParagraph, Text: "Most audits take three to twelve months."},
			{Type: core.BlockTypeList, Items: []string{"Scoping", "Evidence collection", "Auditor review"}},
		},
		Tags:     []string{"soc2", "audit"},
		Featured: true,
		SEO: core.SEOMeta{
			MetaTitle:       "SOC 2 Audit Timeline",
			MetaDescription: "How long a SOC 2 audit really takes.",
			Keywords:        []string{"soc2 audit timeline"},
		},
	}
}

func TestUpsertAndGetArticle(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	article := sampleArticle("soc2-audit-timeline")
	require.NoError(t, store.UpsertArticle(ctx, article))
	require.False(t, article.PublishedAt.IsZero())
	require.False(t, article.UpdatedAt.IsZero())

	fetched, err := store.GetArticle(ctx, "soc2-audit-timeline")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, article.Title, fetched.Title)
	require.Equal(t, article.Blocks, fetched.Blocks)
	require.Equal(t, article.Tags, fetched.Tags)
	require.Equal(t, article.SEO, fetched.SEO)
	require.True(t, fetched.Featured)
}

func TestGetArticleMissingReturnsNil(t *testing.T) {
	store := newMemoryStore(t)

	fetched, err := store.GetArticle(context.Background(), "no-such-slug")
	require.NoError(t, err)
	require.Nil(t, fetched)
}

func TestUpsertArticlePreservesPublishedAt(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	article := sampleArticle("soc2-audit-timeline")
	article.PublishedAt = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpsertArticle(ctx, article))

	updated := sampleArticle("soc2-audit-timeline")
	updated.Title = "SOC 2 Audit Timeline, Revised"
	updated.PublishedAt = article.PublishedAt
	require.NoError(t, store.UpsertArticle(ctx, updated))

	fetched, err := store.GetArticle(ctx, "soc2-audit-timeline")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, "SOC 2 Audit Timeline, Revised", fetched.Title)
	require.Equal(t, article.PublishedAt, fetched.PublishedAt)
}

func TestListArticlesFilters(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	compliance := sampleArticle("soc2-audit-timeline")
	require.NoError(t, store.UpsertArticle(ctx, compliance))

	security := sampleArticle("pen-test-basics")
	security.Category = "security"
	security.Featured = false
	security.Tags = []string{"pentest"}
	require.NoError(t, store.UpsertArticle(ctx, security))

	byCategory, err := store.ListArticles(ctx, core.ArticleQuery{Category: "compliance"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	require.Equal(t, "soc2-audit-timeline", byCategory[0].Slug)

	featured, err := store.ListArticles(ctx, core.ArticleQuery{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	require.Equal(t, "soc2-audit-timeline", featured[0].Slug)

	byTag, err := store.ListArticles(ctx, core.ArticleQuery{Tag: "pentest"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	require.Equal(t, "pen-test-basics", byTag[0].Slug)

	all, err := store.ListArticles(ctx, core.ArticleQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestDeleteArticle(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertArticle(ctx, sampleArticle("soc2-audit-timeline")))

	deleted, err := store.DeleteArticle(ctx, "soc2-audit-timeline")
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = store.DeleteArticle(ctx, "soc2-audit-timeline")
	require.NoError(t, err)
	require.False(t, deleted)
}
