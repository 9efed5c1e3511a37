package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/draftmill/draftmill/internal/core"
)

func sampleArticles() []*core.Article {
	return []*core.Article{
		{
			Slug:     "soc2-audit-timeline",
			Title:    "How Long Does a SOC 2 Audit Take?",
			Category: "compliance",
			Excerpt:  "A realistic timeline.",
			Featured: true,
			Tags:     []string{"soc2", "audit"},
			Blocks: []core.Block{
				{Type: core.BlockTypeHeading, Text: "Timeline", Level: 2},
				{Type: core.BlockTypeParagraph, Text: "Most audits take months."},
				{Type: core.BlockTypeList, Items: []string{"Scoping", "Evidence"}},
				{Type: core.BlockTypeQuote, Text: "Plan early."},
			},
			PublishedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			Slug:        "pen-test-basics",
			Title:       "Pen Test Basics",
			Category:    "security",
			PublishedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestTableFormatterArticleList(t *testing.T) {
	rendered, err := (&TableFormatter{}).FormatArticleList(sampleArticles())
	require.NoError(t, err)
	require.Contains(t, rendered, "soc2-audit-timeline")
	require.Contains(t, rendered, "pen-test-basics")
	// go-pretty uppercases footer cells.
	require.Contains(t, rendered, "2 ARTICLE(S)")
}

func TestTableFormatterArticle(t *testing.T) {
	rendered, err := (&TableFormatter{}).FormatArticle(sampleArticles()[0])
	require.NoError(t, err)
	require.Contains(t, rendered, "How Long Does a SOC 2 Audit Take?")
	require.Contains(t, rendered, "soc2, audit")
	require.Contains(t, rendered, "A realistic timeline.")
}

func TestJSONFormatterArticleList(t *testing.T) {
	rendered, err := (&JSONFormatter{Indent: true}).FormatArticleList(sampleArticles())
	require.NoError(t, err)
	require.Contains(t, rendered, "\"slug\": \"soc2-audit-timeline\"")

	var decoded []*core.Article
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Len(t, decoded, 2)
}

func TestMarkdownFormatterArticleDocument(t *testing.T) {
	rendered, err := (&MarkdownFormatter{}).FormatArticle(sampleArticles()[0])
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rendered, "# How Long Does a SOC 2 Audit Take?"))
	require.Contains(t, rendered, "## Timeline")
	require.Contains(t, rendered, "- Scoping")
	require.Contains(t, rendered, "> Plan early.")
	require.Contains(t, rendered, "Tags: soc2, audit")
}

func TestFormatRateLimits(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	states := []core.RateLimitState{
		{Service: "content", Timestamps: []time.Time{now.Add(-time.Minute), now}, UpdatedAt: now},
		{Service: "forum", UpdatedAt: now},
	}

	rendered, err := (&TableFormatter{}).FormatRateLimits(states)
	require.NoError(t, err)
	require.Contains(t, rendered, "content")
	require.Contains(t, rendered, "2 SERVICE(S)")

	rendered, err = (&MarkdownFormatter{}).FormatRateLimits(states)
	require.NoError(t, err)
	require.Contains(t, rendered, "| content | 2 |")
}
