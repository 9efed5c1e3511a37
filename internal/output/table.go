package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/draftmill/draftmill/internal/core"
)

// TableFormatter renders output as ASCII tables.
type TableFormatter struct{}

// FormatArticleList renders a slug/title/category listing.
func (f *TableFormatter) FormatArticleList(articles []*core.Article) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Slug", "Title", "Category", "Featured", "Published"})

	for _, a := range articles {
		if a == nil {
			continue
		}
		featured := ""
		if a.Featured {
			featured = "yes"
		}
		t.AppendRow(table.Row{
			a.Slug,
			truncate(a.Title, 48),
			a.Category,
			featured,
			formatDate(a.PublishedAt),
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d article(s)", len(articles))})
	return t.Render(), nil
}

// FormatArticle renders the article metadata as a table plus the body as
// plain text.
func (f *TableFormatter) FormatArticle(article *core.Article) (string, error) {
	if article == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendRow(table.Row{"Slug", article.Slug})
	t.AppendRow(table.Row{"Title", article.Title})
	if article.Author != "" {
		t.AppendRow(table.Row{"Author", article.Author})
	}
	if article.Category != "" {
		t.AppendRow(table.Row{"Category", article.Category})
	}
	if len(article.Tags) > 0 {
		t.AppendRow(table.Row{"Tags", strings.Join(article.Tags, ", ")})
	}
	if article.Featured {
		t.AppendRow(table.Row{"Featured", "yes"})
	}
	t.AppendRow(table.Row{"Published", formatDate(article.PublishedAt)})
	t.AppendRow(table.Row{"Blocks", len(article.Blocks)})
	if len(article.SEO.Keywords) > 0 {
		t.AppendRow(table.Row{"Keywords", truncate(strings.Join(article.SEO.Keywords, ", "), 72)})
	}

	rendered := t.Render()
	if article.Excerpt != "" {
		rendered += "\n\n" + article.Excerpt
	}
	return rendered, nil
}

// FormatRateLimits renders persisted sliding windows per service.
func (f *TableFormatter) FormatRateLimits(states []core.RateLimitState) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Service", "In-Window Requests", "Oldest", "Updated"})

	for _, state := range states {
		oldest := ""
		if len(state.Timestamps) > 0 {
			oldest = formatTime(state.Timestamps[0])
		}
		t.AppendRow(table.Row{
			state.Service,
			len(state.Timestamps),
			oldest,
			formatTime(state.UpdatedAt),
		})
	}

	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d service(s)", len(states))})
	return t.Render(), nil
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format("2006-01-02")
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
