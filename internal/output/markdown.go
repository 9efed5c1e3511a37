package output

import (
	"fmt"
	"strings"

	"github.com/draftmill/draftmill/internal/core"
)

// MarkdownFormatter renders output as markdown. FormatArticle produces a full
// publishable document from the stored blocks.
type MarkdownFormatter struct{}

// FormatArticleList renders articles as a markdown table.
func (f *MarkdownFormatter) FormatArticleList(articles []*core.Article) (string, error) {
	var sb strings.Builder
	sb.WriteString("| Slug | Title | Category | Published |\n")
	sb.WriteString("|------|-------|----------|-----------|\n")

	for _, a := range articles {
		if a == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeMarkdownCell(a.Slug),
			escapeMarkdownCell(a.Title),
			escapeMarkdownCell(a.Category),
			formatDate(a.PublishedAt),
		))
	}

	return sb.String(), nil
}

// FormatArticle renders the stored blocks back into a markdown document.
func (f *MarkdownFormatter) FormatArticle(article *core.Article) (string, error) {
	if article == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("# " + article.Title + "\n")
	if article.Excerpt != "" {
		sb.WriteString("\n> " + article.Excerpt + "\n")
	}

	for _, block := range article.Blocks {
		sb.WriteString("\n")
		switch block.Type {
		case core.BlockTypeHeading:
			level := block.Level
			if level < 2 || level > 6 {
				level = 2
			}
			sb.WriteString(strings.Repeat("#", level) + " " + block.Text + "\n")
		case core.BlockTypeList:
			for _, item := range block.Items {
				sb.WriteString("- " + item + "\n")
			}
		case core.BlockTypeQuote:
			sb.WriteString("> " + block.Text + "\n")
		default:
			sb.WriteString(block.Text + "\n")
		}
	}

	if len(article.Tags) > 0 {
		sb.WriteString("\n---\nTags: " + strings.Join(article.Tags, ", ") + "\n")
	}

	return sb.String(), nil
}

// FormatRateLimits renders persisted windows as a markdown table.
func (f *MarkdownFormatter) FormatRateLimits(states []core.RateLimitState) (string, error) {
	var sb strings.Builder
	sb.WriteString("| Service | In-Window Requests | Updated |\n")
	sb.WriteString("|---------|--------------------|--------|\n")

	for _, state := range states {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n",
			escapeMarkdownCell(state.Service),
			len(state.Timestamps),
			formatTime(state.UpdatedAt),
		))
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
