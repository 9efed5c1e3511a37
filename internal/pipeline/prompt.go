package pipeline

import (
	"fmt"
	"strings"

	"github.com/draftmill/draftmill/internal/provider/forum"
	"github.com/draftmill/draftmill/internal/provider/research"
)

const draftSystemPrompt = `You are a compliance content writer producing accurate, practical articles for engineering and security teams. Respond with a single JSON object:
{
  "title": string,
  "excerpt": string (one or two sentences),
  "meta_title": string,
  "meta_description": string,
  "blocks": [
    {"type": "heading", "text": string, "level": 2 or 3},
    {"type": "paragraph", "text": string},
    {"type": "list", "items": [string]},
    {"type": "quote", "text": string}
  ]
}
End the article with an FAQ section answering the reader questions provided, when any are given. Do not invent statistics or cite sources you were not given.`

func buildDraftPrompt(topic string, report *research.Report, threads []forum.Thread) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write an in-depth article about: %s\n", topic)

	if report != nil && len(report.Keywords) > 0 {
		b.WriteString("\nTarget these search keywords where natural:\n")
		for _, kw := range report.Keywords {
			if kw.Volume > 0 {
				fmt.Fprintf(&b, "- %s (monthly searches: %d)\n", kw.Term, kw.Volume)
			} else {
				fmt.Fprintf(&b, "- %s\n", kw.Term)
			}
		}
	}

	if report != nil && len(report.Competitors) > 0 {
		b.WriteString("\nCompeting articles already rank for this topic; cover what they likely miss:\n")
		for _, competitor := range report.Competitors {
			fmt.Fprintf(&b, "- %s\n", competitor)
		}
	}

	if len(threads) > 0 {
		b.WriteString("\nReaders are asking these questions; answer them in the FAQ section:\n")
		for _, thread := range threads {
			title := strings.TrimSpace(thread.Title)
			if title == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s\n", title)
		}
	}

	return b.String()
}
