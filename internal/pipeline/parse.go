package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/draftmill/draftmill/internal/core"
)

// draftPayload is the structured draft the content provider is asked for.
type draftPayload struct {
	Title           string       `json:"title"`
	Excerpt         string       `json:"excerpt"`
	MetaTitle       string       `json:"meta_title"`
	MetaDescription string       `json:"meta_description"`
	Blocks          []core.Block `json:"blocks"`
}

// parseDraft decodes the provider's JSON draft. Providers occasionally ignore
// the response-format instruction and return prose; when decoding fails or
// yields no blocks the raw text is split into paragraph blocks instead.
func parseDraft(topic, text string) *draftPayload {
	trimmed := strings.TrimSpace(text)
	trimmed = stripCodeFence(trimmed)

	var draft draftPayload
	if err := json.Unmarshal([]byte(trimmed), &draft); err == nil && len(draft.Blocks) > 0 {
		draft.Title = strings.TrimSpace(draft.Title)
		draft.Excerpt = strings.TrimSpace(draft.Excerpt)
		return &draft
	}

	return &draftPayload{
		Title:  topic,
		Blocks: paragraphBlocks(trimmed),
	}
}

func paragraphBlocks(text string) []core.Block {
	blocks := []core.Block{}
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		blocks = append(blocks, core.Block{Type: core.BlockTypeParagraph, Text: para})
	}
	return blocks
}

// stripCodeFence removes a surrounding markdown code fence, with or without a
// language tag.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
