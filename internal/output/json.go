package output

import (
	"encoding/json"

	"github.com/draftmill/draftmill/internal/core"
)

// JSONFormatter renders output as JSON.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatArticleList renders articles as a JSON array.
func (f *JSONFormatter) FormatArticleList(articles []*core.Article) (string, error) {
	return f.marshal(articles)
}

// FormatArticle renders one article as JSON.
func (f *JSONFormatter) FormatArticle(article *core.Article) (string, error) {
	if article == nil {
		return "", nil
	}
	return f.marshal(article)
}

// FormatRateLimits renders persisted windows as a JSON array.
func (f *JSONFormatter) FormatRateLimits(states []core.RateLimitState) (string, error) {
	return f.marshal(states)
}
