package core

import "time"

// BlockType identifies one kind of serialized content block.
type BlockType string

const (
	BlockTypeHeading   BlockType = "heading"
	BlockTypeParagraph BlockType = "paragraph"
	BlockTypeList      BlockType = "list"
	BlockTypeQuote     BlockType = "quote"
)

// Block is one unit of serialized article content.
type Block struct {
	Type  BlockType `json:"type"`
	Text  string    `json:"text,omitempty"`
	Level int       `json:"level,omitempty"`
	Items []string  `json:"items,omitempty"`
}

// SEOMeta carries the search metadata stored alongside an article.
type SEOMeta struct {
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Competitors     []string `json:"competitors,omitempty"`
}

// Article is a slug-addressed content record.
type Article struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Category    string    `json:"category,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Blocks      []Block   `json:"blocks"`
	Tags        []string  `json:"tags,omitempty"`
	Featured    bool      `json:"featured"`
	Image       string    `json:"image,omitempty"`
	SEO         SEOMeta   `json:"seo"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ArticleQuery filters article listings.
type ArticleQuery struct {
	Category     string
	FeaturedOnly bool
	Tag          string
	Limit        int
}
