package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/draftmill/draftmill/internal/core"
)

// UpsertArticle inserts or replaces an article by slug. PublishedAt is
// preserved across updates when already set; UpdatedAt always moves forward.
func (s *Store) UpsertArticle(ctx context.Context, article *core.Article) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if article == nil {
		return errors.New("article is required")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	slug := strings.TrimSpace(article.Slug)
	if slug == "" {
		return errors.New("article slug is required")
	}
	if strings.TrimSpace(article.Title) == "" {
		return errors.New("article title is required")
	}

	now := time.Now().UTC()
	if article.PublishedAt.IsZero() {
		article.PublishedAt = now
	}
	article.UpdatedAt = now

	blocksJSON, err := json.Marshal(article.Blocks)
	if err != nil {
		return fmt.Errorf("encode article blocks: %w", err)
	}
	tagsJSON, err := json.Marshal(article.Tags)
	if err != nil {
		return fmt.Errorf("encode article tags: %w", err)
	}
	seoJSON, err := json.Marshal(article.SEO)
	if err != nil {
		return fmt.Errorf("encode article seo: %w", err)
	}

	featured := 0
	if article.Featured {
		featured = 1
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO articles (slug, title, author, category, excerpt, blocks, tags, featured, image, seo, published_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			category = excluded.category,
			excerpt = excluded.excerpt,
			blocks = excluded.blocks,
			tags = excluded.tags,
			featured = excluded.featured,
			image = excluded.image,
			seo = excluded.seo,
			updated_at = excluded.updated_at
	`, slug, article.Title, article.Author, article.Category, article.Excerpt,
		string(blocksJSON), string(tagsJSON), featured, article.Image, string(seoJSON),
		article.PublishedAt.UTC().Unix(), article.UpdatedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store article: %w", err)
	}

	return nil
}

// GetArticle returns the article for a slug, or nil when absent.
func (s *Store) GetArticle(ctx context.Context, slug string) (*core.Article, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.New("slug is required")
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT slug, title, author, category, excerpt, blocks, tags, featured, image, seo, published_at, updated_at
		FROM articles
		WHERE slug = ?
	`, slug)

	article, err := scanArticle(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch article: %w", err)
	}
	return article, nil
}

// ListArticles returns articles matching the query, newest first.
func (s *Store) ListArticles(ctx context.Context, q core.ArticleQuery) ([]*core.Article, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		clauses []string
		args    []any
	)
	if category := strings.TrimSpace(q.Category); category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, category)
	}
	if q.FeaturedOnly {
		clauses = append(clauses, "featured = 1")
	}

	query := `
		SELECT slug, title, author, category, excerpt, blocks, tags, featured, image, seo, published_at, updated_at
		FROM articles
	`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY published_at DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	articles := []*core.Article{}
	for rows.Next() {
		article, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		// Tag filtering happens in memory; tags are stored as JSON.
		if tag := strings.TrimSpace(q.Tag); tag != "" && !hasTag(article, tag) {
			continue
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return articles, nil
}

// DeleteArticle removes an article by slug, reporting whether a row existed.
func (s *Store) DeleteArticle(ctx context.Context, slug string) (bool, error) {
	if s == nil || s.DB == nil {
		return false, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return false, errors.New("slug is required")
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM articles WHERE slug = ?`, slug)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	return affected > 0, nil
}

func scanArticle(scan func(dest ...any) error) (*core.Article, error) {
	var (
		article     core.Article
		author      sql.NullString
		category    sql.NullString
		excerpt     sql.NullString
		blocksJSON  string
		tagsJSON    sql.NullString
		featured    int
		image       sql.NullString
		seoJSON     sql.NullString
		publishedAt int64
		updatedAt   int64
	)

	if err := scan(&article.Slug, &article.Title, &author, &category, &excerpt,
		&blocksJSON, &tagsJSON, &featured, &image, &seoJSON, &publishedAt, &updatedAt); err != nil {
		return nil, err
	}

	article.Author = author.String
	article.Category = category.String
	article.Excerpt = excerpt.String
	article.Featured = featured != 0
	article.Image = image.String
	article.PublishedAt = time.Unix(publishedAt, 0).UTC()
	article.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if err := json.Unmarshal([]byte(blocksJSON), &article.Blocks); err != nil {
		return nil, fmt.Errorf("decode article blocks: %w", err)
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &article.Tags); err != nil {
			return nil, fmt.Errorf("decode article tags: %w", err)
		}
	}
	if seoJSON.Valid && seoJSON.String != "" {
		if err := json.Unmarshal([]byte(seoJSON.String), &article.SEO); err != nil {
			return nil, fmt.Errorf("decode article seo: %w", err)
		}
	}

	return &article, nil
}

func hasTag(article *core.Article, tag string) bool {
	for _, t := range article.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
