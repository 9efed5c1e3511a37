// Package pipeline turns a topic into a stored article. A draft run gathers
// keyword research and forum discussion for the topic, asks the content
// provider for a structured draft, and upserts the result. Every provider call
// goes through the shared throttle so concurrent runs stay inside each
// service's request budget.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/draftmill/draftmill/internal/core"
	"github.com/draftmill/draftmill/internal/metrics"
	"github.com/draftmill/draftmill/internal/provider/content"
	"github.com/draftmill/draftmill/internal/provider/forum"
	"github.com/draftmill/draftmill/internal/provider/research"
	"github.com/draftmill/draftmill/internal/throttle"
)

const (
	defaultCategory    = "compliance"
	defaultAuthor      = "Draftmill"
	keywordReportLimit = 10
	forumThreadLimit   = 5
	draftTemperature   = 0.4
	draftMaxTokens     = 4096
)

// ArticleStore is the subset of the store the pipeline writes to.
type ArticleStore interface {
	UpsertArticle(ctx context.Context, article *core.Article) error
}

// Drafter orchestrates one article draft end to end.
type Drafter struct {
	Content  *content.Client
	Research *research.Client
	Forum    *forum.Client
	Limiter  *throttle.Limiter
	Store    ArticleStore
	Logger   *logging.Logger
}

// Request describes the article to draft.
type Request struct {
	Topic    string
	Slug     string
	Category string
	Author   string
	Tags     []string
	Featured bool
	// DryRun skips the store write and just returns the drafted article.
	DryRun bool
}

// Result is the drafted article plus run metadata.
type Result struct {
	Article          *core.Article
	ResearchFellBack bool
	ForumThreads     int
	Stored           bool
}

// Draft researches, drafts, and stores one article. Research and forum
// enrichment degrade gracefully; only the content draft itself is fatal.
func (d *Drafter) Draft(ctx context.Context, req Request) (*Result, error) {
	if d == nil || d.Content == nil || d.Limiter == nil {
		return nil, errors.New("drafter is not configured")
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, errors.New("topic is required")
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCategory
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = defaultAuthor
	}

	report, fellBack := d.research(ctx, topic)
	threads := d.forumThreads(ctx, topic)

	draft, err := d.draftBody(ctx, topic, report, threads)
	if err != nil {
		metrics.RecordProviderCall(throttle.ServiceContent, false)
		metrics.RecordArticleDrafted(category, false)
		return nil, fmt.Errorf("draft article body: %w", err)
	}
	metrics.RecordProviderCall(throttle.ServiceContent, true)

	article := assembleArticle(topic, draft, report)
	article.Category = category
	article.Author = author
	article.Tags = req.Tags
	article.Featured = req.Featured
	if slug := strings.TrimSpace(req.Slug); slug != "" {
		article.Slug = slug
	}

	result := &Result{
		Article:          article,
		ResearchFellBack: fellBack,
		ForumThreads:     len(threads),
	}

	if !req.DryRun && d.Store != nil {
		if err := d.Store.UpsertArticle(ctx, article); err != nil {
			metrics.RecordArticleDrafted(category, false)
			return nil, fmt.Errorf("store drafted article: %w", err)
		}
		result.Stored = true
	}

	metrics.RecordArticleDrafted(category, true)
	if d.Logger != nil {
		d.Logger.Info("Article drafted",
			zap.String("slug", article.Slug),
			zap.String("category", category),
			zap.Bool("research_fallback", fellBack),
			zap.Int("forum_threads", len(threads)),
			zap.Bool("stored", result.Stored))
	}

	return result, nil
}

// research fetches the keyword report through the throttle. A failed report is
// replaced with a minimal one built from the topic itself so a research outage
// never blocks drafting.
func (d *Drafter) research(ctx context.Context, topic string) (*research.Report, bool) {
	if d.Research == nil {
		return fallbackReport(topic), true
	}

	value, err := d.Limiter.Execute(ctx, throttle.ServiceResearch, func(ctx context.Context) (any, error) {
		return d.Research.KeywordReport(ctx, topic, keywordReportLimit)
	})
	if err != nil {
		metrics.RecordProviderCall(throttle.ServiceResearch, false)
		metrics.RecordResearchFallback()
		if d.Logger != nil {
			d.Logger.Warn("Keyword research failed, drafting without it",
				zap.String("topic", topic),
				zap.Error(err))
		}
		return fallbackReport(topic), true
	}

	metrics.RecordProviderCall(throttle.ServiceResearch, true)
	report, ok := value.(*research.Report)
	if !ok || report == nil {
		return fallbackReport(topic), true
	}
	return report, false
}

// forumThreads fetches discussion threads through the throttle. Failures are
// non-fatal; the draft simply ships without a FAQ seed.
func (d *Drafter) forumThreads(ctx context.Context, topic string) []forum.Thread {
	if d.Forum == nil {
		return nil
	}

	value, err := d.Limiter.Execute(ctx, throttle.ServiceForum, func(ctx context.Context) (any, error) {
		return d.Forum.SearchThreads(ctx, topic, forumThreadLimit)
	})
	if err != nil {
		metrics.RecordProviderCall(throttle.ServiceForum, false)
		if d.Logger != nil {
			d.Logger.Warn("Forum search failed, drafting without FAQ seed",
				zap.String("topic", topic),
				zap.Error(err))
		}
		return nil
	}

	metrics.RecordProviderCall(throttle.ServiceForum, true)
	threads, _ := value.([]forum.Thread)
	return threads
}

func (d *Drafter) draftBody(ctx context.Context, topic string, report *research.Report, threads []forum.Thread) (*draftPayload, error) {
	temperature := draftTemperature
	maxTokens := draftMaxTokens

	value, err := d.Limiter.Execute(ctx, throttle.ServiceContent, func(ctx context.Context) (any, error) {
		return d.Content.Complete(ctx, &content.Request{
			System:       draftSystemPrompt,
			Prompt:       buildDraftPrompt(topic, report, threads),
			Temperature:  &temperature,
			MaxTokens:    &maxTokens,
			JSONResponse: true,
		})
	})
	if err != nil {
		return nil, err
	}

	resp, ok := value.(*content.Response)
	if !ok || resp == nil {
		return nil, errors.New("content provider returned no response")
	}

	return parseDraft(topic, resp.Text), nil
}

func assembleArticle(topic string, draft *draftPayload, report *research.Report) *core.Article {
	article := &core.Article{
		Title:   draft.Title,
		Excerpt: draft.Excerpt,
		Blocks:  draft.Blocks,
		SEO: core.SEOMeta{
			MetaTitle:       draft.MetaTitle,
			MetaDescription: draft.MetaDescription,
		},
	}
	if article.Title == "" {
		article.Title = topic
	}
	if article.SEO.MetaTitle == "" {
		article.SEO.MetaTitle = article.Title
	}
	if article.SEO.MetaDescription == "" {
		article.SEO.MetaDescription = article.Excerpt
	}
	if report != nil {
		for _, kw := range report.Keywords {
			article.SEO.Keywords = append(article.SEO.Keywords, kw.Term)
		}
		article.SEO.Competitors = report.Competitors
	}
	article.Slug = Slugify(article.Title)
	return article
}

func fallbackReport(topic string) *research.Report {
	return &research.Report{
		Query:    topic,
		Keywords: []research.Keyword{{Term: topic}},
	}
}
