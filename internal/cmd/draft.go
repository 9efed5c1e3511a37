package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftmill/draftmill/internal/observability"
	"github.com/draftmill/draftmill/internal/output"
	"github.com/draftmill/draftmill/internal/pipeline"
	"github.com/draftmill/draftmill/internal/provider/content"
	"github.com/draftmill/draftmill/internal/provider/forum"
	"github.com/draftmill/draftmill/internal/provider/research"
)

var (
	draftSlug     string
	draftCategory string
	draftAuthor   string
	draftTags     []string
	draftFeatured bool
	draftDryRun   bool
	draftOutput   string
	draftOut      string
	draftOutDir   string
)

var draftCmd = &cobra.Command{
	Use:   "draft <topic>",
	Short: "Research and draft an article for a topic",
	Long: `Research and draft an article for a topic.

The pipeline gathers keyword research and forum discussion for the topic,
asks the content provider for a structured draft, and stores the result.
Every provider call is scheduled through the per-service request throttle,
so concurrent drafts stay inside each service's budget.

Research and forum enrichment degrade gracefully; only the content draft
itself is fatal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.TrimSpace(strings.Join(args, " "))
		if topic == "" {
			return errors.New("topic is required")
		}

		format, err := output.ParseFormat(draftOutput)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		if cfg.Providers.Content.APIKey == "" {
			return errors.New("content provider API key is required (set providers.content.api_key in config, or the matching environment variable)")
		}

		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		limiter, persistWindows, err := buildLimiter(cmd.Context(), cfg, db, observability.CLILogger)
		if err != nil {
			return err
		}

		drafter := &pipeline.Drafter{
			Content: content.NewClient(cfg.Providers.Content.BaseURL, cfg.Providers.Content.APIKey, cfg.Providers.Content.Model),
			Limiter: limiter,
			Store:   db,
			Logger:  observability.CLILogger,
		}
		if cfg.Providers.Research.BaseURL != "" {
			drafter.Research = research.NewClient(cfg.Providers.Research.BaseURL, cfg.Providers.Research.APIKey)
		}
		if cfg.Providers.Forum.BaseURL != "" {
			drafter.Forum = forum.NewClient(cfg.Providers.Forum.BaseURL, cfg.Providers.Forum.UserAgent)
		}

		category := strings.TrimSpace(draftCategory)
		if category == "" {
			category = cfg.Pipeline.Category
		}
		author := strings.TrimSpace(draftAuthor)
		if author == "" {
			author = cfg.Pipeline.Author
		}

		result, draftErr := drafter.Draft(cmd.Context(), pipeline.Request{
			Topic:    topic,
			Slug:     strings.TrimSpace(draftSlug),
			Category: category,
			Author:   author,
			Tags:     draftTags,
			Featured: draftFeatured,
			DryRun:   draftDryRun,
		})

		// Windows are persisted even on failure; the budget was spent either way.
		if err := persistWindows(cmd.Context()); err != nil {
			observability.CLILogger.Warn("Failed to persist scheduler windows", zap.Error(err))
		}

		if draftErr != nil {
			return draftErr
		}

		outPath := strings.TrimSpace(draftOut)
		outDir := strings.TrimSpace(draftOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("%s.%s", sanitizeFilename(result.Article.Slug), outputExtension(format)))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		rendered, err := output.NewFormatter(format).FormatArticle(result.Article)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(sink.writer, rendered); err != nil {
			return err
		}

		if format == output.FormatTable {
			status := "stored"
			if !result.Stored {
				status = "not stored (dry run)"
			}
			note := ""
			if result.ResearchFellBack {
				note = ", research unavailable"
			}
			if _, err := fmt.Fprintf(sink.writer, "\nDrafted %q: %s%s\n", result.Article.Slug, status, note); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(draftCmd)

	draftCmd.Flags().StringVar(&draftSlug, "slug", "", "Override the derived article slug")
	draftCmd.Flags().StringVar(&draftCategory, "category", "", "Article category (default from config)")
	draftCmd.Flags().StringVar(&draftAuthor, "author", "", "Article author (default from config)")
	draftCmd.Flags().StringSliceVar(&draftTags, "tag", nil, "Article tag (repeatable)")
	draftCmd.Flags().BoolVar(&draftFeatured, "featured", false, "Mark the article as featured")
	draftCmd.Flags().BoolVar(&draftDryRun, "dry-run", false, "Draft without writing to the store")
	draftCmd.Flags().StringVar(&draftOutput, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	draftCmd.Flags().StringVar(&draftOut, "out", "", "Write output to a file (default stdout)")
	draftCmd.Flags().StringVar(&draftOutDir, "out-dir", "", "Write output to a directory")
}
