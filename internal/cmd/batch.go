package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/draftmill/draftmill/internal/observability"
	"github.com/draftmill/draftmill/internal/pipeline"
	"github.com/draftmill/draftmill/internal/provider/content"
	"github.com/draftmill/draftmill/internal/provider/forum"
	"github.com/draftmill/draftmill/internal/provider/research"
)

// topicsFile is the YAML batch input. Example:
//
//	topics:
//	  - topic: How long does a SOC 2 audit take?
//	    category: compliance
//	    tags: [soc2, audit]
//	  - topic: Pen test scoping basics
//	    featured: true
type topicsFile struct {
	Topics []topicEntry `yaml:"topics"`
}

type topicEntry struct {
	Topic    string   `yaml:"topic"`
	Slug     string   `yaml:"slug"`
	Category string   `yaml:"category"`
	Author   string   `yaml:"author"`
	Tags     []string `yaml:"tags"`
	Featured bool     `yaml:"featured"`
}

var (
	batchDryRun         bool
	batchContinueOnFail bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <topics.yaml>",
	Short: "Draft articles for a batch of topics",
	Long: `Draft articles for every topic listed in a YAML file.

Topics are drafted sequentially; the per-service request scheduler paces the
underlying provider calls, so a large batch simply takes as long as the
budgets allow.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := readTopicsFile(args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("topics file contains no topics")
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

		var drafted, failed int
		for _, entry := range entries {
			category := strings.TrimSpace(entry.Category)
			if category == "" {
				category = cfg.Pipeline.Category
			}
			author := strings.TrimSpace(entry.Author)
			if author == "" {
				author = cfg.Pipeline.Author
			}

			result, err := drafter.Draft(cmd.Context(), pipeline.Request{
				Topic:    entry.Topic,
				Slug:     entry.Slug,
				Category: category,
				Author:   author,
				Tags:     entry.Tags,
				Featured: entry.Featured,
				DryRun:   batchDryRun,
			})
			if err != nil {
				failed++
				observability.CLILogger.Error("Batch draft failed",
					zap.String("topic", entry.Topic),
					zap.Error(err))
				if !batchContinueOnFail {
					if persistErr := persistWindows(cmd.Context()); persistErr != nil {
						observability.CLILogger.Warn("Failed to persist scheduler windows", zap.Error(persistErr))
					}
					return fmt.Errorf("draft %q: %w", entry.Topic, err)
				}
				continue
			}

			drafted++
			fmt.Printf("Drafted %s\n", result.Article.Slug)
		}

		if err := persistWindows(cmd.Context()); err != nil {
			observability.CLILogger.Warn("Failed to persist scheduler windows", zap.Error(err))
		}

		fmt.Printf("%d drafted, %d failed\n", drafted, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d topics failed", failed, len(entries))
		}
		return nil
	},
}

func readTopicsFile(path string) ([]topicEntry, error) {
	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}

	var parsed topicsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse topics file: %w", err)
	}

	entries := make([]topicEntry, 0, len(parsed.Topics))
	for _, entry := range parsed.Topics {
		entry.Topic = strings.TrimSpace(entry.Topic)
		if entry.Topic == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "Draft without writing to the store")
	batchCmd.Flags().BoolVar(&batchContinueOnFail, "continue-on-fail", false, "Keep drafting after a topic fails")
}
