package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/draftmill/draftmill/internal/core"
	"github.com/draftmill/draftmill/internal/output"
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Inspect and manage stored articles",
}

var (
	articlesListCategory string
	articlesListTag      string
	articlesListFeatured bool
	articlesListLimit    int
	articlesListOutput   string
	articlesListOut      string
	articlesListOutDir   string
)

var articlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(articlesListOutput)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		articles, err := db.ListArticles(cmd.Context(), core.ArticleQuery{
			Category:     strings.TrimSpace(articlesListCategory),
			Tag:          strings.TrimSpace(articlesListTag),
			FeaturedOnly: articlesListFeatured,
			Limit:        articlesListLimit,
		})
		if err != nil {
			return err
		}

		outPath := strings.TrimSpace(articlesListOut)
		outDir := strings.TrimSpace(articlesListOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("articles.list.%s", outputExtension(format)))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		rendered, err := output.NewFormatter(format).FormatArticleList(articles)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

var (
	articlesShowOutput string
	articlesShowOut    string
	articlesShowOutDir string
)

var articlesShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show one stored article",
	Long: `Show one stored article by slug. With --output-format markdown the
stored blocks are rendered back into a full markdown document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := strings.TrimSpace(args[0])
		if slug == "" {
			return errors.New("slug is required")
		}

		format, err := output.ParseFormat(articlesShowOutput)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		article, err := db.GetArticle(cmd.Context(), slug)
		if err != nil {
			return err
		}
		if article == nil {
			return fmt.Errorf("article not found: %s", slug)
		}

		outPath := strings.TrimSpace(articlesShowOut)
		outDir := strings.TrimSpace(articlesShowOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("%s.%s", sanitizeFilename(slug), outputExtension(format)))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		rendered, err := output.NewFormatter(format).FormatArticle(article)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

var articlesDeleteYes bool

var articlesDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete one stored article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slug := strings.TrimSpace(args[0])
		if slug == "" {
			return errors.New("slug is required")
		}
		if !articlesDeleteYes {
			return errors.New("delete requires --yes")
		}

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		deleted, err := db.DeleteArticle(cmd.Context(), slug)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("article not found: %s", slug)
		}

		fmt.Printf("Deleted %s\n", slug)
		return nil
	},
}

func init() {
	articlesListCmd.Flags().StringVar(&articlesListCategory, "category", "", "Filter by category")
	articlesListCmd.Flags().StringVar(&articlesListTag, "tag", "", "Filter by tag")
	articlesListCmd.Flags().BoolVar(&articlesListFeatured, "featured", false, "Only featured articles")
	articlesListCmd.Flags().IntVar(&articlesListLimit, "limit", 0, "Maximum articles to return (0 = no limit)")
	articlesListCmd.Flags().StringVar(&articlesListOutput, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	articlesListCmd.Flags().StringVar(&articlesListOut, "out", "", "Write output to a file (default stdout)")
	articlesListCmd.Flags().StringVar(&articlesListOutDir, "out-dir", "", "Write output to a directory")

	articlesShowCmd.Flags().StringVar(&articlesShowOutput, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	articlesShowCmd.Flags().StringVar(&articlesShowOut, "out", "", "Write output to a file (default stdout)")
	articlesShowCmd.Flags().StringVar(&articlesShowOutDir, "out-dir", "", "Write output to a directory")

	articlesDeleteCmd.Flags().BoolVar(&articlesDeleteYes, "yes", false, "Confirm deletion")

	articlesCmd.AddCommand(articlesListCmd)
	articlesCmd.AddCommand(articlesShowCmd)
	articlesCmd.AddCommand(articlesDeleteCmd)
	rootCmd.AddCommand(articlesCmd)
}
