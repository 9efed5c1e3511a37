package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/draftmill/draftmill/internal/core/store"
	"github.com/draftmill/draftmill/internal/output"
)

var (
	rateLimitListOutput  string
	rateLimitListOut     string
	rateLimitListOutDir  string
	rateLimitListAll     bool
	rateLimitListService string
	rateLimitListPrefix  string
)

var rateLimitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted scheduler windows",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(rateLimitListOutput)
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

		query := store.RateLimitQuery{
			All:     rateLimitListAll,
			Service: strings.TrimSpace(rateLimitListService),
			Prefix:  strings.TrimSpace(rateLimitListPrefix),
		}
		if !query.All && query.Service == "" && query.Prefix == "" {
			query.All = true
		}

		states, err := db.ListRateLimits(cmd.Context(), query)
		if err != nil {
			return err
		}

		outPath := strings.TrimSpace(rateLimitListOut)
		outDir := strings.TrimSpace(rateLimitListOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}

		ext := outputExtension(format)
		if outDir != "" {
			var err error
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("rate-limit.list.%s", ext))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if len(states) == 0 && format == output.FormatTable {
			_, _ = fmt.Fprint(sink.writer, ascii.DrawBox("Rate Limits\n\n(no persisted scheduler windows)", 0))
			return nil
		}

		rendered, err := output.NewFormatter(format).FormatRateLimits(states)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(sink.writer, rendered)
		return err
	},
}

func init() {
	rateLimitListCmd.Flags().StringVar(&rateLimitListOutput, "output-format", string(output.FormatTable), "Output format: table|json|markdown")
	rateLimitListCmd.Flags().StringVar(&rateLimitListOut, "out", "", "Write output to a file (default stdout)")
	rateLimitListCmd.Flags().StringVar(&rateLimitListOutDir, "out-dir", "", "Write output to a directory")
	rateLimitListCmd.Flags().BoolVar(&rateLimitListAll, "all", false, "List all services")
	rateLimitListCmd.Flags().StringVar(&rateLimitListService, "service", "", "List a single service (exact match)")
	rateLimitListCmd.Flags().StringVar(&rateLimitListPrefix, "prefix", "", "List services with matching prefix")
}
