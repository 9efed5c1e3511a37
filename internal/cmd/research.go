package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftmill/draftmill/internal/observability"
	"github.com/draftmill/draftmill/internal/output"
	"github.com/draftmill/draftmill/internal/provider/research"
	"github.com/draftmill/draftmill/internal/throttle"
)

var (
	researchLimit  int
	researchOutput string
)

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Fetch a keyword research report",
	Long: `Fetch keyword and competitor data for a query from the research
provider. The call is scheduled through the research service's request
budget, like any pipeline call.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return errors.New("query is required")
		}

		format, err := output.ParseFormat(researchOutput)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		if cfg.Providers.Research.BaseURL == "" {
			return errors.New("research provider is not configured (set providers.research.base_url)")
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

		client := research.NewClient(cfg.Providers.Research.BaseURL, cfg.Providers.Research.APIKey)
		value, reportErr := limiter.Execute(cmd.Context(), throttle.ServiceResearch, func(ctx context.Context) (any, error) {
			return client.KeywordReport(ctx, query, researchLimit)
		})

		// Windows are persisted even on failure; the budget was spent either way.
		if err := persistWindows(cmd.Context()); err != nil {
			observability.CLILogger.Warn("Failed to persist scheduler windows", zap.Error(err))
		}

		if reportErr != nil {
			return reportErr
		}
		report, ok := value.(*research.Report)
		if !ok || report == nil {
			return errors.New("research provider returned no report")
		}

		if format == output.FormatJSON {
			rendered, err := marshalKeywordReport(report)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		}

		fmt.Println(renderKeywordReport(report))
		return nil
	},
}

func renderKeywordReport(report *research.Report) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Keyword", "Volume", "Difficulty"})
	for _, kw := range report.Keywords {
		t.AppendRow(table.Row{kw.Term, kw.Volume, fmt.Sprintf("%.1f", kw.Difficulty)})
	}
	rendered := t.Render()
	if len(report.Competitors) > 0 {
		rendered += "\n\nCompetitors: " + strings.Join(report.Competitors, ", ")
	}
	return rendered
}

func marshalKeywordReport(report *research.Report) (string, error) {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().IntVar(&researchLimit, "limit", 10, "Maximum keywords to return")
	researchCmd.Flags().StringVar(&researchOutput, "output-format", string(output.FormatTable), "Output format: table|json")
}
