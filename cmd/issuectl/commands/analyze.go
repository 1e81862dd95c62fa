package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/supplydesk/backend/internal/export"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		tickets    string
		xlsxOut    string
		windowDays int
		asOf       string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the ticket window and print the JSON report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, closeSrc, err := a.openSource(ctx, tickets)
			if err != nil {
				return err
			}
			defer closeSrc()

			an, err := a.analyzer(src, windowDays, asOf)
			if err != nil {
				return err
			}
			report, err := an.AnalyzeAllTickets(ctx)
			if err != nil {
				return err
			}

			if xlsxOut != "" {
				f, err := os.Create(xlsxOut)
				if err != nil {
					return fmt.Errorf("create %s: %w", xlsxOut, err)
				}
				if err := export.WriteReport(f, report); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				a.logger.Info().Str("file", xlsxOut).Int("issues", len(report.Issues)).Msg("report written")
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&tickets, "tickets", "", "xlsx workbook of tickets to analyze instead of the configured store")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "also write the report to this xlsx file")
	cmd.Flags().IntVar(&windowDays, "window-days", 0, "analysis window in days (default ANALYSIS_WINDOW_DAYS)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "analysis time as RFC3339 (default now)")
	return cmd
}
