package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/supplydesk/backend/internal/analysis"
	"github.com/supplydesk/backend/internal/service"
)

func newCategorizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categorize <text>...",
		Short: "Print the category a ticket text falls into",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := &service.AnalysisService{
				Analyzer: &analysis.Analyzer{Logger: a.logger},
				Logger:   a.logger,
			}
			return printJSON(cmd.OutOrStdout(), svc.Categorize(strings.Join(args, " "), ""))
		},
	}
}
