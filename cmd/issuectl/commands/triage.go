package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/supplydesk/backend/internal/models"
)

func newTriageCmd(a *app) *cobra.Command {
	var (
		ticketPath string
		tickets    string
		asOf       string
	)
	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Relate a new ticket to the issues in the current window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTicket(cmd.InOrStdin(), ticketPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			src, closeSrc, err := a.openSource(ctx, tickets)
			if err != nil {
				return err
			}
			defer closeSrc()

			an, err := a.analyzer(src, 0, asOf)
			if err != nil {
				return err
			}
			if t.CreatedAt.IsZero() {
				t.CreatedAt = time.Now().UTC()
				if an.Now != nil {
					t.CreatedAt = an.Now()
				}
			}
			res, err := an.DetectIssuesForNewTicket(ctx, t)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&ticketPath, "ticket", "", `ticket JSON file, or "-" for stdin`)
	cmd.Flags().StringVar(&tickets, "tickets", "", "xlsx workbook of tickets to compare against instead of the configured store")
	cmd.Flags().StringVar(&asOf, "as-of", "", "analysis time as RFC3339 (default now)")
	_ = cmd.MarkFlagRequired("ticket")
	return cmd
}

func readTicket(stdin io.Reader, path string) (models.Ticket, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return models.Ticket{}, err
		}
		defer f.Close()
		r = f
	}

	var t models.Ticket
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return models.Ticket{}, fmt.Errorf("decode ticket: %w", err)
	}
	if err := validator.New().Struct(t); err != nil {
		return models.Ticket{}, fmt.Errorf("invalid ticket: %w", err)
	}
	return t, nil
}
