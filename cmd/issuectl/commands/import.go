package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/supplydesk/backend/internal/config"
	"github.com/supplydesk/backend/internal/dataset"
	"github.com/supplydesk/backend/internal/db"
	"github.com/supplydesk/backend/internal/mongostore"
)

func newImportCmd(a *app) *cobra.Command {
	var tickets string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a ticket spreadsheet into the configured ticket store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, rowErrs, err := dataset.LoadTickets(tickets)
			if err != nil {
				return err
			}
			a.logRowErrors(tickets, rowErrs)
			if len(loaded) == 0 {
				return errors.New("no valid tickets in " + tickets)
			}

			ctx := cmd.Context()
			var n int64
			switch a.cfg.TicketSource {
			case config.SourceMongo:
				if a.cfg.MongoURI == "" {
					return errors.New("MONGO_URI is not set")
				}
				store, err := mongostore.Connect(ctx, a.cfg.MongoURI, a.cfg.MongoDatabase, a.cfg.ConnectTimeout, a.logger)
				if err != nil {
					return err
				}
				defer store.Close(ctx)
				if n, err = store.UpsertTickets(ctx, loaded); err != nil {
					return err
				}
			default:
				if a.cfg.DatabaseURL == "" {
					return errors.New("DATABASE_URL is not set")
				}
				store, err := db.Connect(ctx, a.cfg.DatabaseURL, a.cfg.ConnectTimeout, a.logger)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Migrate(ctx); err != nil {
					return err
				}
				if n, err = store.ImportTickets(ctx, loaded); err != nil {
					return err
				}
			}

			a.logger.Info().
				Str("file", tickets).
				Str("source", a.cfg.TicketSource).
				Int64("imported", n).
				Int("skipped", len(rowErrs)).
				Msg("import complete")
			return printJSON(cmd.OutOrStdout(), map[string]any{"imported": n, "skipped": len(rowErrs)})
		},
	}
	cmd.Flags().StringVar(&tickets, "tickets", "", "xlsx workbook of tickets")
	_ = cmd.MarkFlagRequired("tickets")
	return cmd
}
