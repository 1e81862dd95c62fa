package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/supplydesk/backend/internal/analysis"
	"github.com/supplydesk/backend/internal/config"
	"github.com/supplydesk/backend/internal/dataset"
	"github.com/supplydesk/backend/internal/db"
	"github.com/supplydesk/backend/internal/logging"
	"github.com/supplydesk/backend/internal/mongostore"
)

var (
	// Version is set at build time via ldflags.
	Version = "dev"
)

type app struct {
	envFile string
	verbose bool

	cfg    config.Config
	logger zerolog.Logger
	closer io.Closer
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	a := &app{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "issuectl",
		Short:         "issuectl analyzes support tickets for systemic supply chain issues",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closer != nil {
				_ = a.closer.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAnalyzeCmd(a),
		newTriageCmd(a),
		newCategorizeCmd(a),
		newImportCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}
	cfg, err := config.LoadFile(a.envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	logger, closer, err := logging.New(logging.Options{
		Service: "issuectl",
		Level:   level,
		File:    cfg.LogFile,
		Out:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.closer = closer
	return nil
}

// openSource returns the spreadsheet at path as an in-memory source, or the
// configured ticket store when path is empty.
func (a *app) openSource(ctx context.Context, path string) (analysis.TicketSource, func(), error) {
	if path != "" {
		tickets, rowErrs, err := dataset.LoadTickets(path)
		if err != nil {
			return nil, nil, err
		}
		a.logRowErrors(path, rowErrs)
		a.logger.Debug().Str("file", path).Int("tickets", len(tickets)).Msg("loaded tickets")
		return analysis.StaticSource(tickets), func() {}, nil
	}

	switch a.cfg.TicketSource {
	case config.SourceMongo:
		if a.cfg.MongoURI == "" {
			return nil, nil, errors.New("MONGO_URI is not set; pass --tickets to analyze a spreadsheet")
		}
		store, err := mongostore.Connect(ctx, a.cfg.MongoURI, a.cfg.MongoDatabase, a.cfg.ConnectTimeout, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = store.Close(closeCtx)
		}, nil
	default:
		if a.cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is not set; pass --tickets to analyze a spreadsheet")
		}
		store, err := db.Connect(ctx, a.cfg.DatabaseURL, a.cfg.ConnectTimeout, a.logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
}

func (a *app) logRowErrors(path string, rowErrs []dataset.RowError) {
	for _, re := range rowErrs {
		a.logger.Warn().Str("file", path).Int("row", re.Row).Err(re.Err).Msg("skipped row")
	}
}

func (a *app) analyzer(src analysis.TicketSource, windowDays int, asOf string) (*analysis.Analyzer, error) {
	an := &analysis.Analyzer{
		Source:     src,
		Logger:     a.logger,
		WindowDays: a.cfg.AnalysisWindowDays,
		RecentDays: a.cfg.RecentWindowDays,
	}
	if windowDays > 0 {
		an.WindowDays = windowDays
	}
	if asOf != "" {
		at, err := time.Parse(time.RFC3339, asOf)
		if err != nil {
			return nil, fmt.Errorf("invalid --as-of: %w", err)
		}
		at = at.UTC()
		an.Now = func() time.Time { return at }
	}
	return an, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
