package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/supplydesk/backend/internal/analysis"
	"github.com/supplydesk/backend/internal/config"
	"github.com/supplydesk/backend/internal/db"
	httpapi "github.com/supplydesk/backend/internal/http"
	"github.com/supplydesk/backend/internal/logging"
	"github.com/supplydesk/backend/internal/mongostore"
	"github.com/supplydesk/backend/internal/notify"
	"github.com/supplydesk/backend/internal/service"
)

// @title SupplyDesk Issue Analyzer
// @version 1.0
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, closer, err := logging.New(logging.Options{
		Service: "issue-analyzer",
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: cfg.Env == "dev",
	})
	if err != nil {
		panic(err)
	}
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}

type ticketSource interface {
	analysis.TicketSource
	Ping(ctx context.Context) error
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	var (
		source ticketSource
		runs   service.RunStore
	)

	if cfg.DatabaseURL != "" {
		store, err := db.Connect(ctx, cfg.DatabaseURL, cfg.ConnectTimeout, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		runs = store
		if cfg.TicketSource == config.SourcePostgres {
			source = store
		}
	}

	if cfg.TicketSource == config.SourceMongo {
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.ConnectTimeout, logger)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = store.Close(closeCtx)
		}()
		source = store
	}
	if runs == nil {
		logger.Warn().Msg("DATABASE_URL not set, analysis run log disabled")
	}

	var notifier notify.Publisher = notify.Nop{}
	if cfg.RedisAddr != "" {
		pub, err := notify.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisChannel)
		if err != nil {
			// Notifications are best effort.
			logger.Warn().Err(err).Msg("redis unavailable, notifications disabled")
		} else {
			notifier = pub
		}
	}
	defer notifier.Close()

	svc := &service.AnalysisService{
		Analyzer: &analysis.Analyzer{
			Source:     source,
			Logger:     logger,
			WindowDays: cfg.AnalysisWindowDays,
			RecentDays: cfg.RecentWindowDays,
		},
		Runs:     runs,
		Notifier: notifier,
		Logger:   logger,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.Router(cfg, svc, source, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("port", cfg.Port).Str("source", cfg.TicketSource).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

