package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/supplydesk/backend/internal/models"
)

//go:embed schema.sql
var schemaSQL string

var ErrNotFound = errors.New("not found")

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

// Connect opens the pool and pings it with exponential backoff until it
// answers or maxWait elapses.
func Connect(ctx context.Context, databaseURL string, maxWait time.Duration, logger zerolog.Logger) (*Store, error) {
	store, err := New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxWait
	attempt := 0
	op := func() error {
		attempt++
		if err := store.Ping(ctx); err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("postgres not ready")
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		store.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return store, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// Migrate creates the tables the service reads and writes. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaSQL)
	return err
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FindTicketsCreatedSince returns tickets created at or after since, oldest
// first, with their customer when one is linked.
func (s *Store) FindTicketsCreatedSince(ctx context.Context, since time.Time) ([]models.Ticket, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT t.id, t.subject, t.description, t.priority, t.status, t.category, t.created_at,
		       c.email, c.tier
		FROM tickets t
		LEFT JOIN customers c ON c.id = t.customer_id
		WHERE t.created_at >= $1
		ORDER BY t.created_at ASC, t.id ASC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ticket
	for rows.Next() {
		var (
			t     models.Ticket
			email *string
			tier  *string
		)
		if err := rows.Scan(&t.ID, &t.Subject, &t.Description, &t.Priority, &t.Status, &t.Category, &t.CreatedAt, &email, &tier); err != nil {
			return nil, err
		}
		if email != nil {
			t.Customer = &models.Customer{Email: *email, Tier: models.Tier(derefString(tier))}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ImportTickets upserts the tickets' customers and bulk-copies the tickets in
// one transaction. Customers are keyed by lowercased email.
func (s *Store) ImportTickets(ctx context.Context, tickets []models.Ticket) (int64, error) {
	var copied int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		customerIDs := map[string]int64{}
		for _, t := range tickets {
			if t.Customer == nil || t.Customer.Email == "" {
				continue
			}
			if _, ok := customerIDs[t.Customer.Email]; ok {
				continue
			}
			var id int64
			err := tx.QueryRow(ctx, `
				INSERT INTO customers (email, tier) VALUES (lower($1), $2)
				ON CONFLICT (email) DO UPDATE SET tier = EXCLUDED.tier
				RETURNING id
			`, t.Customer.Email, string(t.Customer.Tier)).Scan(&id)
			if err != nil {
				return fmt.Errorf("upsert customer %s: %w", t.Customer.Email, err)
			}
			customerIDs[t.Customer.Email] = id
		}

		rows := make([][]any, 0, len(tickets))
		for _, t := range tickets {
			var customerID *int64
			if t.Customer != nil {
				if id, ok := customerIDs[t.Customer.Email]; ok {
					customerID = &id
				}
			}
			rows = append(rows, []any{t.ID, t.Subject, t.Description, string(t.Priority), t.Status, t.Category, t.CreatedAt, customerID})
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"tickets"},
			[]string{"id", "subject", "description", "priority", "status", "category", "created_at", "customer_id"},
			pgx.CopyFromRows(rows))
		copied = n
		return err
	})
	return copied, err
}

func (s *Store) CreateRun(ctx context.Context, status string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx, `INSERT INTO analysis_runs (status, started_at) VALUES ($1, NOW()) RETURNING id::text`, status).Scan(&id)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, runID string, status string, summary []byte) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE analysis_runs SET status = $1, summary = $2, finished_at = NOW() WHERE id = $3::uuid`, status, summary, runID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetLatestRun(ctx context.Context) (models.AnalysisRun, error) {
	var run models.AnalysisRun
	err := s.Pool.QueryRow(ctx, `
		SELECT id::text, started_at, finished_at, status, summary
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AnalysisRun{}, ErrNotFound
	}
	return run, err
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
