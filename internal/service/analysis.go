package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/supplydesk/backend/internal/analysis"
	"github.com/supplydesk/backend/internal/models"
	"github.com/supplydesk/backend/internal/notify"
)

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// ErrRunLogDisabled is returned by run log operations when no run store is
// configured.
var ErrRunLogDisabled = errors.New("analysis run log is not configured")

type RunStore interface {
	CreateRun(ctx context.Context, status string) (string, error)
	FinishRun(ctx context.Context, runID string, status string, summary []byte) error
	GetLatestRun(ctx context.Context) (models.AnalysisRun, error)
}

type AnalysisService struct {
	Analyzer *analysis.Analyzer
	Runs     RunStore
	Notifier notify.Publisher
	Logger   zerolog.Logger
	Clock    func() time.Time
}

type RunSummary struct {
	Events []map[string]any `json:"events"`
	Counts map[string]any   `json:"counts"`
}

type RunResult struct {
	RunID  string          `json:"runId"`
	Status string          `json:"status"`
	Report analysis.Report `json:"report"`
}

type CategorizeResult struct {
	Category analysis.Category        `json:"category"`
	Matches  []analysis.CategoryMatch `json:"matches"`
}

func (s *AnalysisService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock()
}

// Analyze runs a read-only analysis without touching the run log.
func (s *AnalysisService) Analyze(ctx context.Context) (analysis.Report, error) {
	return s.Analyzer.AnalyzeAllTickets(ctx)
}

// Run analyzes the window, records the run and publishes a completion
// notification. A failed notification is logged but does not fail the run.
func (s *AnalysisService) Run(ctx context.Context) (RunResult, error) {
	if s.Runs == nil {
		return RunResult{}, ErrRunLogDisabled
	}
	runID, err := s.Runs.CreateRun(ctx, StatusRunning)
	if err != nil {
		return RunResult{}, fmt.Errorf("create run: %w", err)
	}
	log := s.Logger.With().Str("run_id", runID).Logger()
	start := s.now()

	summary := RunSummary{Counts: map[string]any{}}
	summary.Events = append(summary.Events, map[string]any{
		"type":    "run_started",
		"message": "Issue analysis started",
		"time":    start,
	})

	report, err := s.Analyzer.AnalyzeAllTickets(ctx)
	if err != nil {
		summary.Events = append(summary.Events, map[string]any{
			"type":    "run_failed",
			"message": err.Error(),
			"time":    s.now(),
		})
		s.finish(ctx, log, runID, StatusFailed, summary)
		s.publish(ctx, log, notify.AnalysisComplete{RunID: runID, Status: StatusFailed, Timestamp: s.now().Unix()})
		return RunResult{RunID: runID, Status: StatusFailed}, err
	}

	health := ""
	critical := 0
	if report.Summary != nil {
		health = string(report.Summary.OverallHealth)
		critical = report.Summary.CriticalIssues
	}
	summary.Counts["tickets"] = report.TotalTicketsAnalyzed
	summary.Counts["categories"] = len(report.Patterns)
	summary.Counts["issues"] = len(report.Issues)
	summary.Counts["critical_issues"] = critical
	summary.Counts["overall_health"] = health
	summary.Counts["duration_ms"] = s.now().Sub(start).Milliseconds()
	summary.Events = append(summary.Events, map[string]any{
		"type":    "run_completed",
		"message": completionMessage(report),
		"time":    s.now(),
	})

	s.finish(ctx, log, runID, StatusCompleted, summary)
	s.publish(ctx, log, notify.AnalysisComplete{
		RunID:          runID,
		Status:         StatusCompleted,
		TotalIssues:    len(report.Issues),
		CriticalIssues: critical,
		OverallHealth:  health,
		Timestamp:      s.now().Unix(),
	})

	log.Info().Int("issues", len(report.Issues)).Str("health", health).Msg("analysis run completed")
	return RunResult{RunID: runID, Status: StatusCompleted, Report: report}, nil
}

func completionMessage(r analysis.Report) string {
	if r.Message != "" {
		return r.Message
	}
	return fmt.Sprintf("%d issues detected across %d tickets", len(r.Issues), r.TotalTicketsAnalyzed)
}

func (s *AnalysisService) finish(ctx context.Context, log zerolog.Logger, runID, status string, summary RunSummary) {
	payload, err := json.Marshal(summary)
	if err != nil {
		log.Error().Err(err).Msg("marshal run summary")
		payload = nil
	}
	if err := s.Runs.FinishRun(ctx, runID, status, payload); err != nil {
		log.Error().Err(err).Str("status", status).Msg("failed to finish run")
	}
}

func (s *AnalysisService) publish(ctx context.Context, log zerolog.Logger, msg notify.AnalysisComplete) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.PublishAnalysisComplete(ctx, msg); err != nil {
		log.Warn().Err(err).Msg("failed to publish analysis notification")
	}
}

func (s *AnalysisService) LatestRun(ctx context.Context) (models.AnalysisRun, error) {
	if s.Runs == nil {
		return models.AnalysisRun{}, ErrRunLogDisabled
	}
	return s.Runs.GetLatestRun(ctx)
}

func (s *AnalysisService) Triage(ctx context.Context, t models.Ticket) (analysis.TriageResult, error) {
	return s.Analyzer.DetectIssuesForNewTicket(ctx, t)
}

// Categorize classifies free text without fetching tickets.
func (s *AnalysisService) Categorize(subject, description string) CategorizeResult {
	t := models.Ticket{Subject: subject, Description: description}
	matches := analysis.NewCategorizer(s.taxonomy()).Match(t.Text())
	if matches == nil {
		matches = []analysis.CategoryMatch{}
	}
	return CategorizeResult{
		Category: s.Analyzer.CategorizeTicket(t),
		Matches:  matches,
	}
}

func (s *AnalysisService) taxonomy() *analysis.Taxonomy {
	if s.Analyzer.Taxonomy != nil {
		return s.Analyzer.Taxonomy
	}
	return analysis.DefaultTaxonomy
}
