package analysis

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/supplydesk/backend/internal/models"
)

const (
	DefaultWindowDays = 30
	DefaultRecentDays = 7

	NoTicketsMessage = "No tickets found for analysis"
)

// TicketSource is the read-only ticket store the analyzer pulls from.
type TicketSource interface {
	FindTicketsCreatedSince(ctx context.Context, since time.Time) ([]models.Ticket, error)
}

// Analyzer runs the issue detection pipeline. Each call fetches its own
// ticket snapshot and builds every intermediate structure from scratch, so an
// Analyzer is safe for concurrent use.
type Analyzer struct {
	Source     TicketSource
	Taxonomy   *Taxonomy
	Logger     zerolog.Logger
	Now        func() time.Time
	WindowDays int
	RecentDays int
	// Parallelism bounds per-category scoring goroutines; 0 means GOMAXPROCS.
	Parallelism int
}

func (a *Analyzer) taxonomy() *Taxonomy {
	if a.Taxonomy == nil {
		return DefaultTaxonomy
	}
	return a.Taxonomy
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now().UTC()
	}
	return a.Now()
}

func (a *Analyzer) windowDays() int {
	if a.WindowDays <= 0 {
		return DefaultWindowDays
	}
	return a.WindowDays
}

func (a *Analyzer) recentDays() int {
	if a.RecentDays <= 0 {
		return DefaultRecentDays
	}
	return a.RecentDays
}

// CategorizeTicket returns the single best category for a ticket, or
// CategoryGeneral.
func (a *Analyzer) CategorizeTicket(t models.Ticket) Category {
	return NewCategorizer(a.taxonomy()).CategorizeTicket(t)
}

// AnalyzeAllTickets analyzes every ticket created inside the analysis window.
// An empty window is not an error.
func (a *Analyzer) AnalyzeAllTickets(ctx context.Context) (Report, error) {
	now := a.now()
	since := now.AddDate(0, 0, -a.windowDays())

	tickets, err := a.Source.FindTicketsCreatedSince(ctx, since)
	if err != nil {
		return Report{}, fmt.Errorf("Failed to analyze tickets: %w", err)
	}
	tickets = inWindow(tickets, since, now)
	if len(tickets) == 0 {
		a.Logger.Info().Time("since", since).Msg("no tickets in analysis window")
		return Report{Message: NoTicketsMessage, Issues: []Issue{}}, nil
	}

	report := a.Analyze(tickets, now)
	report.TimeRange = &TimeRange{Start: since, End: now, Days: a.windowDays()}
	a.Logger.Info().
		Int("tickets", report.TotalTicketsAnalyzed).
		Int("categories", len(report.Patterns)).
		Int("issues", len(report.Issues)).
		Str("health", string(report.Summary.OverallHealth)).
		Msg("ticket analysis complete")
	return report, nil
}

type categoryResult struct {
	pattern Pattern
	impact  Impact
	issue   Issue
	raised  bool
}

// Analyze runs categorization through recommendations over an in-memory
// ticket set. It is a pure function of tickets and now.
func (a *Analyzer) Analyze(tickets []models.Ticket, now time.Time) Report {
	tax := a.taxonomy()
	buckets, uncategorized := NewCategorizer(tax).Bucketize(tickets)
	a.Logger.Debug().
		Int("tickets", len(tickets)).
		Int("buckets", len(buckets)).
		Int("uncategorized", uncategorized).
		Msg("tickets categorized")

	detector := PatternDetector{Now: now, RecentWindow: time.Duration(a.recentDays()) * 24 * time.Hour}
	rca := RootCauseAnalyzer{Taxonomy: tax, Now: now, WindowDays: a.windowDays(), RecentDays: a.recentDays()}

	results := make([]categoryResult, len(buckets))
	var g errgroup.Group
	g.SetLimit(a.parallelism())
	for i, b := range buckets {
		g.Go(func() error {
			p := detector.Detect(b)
			imp := ScoreImpact(p)
			issue, raised := rca.Analyze(b, p, imp)
			results[i] = categoryResult{pattern: p, impact: imp, issue: issue, raised: raised}
			return nil
		})
	}
	// Scorers are pure and never return an error.
	g.Wait()

	patterns := make(map[Category]Pattern, len(results))
	impacts := make(map[Category]Impact, len(results))
	issues := []Issue{}
	for _, r := range results {
		patterns[r.pattern.Category] = r.pattern
		impacts[r.pattern.Category] = r.impact
		if r.raised {
			issues = append(issues, r.issue)
		}
	}
	RankIssues(issues)

	recs := GenerateRecommendations(tax, issues, patterns)
	if recs == nil {
		recs = []Recommendation{}
	}

	summary := Summarize(issues, impacts)
	return Report{
		AnalysisDate:         now,
		TotalTicketsAnalyzed: len(tickets),
		Issues:               issues,
		Patterns:             patterns,
		Recommendations:      recs,
		ImpactAnalysis:       impacts,
		Summary:              &summary,
	}
}

func (a *Analyzer) parallelism() int {
	if a.Parallelism > 0 {
		return a.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// RankIssues orders issues by severity score, then impact score, then
// taxonomy order.
func RankIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].SeverityScore != issues[j].SeverityScore {
			return issues[i].SeverityScore > issues[j].SeverityScore
		}
		if issues[i].Impact.Score != issues[j].Impact.Score {
			return issues[i].Impact.Score > issues[j].Impact.Score
		}
		return issues[i].Category.rank() < issues[j].Category.rank()
	})
}

// DetectIssuesForNewTicket runs a full analysis and reports the issues a new
// ticket relates to: same single-match category, or word overlap with one of
// an issue's sample tickets.
func (a *Analyzer) DetectIssuesForNewTicket(ctx context.Context, t models.Ticket) (TriageResult, error) {
	report, err := a.AnalyzeAllTickets(ctx)
	if err != nil {
		return TriageResult{}, err
	}

	category := a.CategorizeTicket(t)
	related := []Issue{}
	for _, issue := range report.Issues {
		if issue.Category == category || relatedToSamples(t, issue.Evidence.SampleTickets) {
			related = append(related, issue)
		}
	}

	return TriageResult{
		TicketID:      t.ID,
		Category:      category,
		RelatedIssues: related,
		Suggestions:   triageSuggestions(t, related),
		RiskLevel:     RiskLevel(t, related),
	}, nil
}

// inWindow keeps tickets created in [since, now]. Sources only bound the
// start, and a pinned clock can sit before the newest tickets.
func inWindow(tickets []models.Ticket, since, now time.Time) []models.Ticket {
	out := tickets[:0:0]
	for _, t := range tickets {
		if !t.CreatedAt.Before(since) && !t.CreatedAt.After(now) {
			out = append(out, t)
		}
	}
	return out
}
