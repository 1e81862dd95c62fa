package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/supplydesk/backend/internal/analysis"
)

const (
	SheetSummary         = "Summary"
	SheetIssues          = "Issues"
	SheetImpact          = "Impact"
	SheetRecommendations = "Recommendations"
)

// ContentType is the MIME type of the workbook WriteReport produces.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteReport renders a report as an xlsx workbook with one sheet per
// section.
func WriteReport(w io.Writer, r analysis.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetIssues, SheetImpact, SheetRecommendations} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	if err := writeSummary(f, r); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeIssues(f, r.Issues); err != nil {
		return fmt.Errorf("issues sheet: %w", err)
	}
	if err := writeImpact(f, r.ImpactAnalysis); err != nil {
		return fmt.Errorf("impact sheet: %w", err)
	}
	if err := writeRecommendations(f, r.Recommendations); err != nil {
		return fmt.Errorf("recommendations sheet: %w", err)
	}

	_, err := f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, r analysis.Report) error {
	rows := [][]any{{"Field", "Value"}}
	if r.Message != "" {
		rows = append(rows, []any{"Message", r.Message})
	}
	if !r.AnalysisDate.IsZero() {
		rows = append(rows, []any{"Analysis date", r.AnalysisDate.UTC().Format("2006-01-02 15:04:05")})
	}
	rows = append(rows, []any{"Tickets analyzed", r.TotalTicketsAnalyzed})
	if s := r.Summary; s != nil {
		rows = append(rows,
			[]any{"Overall health", string(s.OverallHealth)},
			[]any{"Total issues", s.TotalIssues},
			[]any{"Critical issues", s.CriticalIssues},
			[]any{"High issues", s.HighIssues},
			[]any{"Medium issues", s.MediumIssues},
			[]any{"Low issues", s.LowIssues},
			[]any{"Categories affected", s.CategoriesAffected},
			[]any{"Highest impact category", string(s.HighestImpactCategory)},
		)
	}
	return writeRows(f, SheetSummary, rows)
}

func writeIssues(f *excelize.File, issues []analysis.Issue) error {
	rows := [][]any{{"ID", "Category", "Title", "Severity", "Severity score", "Tickets", "Impact score", "Impact level", "Root cause", "Affected customers", "Recommendations"}}
	for _, i := range issues {
		rows = append(rows, []any{
			i.ID,
			string(i.Category),
			i.Title,
			string(i.Severity),
			i.SeverityScore,
			i.TicketCount,
			i.Impact.Score,
			string(i.Impact.Level),
			i.RootCause,
			strings.Join(i.AffectedCustomers, ", "),
			strings.Join(i.Recommendations, "\n"),
		})
	}
	return writeRows(f, SheetIssues, rows)
}

func writeImpact(f *excelize.File, impacts map[analysis.Category]analysis.Impact) error {
	rows := [][]any{{"Category", "Score", "Level", "Affected tickets", "Urgent", "High", "Medium", "Low", "Customer satisfaction"}}
	for _, c := range analysis.Categories {
		imp, ok := impacts[c]
		if !ok {
			continue
		}
		rows = append(rows, []any{
			string(c), imp.Score, string(imp.Level), imp.AffectedTickets,
			imp.UrgentTickets, imp.HighPriorityTickets, imp.MediumTickets, imp.LowTickets,
			imp.CustomerSatisfaction,
		})
	}
	return writeRows(f, SheetImpact, rows)
}

func writeRecommendations(f *excelize.File, recs []analysis.Recommendation) error {
	rows := [][]any{{"Type", "Priority", "Title", "Category", "Action"}}
	for _, r := range recs {
		for _, a := range r.Actions {
			rows = append(rows, []any{string(r.Type), r.Priority, r.Title, string(r.Category), a})
		}
	}
	return writeRows(f, SheetRecommendations, rows)
}
