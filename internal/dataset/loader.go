package dataset

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"github.com/supplydesk/backend/internal/models"
)

// RowError describes a spreadsheet row that was skipped.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

type columns struct {
	id, subject, description, priority, status, category, createdAt, email, tier int
}

var validate = validator.New()

// LoadTickets reads tickets from the first sheet of an xlsx workbook. The
// first row is a header; columns are matched by name, case-insensitively.
// Rows that fail validation are skipped and reported.
func LoadTickets(path string) ([]models.Ticket, []RowError, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return readTickets(f)
}

func ReadTickets(r io.Reader) ([]models.Ticket, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readTickets(f)
}

func readTickets(f *excelize.File) ([]models.Ticket, []RowError, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	cols, err := detectColumns(rows[0])
	if err != nil {
		return nil, nil, err
	}

	var (
		out     []models.Ticket
		skipped []RowError
	)
	for i, r := range rows[1:] {
		rowNum := i + 2
		if blank(r) {
			continue
		}
		t, err := parseRow(r, cols)
		if err != nil {
			skipped = append(skipped, RowError{Row: rowNum, Err: err})
			continue
		}
		out = append(out, t)
	}
	return out, skipped, nil
}

func detectColumns(header []string) (columns, error) {
	c := columns{-1, -1, -1, -1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch normalize(h) {
		case "id", "ticketid":
			c.id = i
		case "subject", "title":
			c.subject = i
		case "description", "body", "message":
			c.description = i
		case "priority":
			c.priority = i
		case "status":
			c.status = i
		case "category":
			c.category = i
		case "createdat", "created":
			c.createdAt = i
		case "customeremail", "email":
			c.email = i
		case "customertier", "tier":
			c.tier = i
		}
	}
	var missing []string
	for name, idx := range map[string]int{"id": c.id, "priority": c.priority, "created_at": c.createdAt} {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return c, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func parseRow(r []string, c columns) (models.Ticket, error) {
	t := models.Ticket{
		ID:          cell(r, c.id),
		Subject:     cell(r, c.subject),
		Description: cell(r, c.description),
		Priority:    models.Priority(strings.ToLower(cell(r, c.priority))),
		Status:      cell(r, c.status),
		Category:    cell(r, c.category),
	}
	if t.Status == "" {
		t.Status = "open"
	}

	created, err := parseTime(cell(r, c.createdAt))
	if err != nil {
		return models.Ticket{}, err
	}
	t.CreatedAt = created

	if email := cell(r, c.email); email != "" {
		t.Customer = &models.Customer{
			Email: strings.ToLower(email),
			Tier:  models.Tier(strings.ToLower(cell(r, c.tier))),
		}
	}

	if err := validate.Struct(t); err != nil {
		return models.Ticket{}, err
	}
	return t, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01-02-06 15:04",
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized created_at %q", s)
}

func cell(r []string, idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[idx])
}

func normalize(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(h)
}

func blank(r []string) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
