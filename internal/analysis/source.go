package analysis

import (
	"context"
	"time"

	"github.com/supplydesk/backend/internal/models"
)

// StaticSource serves a fixed ticket snapshot, e.g. one loaded from a
// spreadsheet.
type StaticSource []models.Ticket

func (s StaticSource) FindTicketsCreatedSince(_ context.Context, since time.Time) ([]models.Ticket, error) {
	out := make([]models.Ticket, 0, len(s))
	for _, t := range s {
		if !t.CreatedAt.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}
