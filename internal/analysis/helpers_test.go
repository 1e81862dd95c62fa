package analysis

import (
	"context"
	"math"
	"time"

	"github.com/supplydesk/backend/internal/models"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTicket(id, subject, description string, prio models.Priority, age time.Duration, customer *models.Customer) models.Ticket {
	return models.Ticket{
		ID:          id,
		Subject:     subject,
		Description: description,
		Priority:    prio,
		Status:      "open",
		Category:    "orders",
		CreatedAt:   testNow.Add(-age),
		Customer:    customer,
	}
}

func customer(email string, tier models.Tier) *models.Customer {
	return &models.Customer{Email: email, Tier: tier}
}

const day = 24 * time.Hour

// logisticsSpike is four recent, negative logistics tickets with mixed
// escalated priorities.
func logisticsSpike() []models.Ticket {
	desc := "My delivery is late and this is terrible"
	return []models.Ticket{
		newTicket("t1", "Delivery delayed", desc, models.PriorityUrgent, 1*day, customer("ann@example.com", models.TierGold)),
		newTicket("t2", "Delivery delayed", desc, models.PriorityHigh, 2*day, customer("bob@example.com", models.TierGold)),
		newTicket("t3", "Delivery delayed", desc, models.PriorityHigh, 3*day, customer("ANN@example.com", models.TierPlatinum)),
		newTicket("t4", "Delivery delayed", desc, models.PriorityMedium, 4*day, nil),
	}
}

type fakeSource struct {
	tickets []models.Ticket
	err     error
	since   time.Time
	calls   int
}

func (f *fakeSource) FindTicketsCreatedSince(_ context.Context, since time.Time) ([]models.Ticket, error) {
	f.calls++
	f.since = since
	if f.err != nil {
		return nil, f.err
	}
	return f.tickets, nil
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
