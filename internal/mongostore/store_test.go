package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/supplydesk/backend/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	db := fmt.Sprintf("issues_test_%d", time.Now().UnixNano())
	store, err := Connect(ctx, uri, db, 10*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = store.tickets.Database().Drop(context.Background())
		_ = store.Close(context.Background())
	})
	return store
}

func TestFindTicketsCreatedSince(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	tickets := []models.Ticket{
		{ID: "M-2", Subject: "Login broken", Priority: models.PriorityHigh, CreatedAt: now.Add(-time.Hour),
			Customer: &models.Customer{Email: "cy@example.com", Tier: models.TierSilver}},
		{ID: "M-1", Subject: "Refund", Priority: models.PriorityLow, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "M-0", Subject: "Ancient", Priority: models.PriorityLow, CreatedAt: now.AddDate(0, 0, -90)},
	}
	if _, err := store.UpsertTickets(ctx, tickets); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.FindTicketsCreatedSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 2 || got[0].ID != "M-1" || got[1].ID != "M-2" {
		t.Fatalf("unexpected tickets %+v", got)
	}
	if got[1].Customer == nil || got[1].Customer.Tier != models.TierSilver {
		t.Fatalf("expected embedded customer, got %+v", got[1].Customer)
	}
	if !got[1].CreatedAt.Equal(now.Add(-time.Hour)) {
		t.Fatalf("createdAt round trip mismatch: %v", got[1].CreatedAt)
	}
}
