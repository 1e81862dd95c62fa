package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/supplydesk/backend/internal/models"
)

const TicketsCollection = "tickets"

// Store reads tickets from a MongoDB collection whose documents carry string
// _id values and an embedded customer.
type Store struct {
	client  *mongo.Client
	tickets *mongo.Collection
}

// Connect dials MongoDB and pings the primary with exponential backoff until
// it answers or maxWait elapses.
func Connect(ctx context.Context, uri, database string, maxWait time.Duration, logger zerolog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxWait
	attempt := 0
	op := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("mongo not ready")
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &Store{
		client:  client,
		tickets: client.Database(database).Collection(TicketsCollection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// FindTicketsCreatedSince returns tickets with createdAt >= since, oldest first.
func (s *Store) FindTicketsCreatedSince(ctx context.Context, since time.Time) ([]models.Ticket, error) {
	filter := bson.M{"createdAt": bson.M{"$gte": since}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.tickets.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tickets: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Ticket
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return out, nil
}

// UpsertTickets replaces tickets by id, inserting the missing ones.
func (s *Store) UpsertTickets(ctx context.Context, tickets []models.Ticket) (int64, error) {
	if len(tickets) == 0 {
		return 0, nil
	}
	writes := make([]mongo.WriteModel, 0, len(tickets))
	for _, t := range tickets {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": t.ID}).
			SetReplacement(t).
			SetUpsert(true))
	}
	res, err := s.tickets.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("upsert tickets: %w", err)
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}
