package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "issue_analysis_complete"

// AnalysisComplete is published after every analysis run.
type AnalysisComplete struct {
	RunID          string `json:"runId"`
	Status         string `json:"status"`
	TotalIssues    int    `json:"totalIssues"`
	CriticalIssues int    `json:"criticalIssues"`
	OverallHealth  string `json:"overallHealth"`
	Timestamp      int64  `json:"timestamp"`
}

type Publisher interface {
	PublishAnalysisComplete(ctx context.Context, msg AnalysisComplete) error
	Close() error
}

// RedisPublisher sends notifications over Redis pub/sub.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(ctx context.Context, addr, password string, db int, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}, nil
}

func (p *RedisPublisher) PublishAnalysisComplete(ctx context.Context, msg AnalysisComplete) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Subscribe is used by tests and operators tailing the channel.
func (p *RedisPublisher) Subscribe(ctx context.Context) *redis.PubSub {
	return p.client.Subscribe(ctx, p.channel)
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// Nop drops notifications. It is used when REDIS_ADDR is unset.
type Nop struct{}

func (Nop) PublishAnalysisComplete(context.Context, AnalysisComplete) error { return nil }
func (Nop) Close() error                                                    { return nil }
