package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"
)

func TestRedisPublisherRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channel := fmt.Sprintf("issue_analysis_test_%d", time.Now().UnixNano())
	pub, err := NewRedisPublisher(ctx, addr, "", 0, channel)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pub.Close()

	sub := pub.Subscribe(ctx)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	want := AnalysisComplete{RunID: "run-1", Status: "COMPLETED", TotalIssues: 2, CriticalIssues: 1, OverallHealth: "Critical", Timestamp: 1760529600}
	if err := pub.PublishAnalysisComplete(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var got AnalysisComplete
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.PublishAnalysisComplete(context.Background(), AnalysisComplete{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
