package analysis

import (
	"testing"

	"github.com/supplydesk/backend/internal/models"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"a b c", "a b d", 0.5},
		{"Late Delivery", "late delivery", 1},
		{"", "", 0},
		{"one", "", 0},
		{"x y", "z", 0},
	}
	for _, tt := range tests {
		if got := Jaccard(tt.a, tt.b); !approxEqual(got, tt.want) {
			t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRiskLevel(t *testing.T) {
	tk := func(p models.Priority) models.Ticket { return models.Ticket{Priority: p} }
	critical := []Issue{{Severity: SeverityCritical}}
	high := []Issue{{Severity: SeverityHigh}}

	tests := []struct {
		name    string
		ticket  models.Ticket
		related []Issue
		want    Severity
	}{
		{"CriticalIssue", tk(models.PriorityLow), critical, SeverityCritical},
		{"HighIssue", tk(models.PriorityLow), high, SeverityHigh},
		{"UrgentTicket", tk(models.PriorityUrgent), nil, SeverityHigh},
		{"HighTicket", tk(models.PriorityHigh), nil, SeverityMedium},
		{"Default", tk(models.PriorityMedium), nil, SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RiskLevel(tt.ticket, tt.related); got != tt.want {
				t.Errorf("RiskLevel = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTriageSuggestions(t *testing.T) {
	related := []Issue{
		{Recommendations: []string{"a", "b", "c"}},
		{Recommendations: []string{"b", "d"}},
	}
	got := triageSuggestions(models.Ticket{Priority: models.PriorityUrgent}, related)
	want := []string{"a", "b", "d", escalateSuggestion}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	if got := triageSuggestions(models.Ticket{Priority: models.PriorityLow}, nil); len(got) != 1 || got[0] != defaultSuggestion {
		t.Fatalf("expected default suggestion, got %v", got)
	}
}
