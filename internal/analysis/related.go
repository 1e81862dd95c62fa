package analysis

import (
	"strings"

	"github.com/supplydesk/backend/internal/models"
)

// relatedThreshold is the word-overlap above which two tickets are related.
const relatedThreshold = 0.3

// Jaccard is the word-set overlap of two texts, case-insensitive.
func Jaccard(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = struct{}{}
	}
	return out
}

func relatedToSamples(t models.Ticket, samples []SampleTicket) bool {
	text := t.Text()
	for _, s := range samples {
		if Jaccard(text, s.Text) > relatedThreshold {
			return true
		}
	}
	return false
}

// RiskLevel grades a new ticket from the issues it relates to and its own
// priority.
func RiskLevel(t models.Ticket, related []Issue) Severity {
	switch {
	case countSeverity(related, SeverityCritical) > 0:
		return SeverityCritical
	case countSeverity(related, SeverityHigh) > 0 || t.Priority == models.PriorityUrgent:
		return SeverityHigh
	case t.Priority == models.PriorityHigh:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

const (
	suggestionsPerIssue = 2
	escalateSuggestion  = "Escalate to senior support immediately"
	defaultSuggestion   = "Handle through standard support workflow"
)

func triageSuggestions(t models.Ticket, related []Issue) []string {
	var lists [][]string
	for _, issue := range related {
		recs := issue.Recommendations
		if len(recs) > suggestionsPerIssue {
			recs = recs[:suggestionsPerIssue]
		}
		lists = append(lists, recs)
	}
	if t.Priority == models.PriorityUrgent {
		lists = append(lists, []string{escalateSuggestion})
	}
	out := dedupe(lists...)
	if len(out) == 0 {
		out = append(out, defaultSuggestion)
	}
	return out
}
