package analysis

import (
	"sort"
	"time"

	"github.com/supplydesk/backend/internal/models"
)

const (
	trendRiseFactor = 1.2
	trendFallFactor = 0.8
)

// PatternDetector derives per-category statistics from a bucket. Now anchors
// the recent window used for concentration.
type PatternDetector struct {
	Now          time.Time
	RecentWindow time.Duration
}

func (d PatternDetector) Detect(b *Bucket) Pattern {
	return Pattern{
		Category:         b.Category,
		TicketCount:      len(b.Tickets),
		TimePattern:      d.TimePattern(b.Tickets),
		TierPattern:      TierPattern(b.Tickets),
		PriorityPattern:  PriorityPattern(b.Tickets),
		KeywordFrequency: KeywordFrequency(b.MatchedKeywords),
		SentimentTrend:   SentimentFractions(b.Sentiments, len(b.Tickets)),
	}
}

// TimePattern counts tickets created within the recent window and compares
// the two halves of the time-ordered ticket list. The halves are split by
// index at len/2, so only their sizes are compared.
func (d PatternDetector) TimePattern(tickets []models.Ticket) TimePattern {
	times := make([]time.Time, len(tickets))
	for i, t := range tickets {
		times[i] = t.CreatedAt
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	cutoff := d.Now.Add(-d.RecentWindow)
	recent := 0
	for _, ts := range times {
		if !ts.Before(cutoff) {
			recent++
		}
	}

	tp := TimePattern{Trend: TrendStable, RecentTickets: recent, TotalTickets: len(times)}
	if len(times) < 2 {
		return tp
	}
	tp.Concentration = float64(recent) / float64(len(times))

	first := times[:len(times)/2]
	second := times[len(times)/2:]
	switch {
	case float64(len(second)) > float64(len(first))*trendRiseFactor:
		tp.Trend = TrendIncreasing
	case float64(len(second)) < float64(len(first))*trendFallFactor:
		tp.Trend = TrendDecreasing
	}
	return tp
}

// TierPattern counts tickets per known customer tier. Tickets without a
// customer or with an unrecognized tier are skipped.
func TierPattern(tickets []models.Ticket) map[models.Tier]int {
	out := map[models.Tier]int{}
	for _, t := range tickets {
		if tier := t.CustomerTier(); tier.Weight() > 0 {
			out[tier]++
		}
	}
	return out
}

func PriorityPattern(tickets []models.Ticket) map[models.Priority]int {
	out := map[models.Priority]int{}
	for _, t := range tickets {
		out[t.Priority]++
	}
	return out
}

func KeywordFrequency(keywords []string) map[string]int {
	out := map[string]int{}
	for _, kw := range keywords {
		out[kw]++
	}
	return out
}

// SentimentFractions turns sentiment counts into fractions of total.
func SentimentFractions(counts map[Sentiment]int, total int) SentimentTrend {
	if total == 0 {
		return SentimentTrend{}
	}
	n := float64(total)
	return SentimentTrend{
		Positive: float64(counts[SentimentPositive]) / n,
		Negative: float64(counts[SentimentNegative]) / n,
		Neutral:  float64(counts[SentimentNeutral]) / n,
	}
}

type KeywordCount struct {
	Keyword string
	Count   int
}

// TopKeywords orders keywords by frequency, ties broken alphabetically.
func TopKeywords(freq map[string]int, n int) []KeywordCount {
	out := make([]KeywordCount, 0, len(freq))
	for kw, c := range freq {
		out = append(out, KeywordCount{Keyword: kw, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Keyword < out[j].Keyword
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// DominantTier returns the most represented tier, preferring the more
// valuable tier on ties. ok is false when no tier data exists.
func DominantTier(tiers map[models.Tier]int) (models.Tier, bool) {
	var (
		best  models.Tier
		count int
	)
	for _, tier := range models.Tiers {
		if tiers[tier] > count {
			best, count = tier, tiers[tier]
		}
	}
	return best, count > 0
}
