package analysis

import (
	"math"

	"github.com/supplydesk/backend/internal/models"
)

const (
	maxImpactScore    = 10
	maxPriorityScore  = 3
	minTierMultiplier = 0.8
	tierMultiplierGap = 0.4
	maxTierWeight     = 4
)

var priorityImpactWeights = map[models.Priority]float64{
	models.PriorityUrgent: 0.8,
	models.PriorityHigh:   0.5,
	models.PriorityMedium: 0.2,
	models.PriorityLow:    0.1,
}

// ScoreImpact rates a category's business impact on a 0..10 scale. It is
// computed for every analyzed category, whether or not an issue is raised.
func ScoreImpact(p Pattern) Impact {
	breakdown := ImpactBreakdown{
		VolumeScore:    ImpactVolume.Lookup(float64(p.TicketCount)),
		PriorityScore:  PriorityImpactScore(p.PriorityPattern),
		SentimentScore: ImpactSentiment.Lookup(p.SentimentTrend.Negative),
		TimeScore:      ImpactTime.Lookup(p.TimePattern.Concentration),
		TierMultiplier: TierMultiplier(p.TierPattern),
	}

	raw := (breakdown.VolumeScore + breakdown.PriorityScore + breakdown.SentimentScore + breakdown.TimeScore) * breakdown.TierMultiplier
	score := round1(math.Min(raw, maxImpactScore))

	return Impact{
		Score:                score,
		Level:                ImpactLevels.Lookup(score),
		AffectedTickets:      p.TicketCount,
		UrgentTickets:        p.PriorityPattern[models.PriorityUrgent],
		HighPriorityTickets:  p.PriorityPattern[models.PriorityHigh],
		MediumTickets:        p.PriorityPattern[models.PriorityMedium],
		LowTickets:           p.PriorityPattern[models.PriorityLow],
		CustomerSatisfaction: CustomerSatisfaction(p.SentimentTrend.Negative),
		Breakdown:            breakdown,
	}
}

// PriorityImpactScore weights priority counts, capped at 3.
func PriorityImpactScore(priorities map[models.Priority]int) float64 {
	var s float64
	for _, prio := range models.Priorities {
		s += priorityImpactWeights[prio] * float64(priorities[prio])
	}
	return math.Min(s, maxPriorityScore)
}

// TierMultiplier scales impact between 0.8 and 1.2 by the average tier
// weight of affected customers. Without tier data it is 1.
func TierMultiplier(tiers map[models.Tier]int) float64 {
	var weighted, total int
	for tier, n := range tiers {
		weighted += tier.Weight() * n
		total += n
	}
	if total == 0 {
		return 1
	}
	avg := float64(weighted) / float64(total)
	return minTierMultiplier + avg/maxTierWeight*tierMultiplierGap
}

// CustomerSatisfaction is the share of non-negative sentiment as 0..100.
func CustomerSatisfaction(negative float64) int {
	v := int(math.Round((1 - negative) * 100))
	return max(0, min(100, v))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
