package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/supplydesk/backend/internal/models"
)

// causeRule fires when the keyword occurs more than Above times in the
// category's keyword frequency map.
type causeRule struct {
	Keyword string
	Above   int
	Cause   string
}

type causeChain struct {
	TitlePrefix string
	Rules       []causeRule
	Fallback    string
}

// causeChainFor holds one ordered rule chain per category. Adding a category
// to Categories without a case here fails TestEveryCategoryHasCauseChain.
func causeChainFor(c Category) (causeChain, bool) {
	switch c {
	case CategoryInventory:
		return causeChain{
			TitlePrefix: "Inventory Management Crisis",
			Rules: []causeRule{
				{"out of stock", 2, "Stock shortage due to demand forecasting issues"},
				{"backorder", 1, "Supply chain disruption affecting inventory replenishment"},
				{"inventory", 3, "Inventory management system inefficiencies"},
			},
			Fallback: "Inventory tracking and availability issues",
		}, true
	case CategoryLogistics:
		return causeChain{
			TitlePrefix: "Logistics Disruption",
			Rules: []causeRule{
				{"delayed", 2, "Carrier capacity constraints causing delivery delays"},
				{"tracking", 1, "Tracking system integration failures"},
				{"lost package", 0, "Package handling and chain-of-custody failures"},
			},
			Fallback: "Shipping and delivery process issues",
		}, true
	case CategoryFulfillment:
		return causeChain{
			TitlePrefix: "Fulfillment Breakdown",
			Rules: []causeRule{
				{"wrong item", 1, "Picking errors in warehouse operations"},
				{"missing item", 1, "Packing verification process gaps"},
				{"warehouse", 2, "Warehouse capacity or staffing shortfall"},
			},
			Fallback: "Order fulfillment process inefficiencies",
		}, true
	case CategoryPayment:
		return causeChain{
			TitlePrefix: "Payment Processing Failure",
			Rules: []causeRule{
				{"declined", 2, "Payment gateway authorization failures"},
				{"refund", 2, "Refund processing backlog"},
				{"charge", 1, "Billing system producing incorrect charges"},
			},
			Fallback: "Payment processing issues",
		}, true
	case CategoryQuality:
		return causeChain{
			TitlePrefix: "Product Quality Alert",
			Rules: []causeRule{
				{"defective", 2, "Supplier quality control failures"},
				{"damaged", 2, "Inadequate packaging or handling damage"},
				{"counterfeit", 0, "Unverified supplier sourcing"},
			},
			Fallback: "Product quality consistency issues",
		}, true
	case CategoryCustomerService:
		return causeChain{
			TitlePrefix: "Customer Service Degradation",
			Rules: []causeRule{
				{"no response", 1, "Support team understaffing causing response delays"},
				{"wait time", 1, "Queue management and routing inefficiencies"},
				{"rude", 0, "Agent training and quality assurance gaps"},
			},
			Fallback: "Customer service process issues",
		}, true
	case CategoryTechnology:
		return causeChain{
			TitlePrefix: "Technology Platform Issue",
			Rules: []causeRule{
				{"crash", 1, "Application stability issues after recent deployment"},
				{"login", 2, "Authentication service degradation"},
				{"checkout", 1, "Checkout flow defects blocking purchases"},
			},
			Fallback: "Platform technical issues",
		}, true
	}
	return causeChain{}, false
}

// RootCause walks the category's rule chain against keyword counts.
func RootCause(c Category, freq map[string]int) string {
	chain, ok := causeChainFor(c)
	if !ok {
		return "Unclassified operational issue"
	}
	for _, r := range chain.Rules {
		if freq[r.Keyword] > r.Above {
			return r.Cause
		}
	}
	return chain.Fallback
}

// IssueTitle interpolates the root cause into the category title template.
func IssueTitle(c Category, rootCause string) string {
	chain, ok := causeChainFor(c)
	if !ok {
		return c.DisplayName() + " Issue: " + rootCause
	}
	return chain.TitlePrefix + ": " + rootCause
}

// SeverityScore is the capped sum of the volume, priority escalation,
// sentiment and time concentration components.
func SeverityScore(p Pattern) float64 {
	n := p.TicketCount
	volume := SeverityVolume.Lookup(float64(n))

	var priority float64
	if n > 0 {
		weighted := p.PriorityPattern[models.PriorityUrgent]*3 +
			p.PriorityPattern[models.PriorityHigh]*2 +
			p.PriorityPattern[models.PriorityMedium]
		priority = math.Min(0.4, 0.4*float64(weighted)/float64(n))
	}

	sentiment := math.Min(0.2, p.SentimentTrend.Negative*0.2)
	concentration := math.Min(0.1, p.TimePattern.Concentration*0.1)

	return math.Min(1, volume+priority+sentiment+concentration)
}

func SeverityLevel(score float64) Severity {
	return SeverityLevels.Lookup(score)
}

// RootCauseAnalyzer turns a category pattern into an Issue.
type RootCauseAnalyzer struct {
	Taxonomy   *Taxonomy
	Now        time.Time
	WindowDays int
	RecentDays int
}

// Analyze returns the issue for a bucket, or false when the bucket is below
// MinIssueTickets or its severity score is below MinIssueSeverity.
func (a RootCauseAnalyzer) Analyze(b *Bucket, p Pattern, impact Impact) (Issue, bool) {
	if p.TicketCount < MinIssueTickets {
		return Issue{}, false
	}
	score := SeverityScore(p)
	if score < MinIssueSeverity {
		return Issue{}, false
	}

	rootCause := RootCause(p.Category, p.KeywordFrequency)
	return Issue{
		ID:                fmt.Sprintf("issue_%s_%d", p.Category, a.Now.UnixMilli()),
		Category:          p.Category,
		Title:             IssueTitle(p.Category, rootCause),
		Description:       a.describe(p),
		RootCause:         rootCause,
		Severity:          SeverityLevel(score),
		SeverityScore:     score,
		AffectedCustomers: affectedCustomers(b.Tickets),
		TicketCount:       p.TicketCount,
		TimePattern:       p.TimePattern,
		Recommendations:   issueActions(a.Taxonomy, p),
		Evidence:          buildEvidence(b, p),
		Impact:            impact,
		LastDetected:      a.Now,
		Status:            IssueStatusActive,
	}, true
}

func (a RootCauseAnalyzer) describe(p Pattern) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d tickets reported in the last %d days related to %s.",
		p.TicketCount, a.WindowDays, strings.ToLower(p.Category.DisplayName()))

	switch {
	case p.TimePattern.Concentration > spikeConcentration:
		fmt.Fprintf(&sb, " Concentrated spike: %s of tickets arrived in the last %d days, suggesting a systemic breakdown.",
			percent(p.TimePattern.Concentration), a.RecentDays)
	case p.TimePattern.Trend == TrendIncreasing:
		sb.WriteString(" Ticket volume is trending upward.")
	}

	if p.SentimentTrend.Negative > negativeMajority {
		fmt.Fprintf(&sb, " %s of customers express negative sentiment.", percent(p.SentimentTrend.Negative))
	}

	if top := TopKeywords(p.KeywordFrequency, 3); len(top) > 0 {
		words := make([]string, len(top))
		for i, kc := range top {
			words[i] = kc.Keyword
		}
		fmt.Fprintf(&sb, " Most common keywords: %s.", strings.Join(words, ", "))
	}

	if tier, ok := DominantTier(p.TierPattern); ok {
		fmt.Fprintf(&sb, " Most affected customer tier: %s.", tier)
	}
	return sb.String()
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

func affectedCustomers(tickets []models.Ticket) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, t := range tickets {
		if t.Customer == nil || t.Customer.Email == "" {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(t.Customer.Email))
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}

const maxSampleTickets = 5

func buildEvidence(b *Bucket, p Pattern) Evidence {
	ordered := make([]models.Ticket, len(b.Tickets))
	copy(ordered, b.Tickets)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CreatedAt.Before(ordered[j].CreatedAt) })

	dist := map[string]int{}
	for _, t := range ordered {
		dist[t.CreatedAt.UTC().Format(time.DateOnly)]++
	}

	samples := make([]SampleTicket, 0, maxSampleTickets)
	for _, t := range ordered {
		if len(samples) == maxSampleTickets {
			break
		}
		samples = append(samples, SampleTicket{
			ID:        t.ID,
			Subject:   t.Subject,
			Text:      t.Text(),
			Priority:  t.Priority,
			CreatedAt: t.CreatedAt,
		})
	}

	subs := make(map[string][]string, len(b.Subcategories))
	for k, v := range b.Subcategories {
		subs[k] = append([]string(nil), v...)
	}

	freq := make(map[string]int, len(p.KeywordFrequency))
	for k, v := range p.KeywordFrequency {
		freq[k] = v
	}

	return Evidence{
		KeywordFrequency: freq,
		TimeDistribution: dist,
		Subcategories:    subs,
		SampleTickets:    samples,
	}
}
