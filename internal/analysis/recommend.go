package analysis

import "fmt"

const maxCategoryActions = 3

var (
	criticalActions = []string{
		"Escalate critical issues to senior management immediately",
		"Allocate emergency resources to the affected operations",
		"Put temporary workarounds in place for impacted customers",
		"Communicate proactively with every affected customer",
	}
	processActions = []string{
		"Review and update standard operating procedures for affected areas",
		"Increase monitoring frequency for high-severity categories",
		"Schedule a root cause review with category owners",
	}
)

// conditionalActions are appended for spikes and for negative-majority buckets.
func conditionalActions(p Pattern) []string {
	var out []string
	if p.TimePattern.Concentration > spikeConcentration {
		out = append(out, fmt.Sprintf("Open an incident review for the recent spike in %s tickets", p.Category.DisplayName()))
	}
	if p.SentimentTrend.Negative > negativeMajority {
		out = append(out, "Prioritize proactive outreach to dissatisfied customers")
	}
	return out
}

// issueActions is the category's full action list plus conditional actions.
func issueActions(tax *Taxonomy, p Pattern) []string {
	return dedupe(tax.Actions(p.Category), conditionalActions(p))
}

// GenerateRecommendations builds the ordered recommendation list: a critical
// block, a process block, then one block per category in issue order.
func GenerateRecommendations(tax *Taxonomy, issues []Issue, patterns map[Category]Pattern) []Recommendation {
	out := []Recommendation{}
	if countSeverity(issues, SeverityCritical) > 0 {
		out = append(out, Recommendation{
			Type:     RecommendationCritical,
			Priority: "immediate",
			Title:    "Immediate Action Required",
			Actions:  append([]string(nil), criticalActions...),
		})
	}
	if countSeverity(issues, SeverityHigh) > 0 {
		out = append(out, Recommendation{
			Type:     RecommendationProcess,
			Priority: "high",
			Title:    "Process Improvements",
			Actions:  append([]string(nil), processActions...),
		})
	}

	seen := map[Category]bool{}
	for _, issue := range issues {
		if seen[issue.Category] {
			continue
		}
		seen[issue.Category] = true

		actions := tax.Actions(issue.Category)
		if len(actions) > maxCategoryActions {
			actions = actions[:maxCategoryActions]
		}
		out = append(out, Recommendation{
			Type:     RecommendationCategory,
			Priority: string(issue.Severity),
			Title:    issue.Category.DisplayName() + " Improvements",
			Category: issue.Category,
			Actions:  dedupe(actions, conditionalActions(patterns[issue.Category])),
		})
	}
	return out
}

// OverallHealth grades the run: Excellent with no issues, Critical with any
// critical issue, Poor with more than two high issues, Good otherwise.
func OverallHealth(issues []Issue) Health {
	switch {
	case len(issues) == 0:
		return HealthExcellent
	case countSeverity(issues, SeverityCritical) > 0:
		return HealthCritical
	case countSeverity(issues, SeverityHigh) > 2:
		return HealthPoor
	default:
		return HealthGood
	}
}

func Summarize(issues []Issue, impacts map[Category]Impact) Summary {
	s := Summary{
		TotalIssues:    len(issues),
		CriticalIssues: countSeverity(issues, SeverityCritical),
		HighIssues:     countSeverity(issues, SeverityHigh),
		MediumIssues:   countSeverity(issues, SeverityMedium),
		LowIssues:      countSeverity(issues, SeverityLow),
		OverallHealth:  OverallHealth(issues),
	}
	cats := map[Category]bool{}
	for _, i := range issues {
		cats[i.Category] = true
	}
	s.CategoriesAffected = len(cats)

	best := -1.0
	for _, c := range Categories {
		if imp, ok := impacts[c]; ok && imp.Score > best {
			best = imp.Score
			s.HighestImpactCategory = c
		}
	}
	return s
}

func countSeverity(issues []Issue, sev Severity) int {
	n := 0
	for _, i := range issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

func dedupe(lists ...[]string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, l := range lists {
		for _, v := range l {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
