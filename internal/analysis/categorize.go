package analysis

import (
	"strings"

	"github.com/supplydesk/backend/internal/models"
)

type CategoryMatch struct {
	Category Category `json:"category"`
	Keywords []string `json:"keywords"`
}

// Categorizer maps ticket text onto taxonomy categories by case-insensitive
// substring matching.
type Categorizer struct {
	tax       *Taxonomy
	sentiment SentimentClassifier
}

func NewCategorizer(tax *Taxonomy) Categorizer {
	return Categorizer{tax: tax, sentiment: NewSentimentClassifier(tax.Sentiment)}
}

// Match returns every category with at least one keyword in text, in taxonomy
// order, with the keywords that hit.
func (c Categorizer) Match(text string) []CategoryMatch {
	text = strings.ToLower(text)
	var out []CategoryMatch
	for _, def := range c.tax.Categories {
		var hits []string
		for _, kw := range def.Keywords {
			if strings.Contains(text, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) > 0 {
			out = append(out, CategoryMatch{Category: def.Name, Keywords: hits})
		}
	}
	return out
}

// CategorizeTicket is the single-match form used for live triage: the first
// matching category in taxonomy order, or CategoryGeneral.
func (c Categorizer) CategorizeTicket(t models.Ticket) Category {
	text := strings.ToLower(t.Text())
	for _, def := range c.tax.Categories {
		for _, kw := range def.Keywords {
			if strings.Contains(text, kw) {
				return def.Name
			}
		}
	}
	return CategoryGeneral
}

// Bucketize is the multi-match form used for batch analysis. A ticket lands in
// every category it matches; tickets matching nothing are left out of every
// bucket and only counted. Buckets come back in taxonomy order, empty ones
// omitted.
func (c Categorizer) Bucketize(tickets []models.Ticket) ([]*Bucket, int) {
	buckets := map[Category]*Bucket{}
	uncategorized := 0
	for _, t := range tickets {
		matches := c.Match(t.Text())
		if len(matches) == 0 {
			uncategorized++
			continue
		}
		sentiment := c.sentiment.Classify(t.Description)
		for _, m := range matches {
			b, ok := buckets[m.Category]
			if !ok {
				b = newBucket(m.Category)
				buckets[m.Category] = b
			}
			b.Tickets = append(b.Tickets, t)
			b.MatchedKeywords = append(b.MatchedKeywords, m.Keywords...)
			b.Sentiments[sentiment]++
			b.Priorities[t.Priority]++
			for _, sub := range c.tax.Def(m.Category).Subcategories {
				if anyIn(sub.Keywords, m.Keywords) {
					b.Subcategories[sub.Name] = append(b.Subcategories[sub.Name], t.ID)
				}
			}
		}
	}

	out := make([]*Bucket, 0, len(buckets))
	for _, cat := range Categories {
		if b, ok := buckets[cat]; ok {
			out = append(out, b)
		}
	}
	return out, uncategorized
}

func anyIn(needles, haystack []string) bool {
	for _, n := range needles {
		if containsString(haystack, n) {
			return true
		}
	}
	return false
}
