package analysis

import "strings"

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// SentimentClassifier labels text by counting lexicon hits per whitespace token.
type SentimentClassifier struct {
	positive []string
	negative []string
}

func NewSentimentClassifier(lex Lexicon) SentimentClassifier {
	return SentimentClassifier{
		positive: lowerAll(lex.Positive),
		negative: lowerAll(lex.Negative),
	}
}

// Classify returns positive or negative when one side has strictly more token
// hits, neutral otherwise. A token counts when it contains a lexicon word, so
// "terrible!" hits just like "terrible".
func (s SentimentClassifier) Classify(text string) Sentiment {
	var pos, neg int
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if containsAnySubstring(token, s.positive) {
			pos++
		}
		if containsAnySubstring(token, s.negative) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func containsAnySubstring(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
