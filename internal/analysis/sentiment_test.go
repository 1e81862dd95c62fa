package analysis

import "testing"

func TestSentimentClassify(t *testing.T) {
	c := NewSentimentClassifier(DefaultTaxonomy.Sentiment)
	tests := []struct {
		name string
		text string
		want Sentiment
	}{
		{"Negative", "This is terrible and awful", SentimentNegative},
		{"Positive", "Great service, thank you", SentimentPositive},
		{"Tie", "good packaging but bad courier", SentimentNeutral},
		{"Empty", "", SentimentNeutral},
		{"NoHits", "package arrived on tuesday", SentimentNeutral},
		{"Punctuation", "TERRIBLE!!! just terrible.", SentimentNegative},
		{"SubstringHit", "absolutely unacceptable, frustrated", SentimentNegative},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestSentimentTokenCountsOncePerSide(t *testing.T) {
	c := NewSentimentClassifier(Lexicon{Positive: []string{"good"}, Negative: []string{"bad", "badly"}})
	// "badly" contains both negative words but is one token.
	if got := c.Classify("badly good"); got != SentimentNeutral {
		t.Fatalf("expected neutral, got %s", got)
	}
}
