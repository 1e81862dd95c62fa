package analysis

import "testing"

func TestLadderBoundaries(t *testing.T) {
	floatCases := []struct {
		name   string
		ladder Ladder[float64]
		in     float64
		want   float64
	}{
		{"SeverityVolumeTop", SeverityVolume, 20, 0.30},
		{"SeverityVolumeInclusive", SeverityVolume, 3, 0.15},
		{"SeverityVolumeBelowThree", SeverityVolume, 2, 0.10},
		{"SeverityVolumeZero", SeverityVolume, 0, 0},
		{"ImpactVolume", ImpactVolume, 10, 2.5},
		{"ImpactSentimentStrict", ImpactSentiment, 0.8, 1.5},
		{"ImpactSentimentAbove", ImpactSentiment, 0.81, 2},
		{"ImpactSentimentFloor", ImpactSentiment, 0.2, 0},
		{"ImpactTimeStrict", ImpactTime, 0.4, 0.4},
		{"ImpactTimeFull", ImpactTime, 1, 1.5},
	}
	for _, tt := range floatCases {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ladder.Lookup(tt.in); got != tt.want {
				t.Errorf("Lookup(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	sevCases := []struct {
		in   float64
		want Severity
	}{
		{1, SeverityCritical},
		{0.7, SeverityCritical},
		{0.69, SeverityHigh},
		{0.5, SeverityHigh},
		{0.3, SeverityMedium},
		{0.25, SeverityLow},
		{0.05, SeverityLow},
	}
	for _, tt := range sevCases {
		if got := SeverityLevel(tt.in); got != tt.want {
			t.Errorf("SeverityLevel(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}

	impCases := []struct {
		in   float64
		want ImpactLevel
	}{
		{7, ImpactHigh},
		{6.9, ImpactMedium},
		{4, ImpactMedium},
		{3.9, ImpactLow},
	}
	for _, tt := range impCases {
		if got := ImpactLevels.Lookup(tt.in); got != tt.want {
			t.Errorf("ImpactLevels.Lookup(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
