package analysis

// Step maps a lower bound to a value.
type Step[T any] struct {
	Min   float64
	Value T
}

// Ladder is an ordered threshold table. Steps are listed highest bound first;
// Lookup returns the value of the first step the input clears, or Default.
// Strict ladders require input > Min, inclusive ones input >= Min.
type Ladder[T any] struct {
	Strict  bool
	Steps   []Step[T]
	Default T
}

func (l Ladder[T]) Lookup(x float64) T {
	for _, s := range l.Steps {
		if l.Strict && x > s.Min || !l.Strict && x >= s.Min {
			return s.Value
		}
	}
	return l.Default
}

// Volume ladders share their bounds: severity and impact read the same ticket
// counts, they only map them to different scales.
var volumeBounds = []float64{20, 10, 5, 3, 1}

func volumeLadder(values ...float64) Ladder[float64] {
	steps := make([]Step[float64], len(volumeBounds))
	for i, b := range volumeBounds {
		steps[i] = Step[float64]{Min: b, Value: values[i]}
	}
	return Ladder[float64]{Steps: steps}
}

var (
	SeverityVolume = volumeLadder(0.30, 0.25, 0.20, 0.15, 0.10)
	ImpactVolume   = volumeLadder(3, 2.5, 2, 1.5, 1)

	ImpactSentiment = Ladder[float64]{Strict: true, Steps: []Step[float64]{
		{0.8, 2}, {0.6, 1.5}, {0.4, 1}, {0.2, 0.5},
	}}

	ImpactTime = Ladder[float64]{Strict: true, Steps: []Step[float64]{
		{0.8, 1.5}, {0.6, 1.2}, {0.4, 0.8}, {0.2, 0.4},
	}}

	SeverityLevels = Ladder[Severity]{Steps: []Step[Severity]{
		{0.7, SeverityCritical}, {0.5, SeverityHigh}, {0.3, SeverityMedium}, {0.1, SeverityLow},
	}, Default: SeverityLow}

	ImpactLevels = Ladder[ImpactLevel]{Steps: []Step[ImpactLevel]{
		{7, ImpactHigh}, {4, ImpactMedium},
	}, Default: ImpactLow}
)

const (
	// MinIssueTickets is the bucket size below which no issue is raised.
	MinIssueTickets = 3
	// MinIssueSeverity is the severity score below which no issue is raised.
	MinIssueSeverity = 0.2

	spikeConcentration = 0.7
	negativeMajority   = 0.6
)
