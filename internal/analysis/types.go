package analysis

import (
	"encoding/json"
	"time"

	"github.com/supplydesk/backend/internal/models"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "High"
	ImpactMedium ImpactLevel = "Medium"
	ImpactLow    ImpactLevel = "Low"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type Health string

const (
	HealthExcellent Health = "Excellent"
	HealthGood      Health = "Good"
	HealthPoor      Health = "Poor"
	HealthCritical  Health = "Critical"
)

// Bucket collects the tickets matched to one category during a single run.
type Bucket struct {
	Category        Category
	Tickets         []models.Ticket
	MatchedKeywords []string
	Sentiments      map[Sentiment]int
	Priorities      map[models.Priority]int
	Subcategories   map[string][]string
}

func newBucket(c Category) *Bucket {
	return &Bucket{
		Category:      c,
		Sentiments:    map[Sentiment]int{},
		Priorities:    map[models.Priority]int{},
		Subcategories: map[string][]string{},
	}
}

type TimePattern struct {
	Trend         Trend   `json:"trend"`
	Concentration float64 `json:"concentration"`
	RecentTickets int     `json:"recentTickets"`
	TotalTickets  int     `json:"totalTickets"`
}

type SentimentTrend struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

type Pattern struct {
	Category         Category                `json:"category"`
	TicketCount      int                     `json:"ticketCount"`
	TimePattern      TimePattern             `json:"timePattern"`
	TierPattern      map[models.Tier]int     `json:"customerTierPattern"`
	PriorityPattern  map[models.Priority]int `json:"priorityPattern"`
	KeywordFrequency map[string]int          `json:"keywordFrequency"`
	SentimentTrend   SentimentTrend          `json:"sentimentTrend"`
}

type ImpactBreakdown struct {
	VolumeScore    float64 `json:"volumeScore"`
	PriorityScore  float64 `json:"priorityScore"`
	SentimentScore float64 `json:"sentimentScore"`
	TimeScore      float64 `json:"timeScore"`
	TierMultiplier float64 `json:"tierMultiplier"`
}

type Impact struct {
	Score                float64         `json:"score"`
	Level                ImpactLevel     `json:"level"`
	AffectedTickets      int             `json:"affectedTickets"`
	UrgentTickets        int             `json:"urgentTickets"`
	HighPriorityTickets  int             `json:"highPriorityTickets"`
	MediumTickets        int             `json:"mediumPriorityTickets"`
	LowTickets           int             `json:"lowPriorityTickets"`
	CustomerSatisfaction int             `json:"customerSatisfaction"`
	Breakdown            ImpactBreakdown `json:"breakdown"`
}

type SampleTicket struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Text      string          `json:"-"`
	Priority  models.Priority `json:"priority"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Evidence struct {
	KeywordFrequency map[string]int      `json:"keywordFrequency"`
	TimeDistribution map[string]int      `json:"timeDistribution"`
	Subcategories    map[string][]string `json:"subcategories"`
	SampleTickets    []SampleTicket      `json:"sampleTickets"`
}

type Issue struct {
	ID                string      `json:"id"`
	Category          Category    `json:"category"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	RootCause         string      `json:"rootCause"`
	Severity          Severity    `json:"severity"`
	SeverityScore     float64     `json:"severityScore"`
	AffectedCustomers []string    `json:"affectedCustomers"`
	TicketCount       int         `json:"ticketCount"`
	TimePattern       TimePattern `json:"timePattern"`
	Recommendations   []string    `json:"recommendations"`
	Evidence          Evidence    `json:"evidence"`
	Impact            Impact      `json:"impact"`
	LastDetected      time.Time   `json:"lastDetected"`
	Status            string      `json:"status"`
}

const IssueStatusActive = "active"

type RecommendationType string

const (
	RecommendationCritical RecommendationType = "critical_action"
	RecommendationProcess  RecommendationType = "process_improvement"
	RecommendationCategory RecommendationType = "category_specific"
)

type Recommendation struct {
	Type     RecommendationType `json:"type"`
	Priority string             `json:"priority"`
	Title    string             `json:"title"`
	Category Category           `json:"category,omitempty"`
	Actions  []string           `json:"actions"`
}

type Summary struct {
	TotalIssues           int      `json:"totalIssues"`
	CriticalIssues        int      `json:"criticalIssues"`
	HighIssues            int      `json:"highIssues"`
	MediumIssues          int      `json:"mediumIssues"`
	LowIssues             int      `json:"lowIssues"`
	CategoriesAffected    int      `json:"categoriesAffected"`
	OverallHealth         Health   `json:"overallHealth"`
	HighestImpactCategory Category `json:"highestImpactCategory,omitempty"`
}

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// Report is the result of one analysis run. An empty window yields only
// Message and an empty Issues list; every other report carries all of the
// analysis sections, empty or not.
type Report struct {
	Message              string               `json:"message,omitempty"`
	AnalysisDate         time.Time            `json:"analysisDate"`
	TotalTicketsAnalyzed int                  `json:"totalTicketsAnalyzed"`
	TimeRange            *TimeRange           `json:"timeRange"`
	Issues               []Issue              `json:"issues"`
	Patterns             map[Category]Pattern `json:"patterns"`
	Recommendations      []Recommendation     `json:"recommendations"`
	ImpactAnalysis       map[Category]Impact  `json:"impactAnalysis"`
	Summary              *Summary             `json:"summary"`
}

// Empty reports whether r is the empty-window result.
func (r Report) Empty() bool {
	return r.Summary == nil && r.Message != ""
}

type emptyReport struct {
	Message string  `json:"message"`
	Issues  []Issue `json:"issues"`
}

func (r Report) MarshalJSON() ([]byte, error) {
	if r.Empty() {
		return json.Marshal(emptyReport{Message: r.Message, Issues: nonNil(r.Issues)})
	}
	type report Report
	out := report(r)
	out.Issues = nonNil(out.Issues)
	out.Recommendations = nonNil(out.Recommendations)
	if out.Patterns == nil {
		out.Patterns = map[Category]Pattern{}
	}
	if out.ImpactAnalysis == nil {
		out.ImpactAnalysis = map[Category]Impact{}
	}
	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type TriageResult struct {
	TicketID      string   `json:"ticketId"`
	Category      Category `json:"category"`
	RelatedIssues []Issue  `json:"relatedIssues"`
	Suggestions   []string `json:"suggestions"`
	RiskLevel     Severity `json:"riskLevel"`
}
