package models

// Trend classifies recent performance direction.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// RiskLevel grades how urgently a student needs attention.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// StudentInsight is the derived per-student summary. It has no
// lifecycle of its own: always rebuilt from lesson log history.
type StudentInsight struct {
	StudentID      string    `json:"studentId"`
	Trend          Trend     `json:"trend"`
	ProjectedScore float64   `json:"projectedScore"`
	Risk           RiskLevel `json:"risk"`
	Suggestion     string    `json:"suggestion"`
}

// TypeCounts tallies notes per category over a window.
type TypeCounts struct {
	Evolution  int `json:"evolution"`
	Need       int `json:"need"`
	Repertoire int `json:"repertoire"`
	Plan       int `json:"plan"`
}

// Total sums all category counts.
func (c TypeCounts) Total() int {
	return c.Evolution + c.Need + c.Repertoire + c.Plan
}

// StudentNeed ranks a student by recent need-note volume.
type StudentNeed struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"student"`
	Count       int    `json:"count"`
}

// DayScore is one bucket of the per-day activity series.
type DayScore struct {
	Day   string `json:"day"`
	Score int    `json:"score"`
}

// ClassReport is the derived per-class summary.
type ClassReport struct {
	ClassID      string        `json:"classId"`
	ClassName    string        `json:"className"`
	GeneratedAt  int64         `json:"generatedAt"`
	Last30Counts TypeCounts    `json:"last30Counts"`
	Health       int           `json:"health"`
	Trend        Trend         `json:"trend"`
	TopNeeds     []StudentNeed `json:"topNeeds"`
	Suggestions  []string      `json:"suggestions"`
	Series       []DayScore    `json:"series"`
}

// ProjectionRequest feeds the optional online projection endpoint.
type ProjectionRequest struct {
	Evolutions []float64 `json:"evolutions"`
}

// ProjectionResult is the smoothed online projection.
type ProjectionResult struct {
	Trend          float64 `json:"trend"`
	ProjectionNext float64 `json:"projectionNext"`
	Recommendation string  `json:"recommendation"`
}
