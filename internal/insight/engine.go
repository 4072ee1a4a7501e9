// Package insight derives trend, projection, risk and suggestion summaries
// from lesson log history. Everything here is a pure function of its inputs
// plus an injected clock; no storage or network is touched.
package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/profpocket/pocket-api/internal/models"
)

const (
	studentWindow    = 6
	trendThreshold   = 0.6
	needPenaltyStep  = 0.08
	needPenaltyCap   = 1.2
	staleDaysMedium  = 21
	staleDaysHigh    = 45
	noHistoryDays    = 999
	reportWindowDays = 30
	needRankDays     = 14
	needRankLimit    = 5
	seriesDays       = 21
)

// Engine computes insight summaries. The clock is injected so callers can
// pin window boundaries in tests.
type Engine struct {
	now func() time.Time
}

// New returns an Engine using the provided clock, or time.Now when nil.
func New(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// suggestionRule maps a predicate over the computed facts to a message.
// Rules are evaluated in order and the last matching message wins, so the
// override order is an explicit contract rather than statement order.
type suggestionRule struct {
	applies func(f studentFacts) bool
	message func(f studentFacts) string
}

type studentFacts struct {
	trend     models.Trend
	risk      models.RiskLevel
	topNeed   string
	hasNeed   bool
	projected float64
}

var studentRules = []suggestionRule{
	{
		applies: func(studentFacts) bool { return true },
		message: func(studentFacts) string { return "Keep the routine and keep recording progress." },
	},
	{
		applies: func(f studentFacts) bool { return f.risk != models.RiskLow },
		message: func(studentFacts) string {
			return "Reinforce fundamentals and revisit the goals for the next lesson."
		},
	},
	{
		applies: func(f studentFacts) bool { return f.hasNeed },
		message: func(f studentFacts) string {
			return fmt.Sprintf("Suggested focus: %s. Build a 10-minute mini plan around it.", f.topNeed)
		},
	},
	{
		applies: func(f studentFacts) bool { return f.trend == models.TrendUp },
		message: func(studentFacts) string {
			return "Positive momentum: raise the difficulty gradually and log new repertoire."
		},
	},
}

// Student summarises a single student's history. Only the most recent
// six logs (by date) participate; earlier history is ignored.
func (e *Engine) Student(studentID string, logs []models.LessonLog) models.StudentInsight {
	window := recentWindow(logs, studentWindow)
	n := len(window)

	trend := models.TrendFlat
	if n >= 4 {
		mid := n / 2
		first := meanScore(window[:mid])
		second := meanScore(window[mid:])
		switch {
		case second-first > trendThreshold:
			trend = models.TrendUp
		case first-second > trendThreshold:
			trend = models.TrendDown
		}
	}

	// Recency-weighted mean: the latest entry carries weight n.
	var weightSum, scoreSum float64
	for i, l := range window {
		w := float64(i + 1)
		weightSum += w
		scoreSum += l.EvolutionScore * w
	}
	projected := 0.0
	if weightSum > 0 {
		projected = scoreSum / weightSum
	}

	needCounts := map[string]int{}
	needsTotal := 0
	for _, l := range window {
		for _, tag := range l.Needs {
			needCounts[tag]++
			needsTotal++
		}
	}
	projected -= clampFloat(float64(needsTotal)*needPenaltyStep, 0, needPenaltyCap)
	projected = clampFloat(projected, 0, 10)
	projected = math.Round(projected*10) / 10

	daysSince := float64(noHistoryDays)
	if n > 0 {
		last := window[n-1].Date
		daysSince = float64(e.now().UnixMilli()-last) / float64(24*time.Hour/time.Millisecond)
	}

	risk := models.RiskLow
	if trend == models.TrendDown || projected < 4 {
		risk = models.RiskMedium
	}
	if (trend == models.TrendDown && (projected < 3.5 || daysSince > staleDaysMedium)) || daysSince > staleDaysHigh {
		risk = models.RiskHigh
	}

	topNeed, hasNeed := mostFrequentNeed(needCounts)
	facts := studentFacts{trend: trend, risk: risk, topNeed: topNeed, hasNeed: hasNeed, projected: projected}

	suggestion := ""
	for _, rule := range studentRules {
		if rule.applies(facts) {
			suggestion = rule.message(facts)
		}
	}

	return models.StudentInsight{
		StudentID:      studentID,
		Trend:          trend,
		ProjectedScore: projected,
		Risk:           risk,
		Suggestion:     suggestion,
	}
}

// ClassReport summarises a class from its notes and roster.
func (e *Engine) ClassReport(classID, className string, notes []models.LessonLog, students []models.Student) models.ClassReport {
	now := e.now()
	nowMs := now.UnixMilli()
	dayMs := int64(24 * time.Hour / time.Millisecond)

	var counts models.TypeCounts
	for _, n := range notes {
		if nowMs-n.Date > reportWindowDays*dayMs {
			continue
		}
		switch n.Type {
		case models.NoteEvolution:
			counts.Evolution++
		case models.NoteNeed:
			counts.Need++
		case models.NoteRepertoire:
			counts.Repertoire++
		case models.NotePlan:
			counts.Plan++
		}
	}

	total := counts.Total()
	planRatio, needRatio := 0.0, 0.0
	if total > 0 {
		planRatio = float64(counts.Plan) / float64(total)
		needRatio = float64(counts.Need) / float64(total)
	}
	health := 50 + min(25, total) + int(math.Round(20*planRatio)) - int(math.Round(15*needRatio))
	health = clampInt(health, 0, 100)

	topNeeds := rankNeeds(notes, students, nowMs, dayMs)

	var last7, prev7 int
	for _, n := range notes {
		age := nowMs - n.Date
		switch {
		case age <= 7*dayMs:
			last7++
		case age <= 14*dayMs:
			prev7++
		}
	}
	trend := models.TrendFlat
	if last7 > prev7 {
		trend = models.TrendUp
	} else if last7 < prev7 {
		trend = models.TrendDown
	}

	var suggestions []string
	if counts.Plan == 0 {
		suggestions = append(suggestions, "No lesson plans recorded this month: sketch the next lesson before it starts.")
	}
	if counts.Repertoire == 0 {
		suggestions = append(suggestions, "No repertoire notes this month: log what the class is actually playing.")
	}
	if len(topNeeds) > 0 {
		suggestions = append(suggestions, "Set aside individual correction time for the students with repeated needs.")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Keep going: the note balance looks healthy.")
	}

	return models.ClassReport{
		ClassID:      classID,
		ClassName:    className,
		GeneratedAt:  nowMs,
		Last30Counts: counts,
		Health:       health,
		Trend:        trend,
		TopNeeds:     topNeeds,
		Suggestions:  suggestions,
		Series:       dailySeries(notes),
	}
}

func rankNeeds(notes []models.LessonLog, students []models.Student, nowMs, dayMs int64) []models.StudentNeed {
	byStudent := map[string]int{}
	for _, n := range notes {
		if n.Type != models.NoteNeed || n.StudentID == "" {
			continue
		}
		if nowMs-n.Date > needRankDays*dayMs {
			continue
		}
		byStudent[n.StudentID]++
	}
	if len(byStudent) == 0 {
		return nil
	}

	names := make(map[string]string, len(students))
	for _, s := range students {
		names[s.ID] = s.Name
	}

	ranked := make([]models.StudentNeed, 0, len(byStudent))
	for id, count := range byStudent {
		name, ok := names[id]
		if !ok {
			name = "Unknown student"
		}
		ranked = append(ranked, models.StudentNeed{StudentID: id, StudentName: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].StudentID < ranked[j].StudentID
	})
	if len(ranked) > needRankLimit {
		ranked = ranked[:needRankLimit]
	}
	return ranked
}

// dailySeries buckets every note into a per-day activity score:
// evolution +2, need -2, repertoire and plan +1. The last 21 buckets with
// activity are returned, oldest first.
func dailySeries(notes []models.LessonLog) []models.DayScore {
	byDay := map[string]int{}
	for _, n := range notes {
		day := time.UnixMilli(n.Date).UTC().Format("2006-01-02")
		delta := 1
		switch n.Type {
		case models.NoteEvolution:
			delta = 2
		case models.NoteNeed:
			delta = -2
		}
		byDay[day] += delta
	}
	if len(byDay) == 0 {
		return nil
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	if len(days) > seriesDays {
		days = days[len(days)-seriesDays:]
	}

	series := make([]models.DayScore, 0, len(days))
	for _, day := range days {
		series = append(series, models.DayScore{Day: day, Score: byDay[day]})
	}
	return series
}

func recentWindow(logs []models.LessonLog, size int) []models.LessonLog {
	sorted := make([]models.LessonLog, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	if len(sorted) > size {
		sorted = sorted[len(sorted)-size:]
	}
	return sorted
}

func meanScore(logs []models.LessonLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	sum := 0.0
	for _, l := range logs {
		sum += l.EvolutionScore
	}
	return sum / float64(len(logs))
}

func mostFrequentNeed(counts map[string]int) (string, bool) {
	top, best := "", 0
	for tag, count := range counts {
		if count > best || (count == best && best > 0 && tag < top) {
			top, best = tag, count
		}
	}
	return top, best > 0
}

func clampFloat(n, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, n))
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
