package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/SeamusWaldron/nxncube/internal/storage"
)

// TrendReport compares solved sessions over time.
type TrendReport struct {
	TotalSessions    int             `json:"total_sessions"`
	SolvedSessions   int             `json:"solved_sessions"`
	DateRange        DateRange       `json:"date_range"`
	AvgDurationMs    float64         `json:"avg_duration_ms"`
	AvgMoves         float64         `json:"avg_moves"`
	AvgTPS           float64         `json:"avg_tps"`
	Best             SessionStat     `json:"best"`
	Worst            SessionStat     `json:"worst"`
	ImprovementPct   float64         `json:"improvement_pct"`
	ConsistencyScore float64         `json:"consistency_score"`
	RollingAvgs      map[int]float64 `json:"rolling_averages"`
	Sessions         []SessionStat   `json:"sessions"`
}

// DateRange represents a date range.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SessionStat is one solved session in a trend report.
type SessionStat struct {
	SessionID  string  `json:"session_id"`
	Timestamp  string  `json:"timestamp"`
	Dimension  int     `json:"dimension"`
	DurationMs int64   `json:"duration_ms"`
	MoveCount  int     `json:"move_count"`
	TPS        float64 `json:"tps"`
}

// AnalyzeTrends reports averages, extremes and improvement over the solved
// sessions among rows. moveCounts maps session ids to live move counts.
func AnalyzeTrends(rows []storage.Session, moveCounts map[string]int) *TrendReport {
	report := &TrendReport{
		TotalSessions: len(rows),
		RollingAvgs:   make(map[int]float64),
	}

	sorted := append([]storage.Session(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.Before(sorted[j].StartedAt)
	})

	for _, s := range sorted {
		if !s.Solved || s.DurationMs == nil || *s.DurationMs <= 0 {
			continue
		}
		n := moveCounts[s.SessionID]
		report.Sessions = append(report.Sessions, SessionStat{
			SessionID:  s.SessionID,
			Timestamp:  s.StartedAt.Format(time.RFC3339),
			Dimension:  s.Dimension,
			DurationMs: *s.DurationMs,
			MoveCount:  n,
			TPS:        CalculateTPS(n, *s.DurationMs),
		})
	}

	solved := report.Sessions
	report.SolvedSessions = len(solved)
	if len(solved) == 0 {
		return report
	}

	report.DateRange = DateRange{Start: solved[0].Timestamp, End: solved[len(solved)-1].Timestamp}

	var totalDuration, totalMoves int64
	var totalTPS float64
	report.Best, report.Worst = solved[0], solved[0]
	for _, s := range solved {
		totalDuration += s.DurationMs
		totalMoves += int64(s.MoveCount)
		totalTPS += s.TPS
		if s.DurationMs < report.Best.DurationMs {
			report.Best = s
		}
		if s.DurationMs > report.Worst.DurationMs {
			report.Worst = s
		}
	}

	n := float64(len(solved))
	report.AvgDurationMs = float64(totalDuration) / n
	report.AvgMoves = float64(totalMoves) / n
	report.AvgTPS = totalTPS / n

	report.ImprovementPct = improvement(solved)
	report.ConsistencyScore = consistency(solved)

	for _, w := range []int{5, 10, 25, 50} {
		if len(solved) < w {
			break
		}
		var sum int64
		for _, s := range solved[len(solved)-w:] {
			sum += s.DurationMs
		}
		report.RollingAvgs[w] = float64(sum) / float64(w)
	}

	return report
}

// improvement compares the mean duration of the first and last quarter.
// Positive means faster.
func improvement(solved []SessionStat) float64 {
	if len(solved) < 4 {
		return 0
	}
	q := len(solved) / 4

	var first, last int64
	for i := 0; i < q; i++ {
		first += solved[i].DurationMs
		last += solved[len(solved)-1-i].DurationMs
	}
	if first <= 0 {
		return 0
	}
	return float64(first-last) / float64(first) * 100
}

// consistency maps the coefficient of variation of durations onto 0-100.
func consistency(solved []SessionStat) float64 {
	if len(solved) < 2 {
		return 100
	}

	var sum float64
	for _, s := range solved {
		sum += float64(s.DurationMs)
	}
	mean := sum / float64(len(solved))
	if mean <= 0 {
		return 100
	}

	var sq float64
	for _, s := range solved {
		d := float64(s.DurationMs) - mean
		sq += d * d
	}
	cv := math.Sqrt(sq/float64(len(solved))) / mean

	return math.Max(0, math.Min(100, 100-cv*100))
}
