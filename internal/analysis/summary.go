// Package analysis derives statistics from recorded play sessions.
package analysis

import (
	"time"

	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

// DefaultPauseThresholdMs is the gap after which a break between moves
// counts as a pause.
const DefaultPauseThresholdMs = 1500

// SessionSummary contains statistics for a single play session.
type SessionSummary struct {
	SessionID          string           `json:"session_id"`
	StartedAt          string           `json:"started_at"`
	EndedAt            string           `json:"ended_at,omitempty"`
	Dimension          int              `json:"dimension"`
	Solved             bool             `json:"solved"`
	DurationMs         int64            `json:"duration_ms"`
	TotalMoves         int              `json:"total_moves"`
	UndoneMoves        int              `json:"undone_moves"`
	NetMoves           int              `json:"net_moves"`
	Cancellations      int              `json:"cancellations"`
	TPSOverall         float64          `json:"tps_overall"`
	PhaseStats         []PhaseStats     `json:"phase_stats,omitempty"`
	LongestPauseMs     int64            `json:"longest_pause_ms"`
	PauseCountOver1500 int              `json:"pause_count_over_1500ms"`
	AvgMoveDurationMs  float64          `json:"avg_move_duration_ms"`
	Profile            *MovementProfile `json:"profile"`
	Notes              string           `json:"notes,omitempty"`
}

// PhaseStats contains statistics for a single phase.
type PhaseStats struct {
	PhaseKey   string  `json:"phase_key"`
	StartTsMs  int64   `json:"start_ts_ms"`
	EndTsMs    int64   `json:"end_ts_ms"`
	DurationMs int64   `json:"duration_ms"`
	MoveCount  int     `json:"move_count"`
	TPS        float64 `json:"tps"`
}

// PauseInfo represents a pause between two moves.
type PauseInfo struct {
	AfterMoveIndex int   `json:"after_move_index"`
	DurationMs     int64 `json:"duration_ms"`
	TsMs           int64 `json:"ts_ms"`
}

// Summarize builds the summary of one session. end is used as the session
// end when the row has no duration yet.
func Summarize(s storage.Session, moves []storage.MoveRow, marks []storage.PhaseMark, end time.Time) *SessionSummary {
	sum := &SessionSummary{
		SessionID:  s.SessionID,
		StartedAt:  s.StartedAt.Format(time.RFC3339),
		Dimension:  s.Dimension,
		Solved:     s.Solved,
		TotalMoves: len(moves),
	}
	if s.EndedAt != nil {
		sum.EndedAt = s.EndedAt.Format(time.RFC3339)
	}
	if s.Notes != nil {
		sum.Notes = *s.Notes
	}

	if s.DurationMs != nil {
		sum.DurationMs = *s.DurationMs
	} else {
		sum.DurationMs = end.Sub(s.StartedAt).Milliseconds()
	}

	live := make([]storage.MoveRow, 0, len(moves))
	for _, m := range moves {
		if m.Undone() {
			sum.UndoneMoves++
			continue
		}
		live = append(live, m)
	}
	sum.NetMoves = len(live)

	sum.Cancellations = CountCancellations(live)
	sum.TPSOverall = CalculateTPS(len(moves), sum.DurationMs)
	sum.LongestPauseMs = FindLongestPause(moves)
	sum.PauseCountOver1500 = CountPausesOver(moves, DefaultPauseThresholdMs)
	sum.AvgMoveDurationMs = CalculateAvgMoveDuration(moves)
	sum.Profile = AnalyzeMovementProfile(live)

	segs := storage.Segments(marks, sum.DurationMs)
	for i, seg := range segs {
		hi := seg.EndTsMs
		if i == len(segs)-1 {
			// the last segment includes a move made exactly at the end
			hi++
		}
		n := countInRange(moves, seg.StartTsMs, hi)
		sum.PhaseStats = append(sum.PhaseStats, PhaseStats{
			PhaseKey:   seg.PhaseKey,
			StartTsMs:  seg.StartTsMs,
			EndTsMs:    seg.EndTsMs,
			DurationMs: seg.DurationMs,
			MoveCount:  n,
			TPS:        CalculateTPS(n, seg.DurationMs),
		})
	}

	return sum
}

// countInRange counts moves with start <= ts < end.
func countInRange(moves []storage.MoveRow, start, end int64) int {
	n := 0
	for _, m := range moves {
		if m.TsMs >= start && m.TsMs < end {
			n++
		}
	}
	return n
}

// AnalyzePauses finds all gaps of at least thresholdMs between moves.
func AnalyzePauses(moves []storage.MoveRow, thresholdMs int64) []PauseInfo {
	var pauses []PauseInfo

	for i := 1; i < len(moves); i++ {
		gap := moves[i].TsMs - moves[i-1].TsMs
		if gap >= thresholdMs {
			pauses = append(pauses, PauseInfo{
				AfterMoveIndex: moves[i-1].MoveIndex,
				DurationMs:     gap,
				TsMs:           moves[i-1].TsMs,
			})
		}
	}

	return pauses
}

// CalculateTPS calculates turns per second.
func CalculateTPS(moveCount int, durationMs int64) float64 {
	if durationMs <= 0 {
		return 0
	}
	return float64(moveCount) / (float64(durationMs) / 1000.0)
}

// CalculateAvgMoveDuration calculates the average time between moves.
func CalculateAvgMoveDuration(moves []storage.MoveRow) float64 {
	if len(moves) < 2 {
		return 0
	}

	totalGap := moves[len(moves)-1].TsMs - moves[0].TsMs
	return float64(totalGap) / float64(len(moves)-1)
}

// FindLongestPause finds the longest gap between consecutive moves.
func FindLongestPause(moves []storage.MoveRow) int64 {
	var longest int64

	for i := 1; i < len(moves); i++ {
		gap := moves[i].TsMs - moves[i-1].TsMs
		if gap > longest {
			longest = gap
		}
	}

	return longest
}

// CountPausesOver counts gaps longer than thresholdMs.
func CountPausesOver(moves []storage.MoveRow, thresholdMs int64) int {
	count := 0
	for i := 1; i < len(moves); i++ {
		gap := moves[i].TsMs - moves[i-1].TsMs
		if gap > thresholdMs {
			count++
		}
	}
	return count
}

// CountCancellations counts adjacent pairs where the second move turns the
// same slice straight back.
func CountCancellations(moves []storage.MoveRow) int {
	n := 0
	for i := 1; i < len(moves); i++ {
		a, b := moves[i-1].Record(), moves[i].Record()
		if a.Axis() == b.Axis() && a.CubieID == b.CubieID && (a.Degrees()+b.Degrees())%360 == 0 {
			n++
		}
	}
	return n
}

// MovementProfile reports which axes and turn sizes a player favours.
type MovementProfile struct {
	AxisCounts    map[string]int `json:"axis_counts"`
	TurnCounts    map[int]int    `json:"turn_counts"`
	MostUsedAxis  string         `json:"most_used_axis"`
	MostUsedTurn  int            `json:"most_used_turn"`
	AxisSequences map[string]int `json:"axis_sequences"` // e.g. "XY" -> count
}

// AnalyzeMovementProfile tallies axes, signed turn sizes and axis pairs.
func AnalyzeMovementProfile(moves []storage.MoveRow) *MovementProfile {
	profile := &MovementProfile{
		AxisCounts:    make(map[string]int),
		TurnCounts:    make(map[int]int),
		AxisSequences: make(map[string]int),
	}

	for i, m := range moves {
		profile.AxisCounts[m.Axis]++
		profile.TurnCounts[m.Degrees]++

		if i > 0 {
			profile.AxisSequences[moves[i-1].Axis+m.Axis]++
		}
	}

	// Ties resolve in X, Y, Z order so the result is stable.
	maxAxis := 0
	for _, a := range []lattice.Axis{lattice.AxisX, lattice.AxisY, lattice.AxisZ} {
		if c := profile.AxisCounts[a.String()]; c > maxAxis {
			maxAxis = c
			profile.MostUsedAxis = a.String()
		}
	}

	maxTurn := 0
	for _, d := range turnSizes {
		if c := profile.TurnCounts[d]; c > maxTurn {
			maxTurn = c
			profile.MostUsedTurn = d
		}
	}

	return profile
}
