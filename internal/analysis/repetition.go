package analysis

import (
	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

// Cancellation is a move immediately turned straight back (#4 X+90, #4 X-90).
type Cancellation struct {
	Index1 int    `json:"index1"`
	Index2 int    `json:"index2"`
	Move1  string `json:"move1"`
	Move2  string `json:"move2"`
	TsMs   int64  `json:"ts_ms"`
}

// MergeOpportunity is a pair of adjacent turns of one slice that a single
// turn could replace.
type MergeOpportunity struct {
	Index1     int    `json:"index1"`
	Index2     int    `json:"index2"`
	Move1      string `json:"move1"`
	Move2      string `json:"move2"`
	MergedMove string `json:"merged_move"`
	TsMs       int64  `json:"ts_ms"`
}

// BackAndForthPattern is a pair of moves repeated in alternation.
type BackAndForthPattern struct {
	StartIndex int      `json:"start_index"`
	EndIndex   int      `json:"end_index"`
	Pattern    []string `json:"pattern"`
	Count      int      `json:"count"`
	TsMs       int64    `json:"ts_ms"`
}

// RepetitionReport contains all repetition analysis results.
type RepetitionReport struct {
	ImmediateCancellations []Cancellation        `json:"immediate_cancellations"`
	MergeOpportunities     []MergeOpportunity    `json:"merge_opportunities"`
	BackAndForthPatterns   []BackAndForthPattern `json:"back_and_forth_patterns"`
	TotalWastedMoves       int                   `json:"total_wasted_moves"`
	OptimizedLength        int                   `json:"optimized_length"`
	Efficiency             float64               `json:"efficiency"`
}

// sameSlice reports whether two consecutive moves turn the same slice. A
// move keeps its reference cubie inside the slice it turned, so the same
// cubie on the same axis names the same slice.
func sameSlice(a, b history.MoveRecord) bool {
	return a.CubieID == b.CubieID && a.Axis() == b.Axis()
}

// mergeMoves combines two turns of one slice. It returns false when they
// cancel out.
func mergeMoves(a, b history.MoveRecord) (history.MoveRecord, bool) {
	deg := (a.Degrees() + b.Degrees()) % 360
	switch {
	case deg == 0:
		return history.MoveRecord{}, false
	case deg > 180:
		deg -= 360
	case deg <= -180:
		deg += 360
	}
	return history.MoveRecord{CubieID: a.CubieID, Rotation: lattice.OnAxis(a.Axis(), deg)}, true
}

// AnalyzeRepetitions looks for wasted motion in the live moves of rows.
// Undone rows are skipped; indices refer to the live sequence.
func AnalyzeRepetitions(rows []storage.MoveRow) *RepetitionReport {
	report := &RepetitionReport{
		ImmediateCancellations: []Cancellation{},
		MergeOpportunities:     []MergeOpportunity{},
		BackAndForthPatterns:   []BackAndForthPattern{},
		Efficiency:             1,
	}

	live := make([]storage.MoveRow, 0, len(rows))
	for _, r := range rows {
		if !r.Undone() {
			live = append(live, r)
		}
	}
	moves := storage.ToRecords(live)
	report.OptimizedLength = len(moves)

	if len(moves) < 2 {
		return report
	}

	for i := 0; i < len(moves)-1; i++ {
		m1, m2 := moves[i], moves[i+1]
		if !sameSlice(m1, m2) {
			continue
		}

		merged, ok := mergeMoves(m1, m2)
		if !ok {
			report.ImmediateCancellations = append(report.ImmediateCancellations, Cancellation{
				Index1: i,
				Index2: i + 1,
				Move1:  m1.Notation(),
				Move2:  m2.Notation(),
				TsMs:   live[i].TsMs,
			})
			report.TotalWastedMoves += 2
			continue
		}

		report.MergeOpportunities = append(report.MergeOpportunities, MergeOpportunity{
			Index1:     i,
			Index2:     i + 1,
			Move1:      m1.Notation(),
			Move2:      m2.Notation(),
			MergedMove: merged.Notation(),
			TsMs:       live[i].TsMs,
		})
		report.TotalWastedMoves++
	}

	report.BackAndForthPatterns = findBackAndForth(moves, live)

	optimized := OptimizeMoves(moves)
	report.OptimizedLength = len(optimized)
	report.Efficiency = CalculateEfficiency(moves, optimized)

	return report
}

// findBackAndForth finds a pair of moves repeated at least three times in a
// row, like #4 X+90 #10 Y+90 #4 X+90 #10 Y+90 #4 X+90 #10 Y+90.
func findBackAndForth(moves []history.MoveRecord, rows []storage.MoveRow) []BackAndForthPattern {
	var patterns []BackAndForthPattern

	if len(moves) < 4 {
		return patterns
	}

	i := 0
	for i < len(moves)-3 {
		a, b := moves[i], moves[i+1]

		count := 1
		j := i + 2
		for j < len(moves)-1 && moves[j] == a && moves[j+1] == b {
			count++
			j += 2
		}

		if count >= 3 {
			patterns = append(patterns, BackAndForthPattern{
				StartIndex: i,
				EndIndex:   i + count*2 - 1,
				Pattern:    []string{a.Notation(), b.Notation()},
				Count:      count,
				TsMs:       rows[i].TsMs,
			})
			i = j
		} else {
			i++
		}
	}

	return patterns
}

// OptimizeMoves folds adjacent turns of one slice together and drops pairs
// that cancel. The result leaves the lattice in the same state.
func OptimizeMoves(moves []history.MoveRecord) []history.MoveRecord {
	result := make([]history.MoveRecord, 0, len(moves))

	for _, move := range moves {
		if len(result) == 0 {
			result = append(result, move)
			continue
		}

		last := &result[len(result)-1]
		if !sameSlice(*last, move) {
			result = append(result, move)
			continue
		}

		if merged, ok := mergeMoves(*last, move); ok {
			*last = merged
		} else {
			result = result[:len(result)-1]
		}
	}

	return result
}

// CalculateEfficiency returns len(optimized)/len(original).
func CalculateEfficiency(original, optimized []history.MoveRecord) float64 {
	if len(original) == 0 {
		return 1.0
	}
	return float64(len(optimized)) / float64(len(original))
}
