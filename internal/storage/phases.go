package storage

import (
	"fmt"
)

// PhaseMark records the moment a session entered a phase.
type PhaseMark struct {
	PhaseMarkID int64
	SessionID   string
	TsMs        int64
	PhaseKey    string
	Notes       *string
}

// PhaseSegment is the time spent in one phase, derived from consecutive marks.
type PhaseSegment struct {
	PhaseKey   string
	StartTsMs  int64
	EndTsMs    int64
	DurationMs int64
}

// PhaseRepository provides CRUD operations for phase marks.
type PhaseRepository struct {
	db *DB
}

// NewPhaseRepository creates a new phase repository.
func NewPhaseRepository(db *DB) *PhaseRepository {
	return &PhaseRepository{db: db}
}

// CreatePhaseMark records that a session entered phaseKey at tsMs.
func (r *PhaseRepository) CreatePhaseMark(sessionID string, tsMs int64, phaseKey string, notes string) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO phase_marks (session_id, ts_ms, phase_key, notes)
		VALUES (?, ?, ?, ?)
	`, sessionID, tsMs, phaseKey, nullable(notes))

	if err != nil {
		return 0, fmt.Errorf("failed to create phase mark: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get phase mark ID: %w", err)
	}

	return id, nil
}

// GetPhaseMarks retrieves all phase marks for a session in order.
func (r *PhaseRepository) GetPhaseMarks(sessionID string) ([]PhaseMark, error) {
	rows, err := r.db.Query(`
		SELECT phase_mark_id, session_id, ts_ms, phase_key, notes
		FROM phase_marks
		WHERE session_id = ?
		ORDER BY ts_ms, phase_mark_id
	`, sessionID)

	if err != nil {
		return nil, fmt.Errorf("failed to get phase marks: %w", err)
	}
	defer rows.Close()

	var marks []PhaseMark
	for rows.Next() {
		var m PhaseMark
		if err := rows.Scan(&m.PhaseMarkID, &m.SessionID, &m.TsMs, &m.PhaseKey, &m.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan phase mark: %w", err)
		}
		marks = append(marks, m)
	}

	return marks, rows.Err()
}

// Segments derives phase segments from marks. The last mark is closed at endTsMs.
func Segments(marks []PhaseMark, endTsMs int64) []PhaseSegment {
	segments := make([]PhaseSegment, 0, len(marks))
	for i, m := range marks {
		end := endTsMs
		if i+1 < len(marks) {
			end = marks[i+1].TsMs
		}
		if end < m.TsMs {
			end = m.TsMs
		}
		segments = append(segments, PhaseSegment{
			PhaseKey:   m.PhaseKey,
			StartTsMs:  m.TsMs,
			EndTsMs:    end,
			DurationMs: end - m.TsMs,
		})
	}
	return segments
}
