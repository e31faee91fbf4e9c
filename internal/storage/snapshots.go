package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// SnapshotRow is a stored capture of every cubie of a session.
type SnapshotRow struct {
	SnapshotID int64
	SessionID  string
	TsMs       int64
	Label      string
	MoveCount  int
	Cubies     []lattice.Info
}

// SnapshotRepository provides CRUD operations for cubie snapshots.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create stores the cubies of a session and returns the snapshot ID.
func (r *SnapshotRepository) Create(sessionID string, tsMs int64, label string, moveCount int, cubies []lattice.Info) (int64, error) {
	data, err := json.Marshal(cubies)
	if err != nil {
		return 0, fmt.Errorf("failed to encode cubies: %w", err)
	}

	result, err := r.db.Exec(`
		INSERT INTO snapshots (session_id, ts_ms, label, move_count, cubies_json)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, tsMs, label, moveCount, string(data))

	if err != nil {
		return 0, fmt.Errorf("failed to create snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot ID: %w", err)
	}

	return id, nil
}

// GetLatest retrieves the newest snapshot of a session, or nil.
func (r *SnapshotRepository) GetLatest(sessionID string) (*SnapshotRow, error) {
	var s SnapshotRow
	var data string

	err := r.db.QueryRow(`
		SELECT snapshot_id, session_id, ts_ms, label, move_count, cubies_json
		FROM snapshots
		WHERE session_id = ?
		ORDER BY ts_ms DESC, snapshot_id DESC
		LIMIT 1
	`, sessionID).Scan(&s.SnapshotID, &s.SessionID, &s.TsMs, &s.Label, &s.MoveCount, &data)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &s.Cubies); err != nil {
		return nil, fmt.Errorf("failed to decode cubies: %w", err)
	}
	return &s, nil
}

// Count returns the number of snapshots for a session.
func (r *SnapshotRepository) Count(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM snapshots WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}
