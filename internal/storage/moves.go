package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// MoveRow represents a committed move in the database.
type MoveRow struct {
	MoveID    int64
	SessionID string
	MoveIndex int
	TsMs      int64
	CubieID   int
	Axis      string
	Degrees   int
	Notation  string
	UndoneMs  *int64
}

// Undone reports whether the move was later undone.
func (m MoveRow) Undone() bool {
	return m.UndoneMs != nil
}

// Record converts the row back to a move record.
func (m MoveRow) Record() history.MoveRecord {
	var axis lattice.Axis
	switch m.Axis {
	case "X":
		axis = lattice.AxisX
	case "Y":
		axis = lattice.AxisY
	default:
		axis = lattice.AxisZ
	}
	return history.MoveRecord{CubieID: m.CubieID, Rotation: lattice.OnAxis(axis, m.Degrees)}
}

// MoveRepository provides CRUD operations for moves.
type MoveRepository struct {
	db *DB
}

// NewMoveRepository creates a new move repository.
func NewMoveRepository(db *DB) *MoveRepository {
	return &MoveRepository{db: db}
}

const insertMove = `
	INSERT INTO moves (session_id, move_index, ts_ms, cubie_id, axis, degrees, notation)
	VALUES (?, ?, ?, ?, ?, ?, ?)
`

// Create creates a new move and returns its ID.
func (r *MoveRepository) Create(sessionID string, moveIndex int, tsMs int64, m history.MoveRecord) (int64, error) {
	result, err := r.db.Exec(insertMove,
		sessionID, moveIndex, tsMs, m.CubieID, m.Axis().String(), m.Degrees(), m.Notation())

	if err != nil {
		return 0, fmt.Errorf("failed to create move: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get move ID: %w", err)
	}

	return id, nil
}

// CreateBatch creates multiple moves in a single transaction, all stamped with ts.
func (r *MoveRepository) CreateBatch(sessionID string, moves []history.MoveRecord, startIndex int, ts time.Time) error {
	return r.db.Transaction(func(tx *sql.Tx) error {
		for i, m := range moves {
			_, err := tx.Exec(insertMove,
				sessionID, startIndex+i, ts.UnixMilli(), m.CubieID, m.Axis().String(), m.Degrees(), m.Notation())
			if err != nil {
				return fmt.Errorf("failed to create move %d: %w", startIndex+i, err)
			}
		}
		return nil
	})
}

// MarkLastUndone marks the latest live move of a session as undone and
// returns its index, or -1 when there is none.
func (r *MoveRepository) MarkLastUndone(sessionID string, tsMs int64) (int, error) {
	var index int
	err := r.db.QueryRow(`
		SELECT move_index FROM moves
		WHERE session_id = ? AND undone_ms IS NULL
		ORDER BY move_index DESC
		LIMIT 1
	`, sessionID).Scan(&index)

	if err == sql.ErrNoRows {
		return -1, nil
	}
	if err != nil {
		return -1, fmt.Errorf("failed to find last move: %w", err)
	}

	_, err = r.db.Exec(`
		UPDATE moves SET undone_ms = ? WHERE session_id = ? AND move_index = ?
	`, tsMs, sessionID, index)
	if err != nil {
		return -1, fmt.Errorf("failed to mark move undone: %w", err)
	}
	return index, nil
}

// GetBySession retrieves all moves for a session in order, undone ones included.
func (r *MoveRepository) GetBySession(sessionID string) ([]MoveRow, error) {
	rows, err := r.db.Query(`
		SELECT move_id, session_id, move_index, ts_ms, cubie_id, axis, degrees, notation, undone_ms
		FROM moves
		WHERE session_id = ?
		ORDER BY move_index
	`, sessionID)

	if err != nil {
		return nil, fmt.Errorf("failed to get moves: %w", err)
	}
	defer rows.Close()

	var moves []MoveRow
	for rows.Next() {
		var m MoveRow
		err := rows.Scan(&m.MoveID, &m.SessionID, &m.MoveIndex, &m.TsMs, &m.CubieID, &m.Axis, &m.Degrees, &m.Notation, &m.UndoneMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		moves = append(moves, m)
	}

	return moves, rows.Err()
}

// GetNextIndex returns the next move index for a session.
func (r *MoveRepository) GetNextIndex(sessionID string) (int, error) {
	var maxIndex int
	err := r.db.QueryRow(`
		SELECT COALESCE(MAX(move_index), -1) FROM moves WHERE session_id = ?
	`, sessionID).Scan(&maxIndex)
	if err != nil {
		return 0, fmt.Errorf("failed to get max move index: %w", err)
	}
	return maxIndex + 1, nil
}

// Count returns the number of moves for a session, undone ones included.
func (r *MoveRepository) Count(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM moves WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count moves: %w", err)
	}
	return count, nil
}

// ToRecords converts the live rows to move records, dropping undone moves.
func ToRecords(rows []MoveRow) []history.MoveRecord {
	records := make([]history.MoveRecord, 0, len(rows))
	for _, r := range rows {
		if r.Undone() {
			continue
		}
		records = append(records, r.Record())
	}
	return records
}
