// Package history holds committed move records, the undo stack and scramble plans.
package history

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

var ErrInvalidNotation = errors.New("history: invalid move notation")

// MoveRecord encodes "rotate the slice containing CubieID by Rotation".
// Rotation has exactly one non-zero component, a multiple of 90.
type MoveRecord struct {
	CubieID  int           `json:"cubie_id" yaml:"cubie"`
	Rotation lattice.Vec3i `json:"rotation" yaml:"rotation"`
}

// Axis returns the rotation axis of the record.
func (m MoveRecord) Axis() lattice.Axis {
	a, _ := m.Rotation.Axis()
	return a
}

// Degrees returns the signed rotation angle.
func (m MoveRecord) Degrees() int {
	_, d := m.Rotation.Axis()
	return d
}

// Inverse returns the record that undoes m.
func (m MoveRecord) Inverse() MoveRecord {
	return MoveRecord{CubieID: m.CubieID, Rotation: m.Rotation.Neg()}
}

// Notation returns the compact text form, e.g. "#4 X+90" or "#10 Y-90".
func (m MoveRecord) Notation() string {
	a, d := m.Rotation.Axis()
	return fmt.Sprintf("#%d %s%+d", m.CubieID, a, d)
}

// String returns the notation string (alias for Notation).
func (m MoveRecord) String() string {
	return m.Notation()
}

// Valid reports whether m rotates about exactly one axis by a non-zero multiple of 90.
func (m MoveRecord) Valid() bool {
	_, d := m.Rotation.Axis()
	return m.Rotation.NonZero() == 1 && d%90 == 0
}

// ParseMoveRecord parses the Notation form of a move record.
func ParseMoveRecord(s string) (MoveRecord, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "#") {
		return MoveRecord{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	id, err := strconv.Atoi(fields[0][1:])
	if err != nil || id < 0 {
		return MoveRecord{}, fmt.Errorf("%w: bad cubie id in %q", ErrInvalidNotation, s)
	}

	rot := fields[1]
	if len(rot) < 3 {
		return MoveRecord{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	var axis lattice.Axis
	switch rot[0] {
	case 'X', 'x':
		axis = lattice.AxisX
	case 'Y', 'y':
		axis = lattice.AxisY
	case 'Z', 'z':
		axis = lattice.AxisZ
	default:
		return MoveRecord{}, fmt.Errorf("%w: bad axis in %q", ErrInvalidNotation, s)
	}

	deg, err := strconv.Atoi(rot[1:])
	if err != nil {
		return MoveRecord{}, fmt.Errorf("%w: bad angle in %q", ErrInvalidNotation, s)
	}

	m := MoveRecord{CubieID: id, Rotation: lattice.OnAxis(axis, deg)}
	if !m.Valid() {
		return MoveRecord{}, fmt.Errorf("%w: angle must be a non-zero multiple of 90 in %q", ErrInvalidNotation, s)
	}
	return m, nil
}

// ParseMoveRecords parses a comma- or newline-separated list of records.
func ParseMoveRecords(s string) ([]MoveRecord, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
	moves := make([]MoveRecord, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		m, err := ParseMoveRecord(p)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// FormatMoveRecords joins records with ", ".
func FormatMoveRecords(moves []MoveRecord) string {
	if len(moves) == 0 {
		return ""
	}
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.Notation()
	}
	return strings.Join(parts, ", ")
}
