package nxncube

import (
	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// Move is a committed slice rotation: a reference cubie and a rotation about
// one world axis. Notation: "#4 X+90".
type Move = history.MoveRecord

// Rotation is a rotation in degrees about at most one world axis.
type Rotation = lattice.Vec3i

// GridPos is a cubie's integer cell in the lattice, each component in [0, N-1].
type GridPos = lattice.Vec3i

// Plan is an ordered list of scramble moves.
type Plan = history.Plan

// CubieInfo is the save record of one cubie.
type CubieInfo = lattice.Info

// Turn returns the move rotating the slice that contains cubieID by r.
func Turn(cubieID int, r Rotation) Move {
	return Move{CubieID: cubieID, Rotation: r}
}

// ParseMove parses a move in notation form, e.g. "#4 X+90".
// Returns ErrInvalidNotation if the notation is invalid.
func ParseMove(s string) (Move, error) {
	return history.ParseMoveRecord(s)
}

// ParseMoves parses a comma, semicolon or newline separated move list.
func ParseMoves(s string) ([]Move, error) {
	return history.ParseMoveRecords(s)
}

// FormatMoves formats moves as a comma separated notation string.
func FormatMoves(moves []Move) string {
	return history.FormatMoveRecords(moves)
}

// InverseMoves returns the moves that undo moves, in undo order.
func InverseMoves(moves []Move) []Move {
	inv := make([]Move, len(moves))
	for i, m := range moves {
		inv[len(moves)-1-i] = m.Inverse()
	}
	return inv
}
