package nxncube

// Tracker wraps a Cube and reports when a sequence of moves solves it.
// It is used to replay recorded sessions.
type Tracker struct {
	cube     *Cube
	moves    []Move
	solvedAt int // move count when first solved, -1 if never
	onSolved func(moveCount int)
}

// NewTracker creates a tracker starting from cube's current state.
func NewTracker(cube *Cube) *Tracker {
	return &Tracker{
		cube:     cube,
		solvedAt: -1,
	}
}

// SetSolvedCallback sets a callback that fires the first time a move leaves
// the cube solved.
func (t *Tracker) SetSolvedCallback(cb func(moveCount int)) {
	t.onSolved = cb
}

// ApplyMove applies a move and checks for a solve.
func (t *Tracker) ApplyMove(m Move) error {
	if err := t.cube.ApplyMove(m); err != nil {
		return err
	}
	t.moves = append(t.moves, m)

	if t.solvedAt < 0 && t.cube.IsSolved() {
		t.solvedAt = len(t.moves)
		if t.onSolved != nil {
			t.onSolved(t.solvedAt)
		}
	}
	return nil
}

// ApplyMoves applies multiple moves.
func (t *Tracker) ApplyMoves(moves []Move) error {
	for _, m := range moves {
		if err := t.ApplyMove(m); err != nil {
			return err
		}
	}
	return nil
}

// SolvedAt returns the number of moves after which the cube was first
// solved, or -1.
func (t *Tracker) SolvedAt() int {
	return t.solvedAt
}

// MoveCount returns the number of moves applied.
func (t *Tracker) MoveCount() int {
	return len(t.moves)
}

// IsSolved returns true if the cube is currently solved.
func (t *Tracker) IsSolved() bool {
	return t.cube.IsSolved()
}

// Cube returns the tracked cube.
func (t *Tracker) Cube() *Cube {
	return t.cube
}
