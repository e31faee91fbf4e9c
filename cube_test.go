package nxncube

import (
	"errors"
	"testing"
)

func TestNewCubeIsSolved(t *testing.T) {
	for n := 2; n <= 5; n++ {
		c, err := NewCube(n)
		if err != nil {
			t.Fatalf("NewCube(%d): %v", n, err)
		}
		if !c.IsSolved() {
			t.Errorf("new %dx%dx%d cube should be solved", n, n, n)
		}
	}
}

func TestNewCubeRejectsSmallDimension(t *testing.T) {
	if _, err := NewCube(1); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestSingleMoveBreaksSolved(t *testing.T) {
	c, _ := NewCube(3)
	if err := c.Apply(Turn(4, RotX)); err != nil {
		t.Fatal(err)
	}
	if c.IsSolved() {
		t.Error("cube should not be solved after one slice turn")
	}
}

func TestFourTurnsReturnToSolved(t *testing.T) {
	for _, r := range []Rotation{RotX, RotYPrime, RotZ} {
		c, _ := NewCube(3)
		start := c.Cubies()
		for i := 0; i < 4; i++ {
			if err := c.ApplyMove(Turn(0, r)); err != nil {
				t.Fatal(err)
			}
		}
		if !c.IsSolved() {
			t.Errorf("%v x 4 should return to solved", r)
			t.Log(c.String())
		}
		for i, info := range c.Cubies() {
			if info.Grid != start[i].Grid {
				t.Errorf("%v x 4: cubie %d at %v, want %v", r, info.ID, info.Grid, start[i].Grid)
			}
		}
	}
}

func TestHalfTurnTwiceReturnsToSolved(t *testing.T) {
	c, _ := NewCube(4)
	c.Apply(Turn(5, RotY2), Turn(5, RotY2))
	if !c.IsSolved() {
		t.Error("Y2 Y2 should return to solved")
	}
}

func TestApplyNotationKnownPositions(t *testing.T) {
	c, _ := NewCube(3)
	if err := c.ApplyNotation("#4 X+90, #10 Y-90"); err != nil {
		t.Fatal(err)
	}

	want := map[int]GridPos{
		4:  {X: 1, Y: 2, Z: 1},
		10: {X: 2, Y: 1, Z: 1},
		12: {X: 1, Y: 1, Z: 0},
	}
	for id, grid := range want {
		got, ok := c.Grid(id)
		if !ok || got != grid {
			t.Errorf("cubie %d at %v, want %v", id, got, grid)
		}
	}

	if _, ok := c.Grid(99); ok {
		t.Error("Grid(99) should report a missing cubie")
	}
}

func TestInverseMovesRestoreSolved(t *testing.T) {
	moves := []Move{Turn(4, RotX), Turn(10, RotYPrime), Turn(0, RotZ2), Turn(25, RotX)}

	c, _ := NewCube(3)
	c.Apply(moves...)
	if c.IsSolved() {
		t.Fatal("scrambled cube should not be solved")
	}
	if err := c.Apply(InverseMoves(moves)...); err != nil {
		t.Fatal(err)
	}
	if !c.IsSolved() {
		t.Error("applying the inverse sequence should solve the cube")
	}
}

func TestCommutatorSixTimesReturnsToSolved(t *testing.T) {
	c, _ := NewCube(3)
	comm := Commutator(Turn(20, RotX), Turn(24, RotY))
	for i := 0; i < 6; i++ {
		c.Apply(comm...)
	}
	if !c.IsSolved() {
		t.Error("commutator x 6 should return to solved")
	}
}

func TestApplyRejectsBadMoves(t *testing.T) {
	c, _ := NewCube(3)

	if err := c.ApplyMove(Turn(4, Rotation{X: 90, Y: 90})); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("two-axis move: got %v", err)
	}
	if err := c.ApplyMove(Turn(999, RotX)); !errors.Is(err, ErrUnknownCubie) {
		t.Errorf("unknown cubie: got %v", err)
	}
	if err := c.ApplyNotation("#4 X+45"); !errors.Is(err, ErrInvalidNotation) {
		t.Errorf("bad notation: got %v", err)
	}
}

func TestClone(t *testing.T) {
	c, _ := NewCube(3)
	clone := c.Clone()
	clone.Apply(Turn(4, RotX))

	if !c.IsSolved() {
		t.Error("moving the clone should not touch the original")
	}
	if clone.IsSolved() {
		t.Error("clone should be scrambled")
	}
}

func TestTrackerSolvedAt(t *testing.T) {
	c, _ := NewCube(3)
	c.Apply(Turn(4, RotX))

	tr := NewTracker(c)
	var fired int
	tr.SetSolvedCallback(func(n int) { fired = n })

	if err := tr.ApplyMoves([]Move{Turn(0, RotZ), Turn(0, RotZPrime), Turn(4, RotXPrime), Turn(4, RotX)}); err != nil {
		t.Fatal(err)
	}
	if tr.SolvedAt() != 3 || fired != 3 {
		t.Errorf("solved at %d (callback %d), want 3", tr.SolvedAt(), fired)
	}
	if tr.IsSolved() {
		t.Error("last move scrambles again")
	}
	if tr.MoveCount() != 4 {
		t.Errorf("move count %d, want 4", tr.MoveCount())
	}
}
