package nxncube

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

const (
	frame     = 16 * time.Millisecond
	tickLimit = 10000
)

func grids(infos []CubieInfo) map[int]Rotation {
	out := make(map[int]Rotation, len(infos))
	for _, info := range infos {
		out[info.ID] = info.Grid
	}
	return out
}

func startedSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := NewSession(append([]Option{WithSeed(11)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if !s.RunUntilIdle(frame, tickLimit) {
		t.Fatal("scramble did not finish")
	}
	return s
}

func TestNewSessionRejectsSmallDimension(t *testing.T) {
	if _, err := NewSession(WithDimension(1)); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestStartScramblesAndHandsOver(t *testing.T) {
	s, err := NewSession(WithSeed(3), WithDimension(4), WithScrambleTimes(6))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var phases []Phase
	s.OnPhaseChange(func(p Phase) { phases = append(phases, p) })

	if s.Phase() != PhaseCreated {
		t.Errorf("phase %v, want created", s.Phase())
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start: got %v", err)
	}
	if !s.RunUntilIdle(frame, tickLimit) {
		t.Fatal("scramble did not finish")
	}

	if s.Phase() != PhaseManipulating {
		t.Errorf("phase %v, want manipulating", s.Phase())
	}
	if !reflect.DeepEqual(phases, []Phase{PhaseScrambling, PhaseManipulating}) {
		t.Errorf("phases %v", phases)
	}
	if len(s.Plan()) != 6 {
		t.Errorf("plan has %d moves, want 6", len(s.Plan()))
	}
	if len(s.Moves()) != 0 {
		t.Errorf("scramble moves must not be recorded, got %v", s.Moves())
	}
	if s.Dimension() != 4 || len(s.Cubies()) != 56 {
		t.Errorf("dimension %d with %d cubies", s.Dimension(), len(s.Cubies()))
	}
}

func TestSameSeedSameScramble(t *testing.T) {
	a := startedSession(t)
	b := startedSession(t)

	if !reflect.DeepEqual(a.Plan(), b.Plan()) {
		t.Error("plans differ for the same seed")
	}
	if !reflect.DeepEqual(grids(a.Cubies()), grids(b.Cubies())) {
		t.Error("lattices differ for the same seed")
	}
}

func TestGestureCallbacks(t *testing.T) {
	s := startedSession(t, WithScrambleTimes(0))

	var caught, released []int
	var moves []Move
	s.OnCaught(func(id int) { caught = append(caught, id) })
	s.OnReleased(func(id int) { released = append(released, id) })
	s.OnMove(func(m Move) { moves = append(moves, m) })

	s.Tick(frame, PickCubie(4))
	s.Tick(frame, DragBy(0, 60))
	s.Tick(frame, DragBy(0, 300)) // 90 degrees about +X
	s.Tick(frame, Release())
	if !s.RunUntilIdle(frame, tickLimit) {
		t.Fatal("gesture did not settle")
	}

	if !reflect.DeepEqual(caught, []int{4}) || !reflect.DeepEqual(released, []int{4}) {
		t.Errorf("caught %v released %v", caught, released)
	}
	want := []Move{Turn(4, RotX)}
	if !reflect.DeepEqual(moves, want) || !reflect.DeepEqual(s.Moves(), want) {
		t.Errorf("moves %v history %v, want %v", moves, s.Moves(), want)
	}
}

func TestSolveAndUndo(t *testing.T) {
	s := startedSession(t, WithScrambleTimes(0))

	var solved int
	var undone []Move
	s.OnSolved(func() { solved++ })
	s.OnUndo(func(m Move) { undone = append(undone, m) })

	if err := s.Rotate(Turn(4, RotY)); err != nil {
		t.Fatal(err)
	}
	if err := s.Rotate(Turn(4, RotY)); !errors.Is(err, ErrBusy) {
		t.Errorf("rotate while busy: got %v", err)
	}
	s.RunUntilIdle(frame, tickLimit)

	if err := s.Rotate(Turn(4, RotYPrime)); err != nil {
		t.Fatal(err)
	}
	s.RunUntilIdle(frame, tickLimit)

	if solved != 1 || s.Phase() != PhaseSolved || !s.IsSolved() {
		t.Fatalf("solved=%d phase=%v", solved, s.Phase())
	}

	if !s.Undo() {
		t.Fatal("undo refused")
	}
	s.RunUntilIdle(frame, tickLimit)

	if s.Phase() != PhaseManipulating {
		t.Errorf("phase %v after undo, want manipulating", s.Phase())
	}
	if !reflect.DeepEqual(undone, []Move{Turn(4, RotYPrime)}) {
		t.Errorf("undone %v", undone)
	}
	if len(s.Moves()) != 1 {
		t.Errorf("history %v", s.Moves())
	}
}

func TestRetryReplaysPlan(t *testing.T) {
	s := startedSession(t)
	scrambled := s.Cubies()
	plan := s.Plan()

	if err := s.Rotate(Turn(13, RotZ)); err != nil {
		t.Fatal(err)
	}
	s.RunUntilIdle(frame, tickLimit)

	if err := s.Retry(); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhaseScrambling {
		t.Errorf("phase %v, want scrambling", s.Phase())
	}
	s.RunUntilIdle(frame, tickLimit)

	if !reflect.DeepEqual(s.Plan(), plan) {
		t.Error("retry must reuse the plan")
	}
	if !reflect.DeepEqual(grids(s.Cubies()), grids(scrambled)) {
		t.Error("retry must reproduce the scrambled lattice")
	}
	if len(s.Moves()) != 0 {
		t.Errorf("retry must clear history, got %v", s.Moves())
	}
}

func TestRetryBeforeStart(t *testing.T) {
	s, _ := NewSession()
	if err := s.Retry(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("got %v", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := startedSession(t)
	s.Rotate(Turn(4, RotX))
	s.RunUntilIdle(frame, tickLimit)

	snap := s.Snapshot()
	r, err := RestoreSession(snap)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.ID() != s.ID() {
		t.Errorf("id %q, want %q", r.ID(), s.ID())
	}
	if r.Phase() != PhaseManipulating {
		t.Errorf("phase %v", r.Phase())
	}
	if !reflect.DeepEqual(grids(r.Cubies()), grids(s.Cubies())) {
		t.Error("restored lattice differs")
	}
	if !reflect.DeepEqual(r.Moves(), s.Moves()) || !reflect.DeepEqual(r.Plan(), s.Plan()) {
		t.Error("restored history or plan differs")
	}

	// The restored history undoes the restored lattice.
	if !r.Undo() {
		t.Fatal("undo refused")
	}
	r.RunUntilIdle(frame, tickLimit)
	if len(r.Moves()) != 0 {
		t.Errorf("history %v", r.Moves())
	}
}

func TestClosedSessionIgnoresInput(t *testing.T) {
	s := startedSession(t, WithScrambleTimes(0))
	s.Close()

	if err := s.Rotate(Turn(4, RotX)); !errors.Is(err, ErrClosed) {
		t.Errorf("got %v", err)
	}
	if s.Undo() {
		t.Error("undo after close")
	}
}
