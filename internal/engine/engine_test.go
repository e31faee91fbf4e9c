package engine

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

const (
	frame = 16 * time.Millisecond
	limit = 10000
)

func newEngine(t *testing.T, n int, opts ...Option) (*Engine, *[]Event) {
	t.Helper()
	lat, err := lattice.Build(n)
	require.NoError(t, err)

	e := New(lat, opts...)
	var events []Event
	e.Subscribe(func(ev Event) { events = append(events, ev) })
	return e, &events
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func grids(l *lattice.Lattice) map[int]lattice.Vec3i {
	out := make(map[int]lattice.Vec3i, l.Len())
	for _, c := range l.Cubies() {
		out[c.ID] = c.Grid
	}
	return out
}

func mgl(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, z}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-360, -360},
		{-315, -360},
		{-314, -270},
		{-225, -270},
		{-224, -180},
		{-135, -180},
		{-134, -90},
		{-45.1, -90},
		{-45, 0},
		{0, 0},
		{44.9, 0},
		{45, 0},
		{45.1, 90},
		{134.9, 90},
		{135, 180},
		{225, 180},
		{225.1, 270},
		{315, 270},
		{315.1, 360},
		{360, 360},
		{810, 90},
		{-810, -90},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Snap(tt.in), "Snap(%v)", tt.in)
	}
}

func TestDominantAxis(t *testing.T) {
	axis, sign := dominantAxis(FrontCamera().Up())
	assert.Equal(t, lattice.AxisY, axis)
	assert.Equal(t, 1, sign)

	axis, sign = dominantAxis(mgl(-0.9, 0.1, 0.2))
	assert.Equal(t, lattice.AxisX, axis)
	assert.Equal(t, -1, sign)

	// Ties fall through to Z.
	axis, sign = dominantAxis(mgl(0.5, 0.5, 0.5))
	assert.Equal(t, lattice.AxisZ, axis)
	assert.Equal(t, 1, sign)
}

func TestGesture_HorizontalDragCommitsQuarterTurn(t *testing.T) {
	e, events := newEngine(t, 3)
	e.Manipulate()
	require.Equal(t, StateIdle, e.State())

	e.Tick(frame, PickCubie(4))
	assert.Equal(t, StateAwaitingAxis, e.State())

	e.Tick(frame, DragBy(30, 0))
	assert.Equal(t, StateAwaitingAxis, e.State(), "below threshold")

	e.Tick(frame, DragBy(30, 0))
	require.Equal(t, StateRotating, e.State())

	e.Tick(frame, DragBy(-200, 0)) // 60 degrees about +Y
	e.Tick(frame, Release())
	assert.Equal(t, StateCommitting, e.State())

	require.True(t, e.RunUntilIdle(frame, limit))
	assert.Equal(t, StateIdle, e.State())

	want := history.MoveRecord{CubieID: 4, Rotation: lattice.Vec3i{Y: 90}}
	assert.Equal(t, []history.MoveRecord{want}, e.History())
	assert.Equal(t, lattice.Vec3i{X: 0, Y: 1, Z: 1}, e.Lattice().Find(4).Grid)
	assert.True(t, e.Lattice().AtRest(1e-6))

	assert.Equal(t, []EventType{EventCubeCaught, EventCubeReleased, EventMoveCommitted}, eventTypes(*events))
	assert.Equal(t, want, (*events)[2].Move)
}

func TestGesture_VerticalDragUsesCameraRight(t *testing.T) {
	e, _ := newEngine(t, 3)
	e.Manipulate()

	e.Tick(frame, PickCubie(4))
	e.Tick(frame, DragBy(0, 60))
	require.Equal(t, StateRotating, e.State())

	e.Tick(frame, DragBy(0, 250)) // 75 degrees about +X
	e.Tick(frame, Release())
	require.True(t, e.RunUntilIdle(frame, limit))

	assert.Equal(t, []history.MoveRecord{{CubieID: 4, Rotation: lattice.Vec3i{X: 90}}}, e.History())
	assert.Equal(t, lattice.Vec3i{X: 1, Y: 2, Z: 1}, e.Lattice().Find(4).Grid)
}

func TestGesture_SmallDragSnapsBack(t *testing.T) {
	e, events := newEngine(t, 3)
	e.Manipulate()
	before := grids(e.Lattice())

	e.Tick(frame, PickCubie(4))
	e.Tick(frame, DragBy(60, 0))
	e.Tick(frame, DragBy(-50, 0)) // 15 degrees
	e.Tick(frame, Release())
	require.True(t, e.RunUntilIdle(frame, limit))

	assert.Empty(t, e.History())
	assert.Equal(t, before, grids(e.Lattice()))
	assert.True(t, e.Lattice().AtRest(1e-6))
	assert.NotContains(t, eventTypes(*events), EventMoveCommitted)
}

func TestGesture_FullTurnIsNotRecorded(t *testing.T) {
	e, events := newEngine(t, 3)
	e.Manipulate()
	before := grids(e.Lattice())

	e.Tick(frame, PickCubie(4))
	e.Tick(frame, DragBy(60, 0))
	e.Tick(frame, DragBy(-1100, 0)) // 330 degrees, snaps to 360
	e.Tick(frame, Release())
	require.True(t, e.RunUntilIdle(frame, limit))

	assert.Empty(t, e.History())
	assert.Equal(t, before, grids(e.Lattice()))
	assert.True(t, e.Lattice().SameOrientation())
	assert.NotContains(t, eventTypes(*events), EventMoveCommitted)
}

func TestGesture_ReleaseBeforeAxisSelection(t *testing.T) {
	e, events := newEngine(t, 3)
	e.Manipulate()

	e.Tick(frame, PickCubie(13))
	e.Tick(frame, DragBy(10, 10))
	e.Tick(frame, Release())

	assert.Equal(t, StateIdle, e.State())
	assert.Empty(t, e.History())
	assert.Equal(t, []EventType{EventCubeCaught, EventCubeReleased}, eventTypes(*events))
	assert.Equal(t, 13, (*events)[1].CubieID)
}

func TestGesture_TapWithinOneTick(t *testing.T) {
	e, events := newEngine(t, 3)
	e.Manipulate()

	tap := PickCubie(0)
	tap.Released = true
	e.Tick(frame, tap)

	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, []EventType{EventCubeCaught, EventCubeReleased}, eventTypes(*events))

	// The next gesture turns the slice of the cubie it picked.
	e.Tick(frame, PickCubie(25))
	for i := 0; i < 12; i++ {
		e.Tick(frame, DragBy(0, 30))
	}
	e.Tick(frame, Release())
	require.True(t, e.RunUntilIdle(frame, limit))

	require.Len(t, e.History(), 1)
	assert.Equal(t, 25, e.History()[0].CubieID)
	assert.Equal(t, 25, (*events)[2].CubieID)
}

func TestGesture_PickIgnored(t *testing.T) {
	e, events := newEngine(t, 3)

	e.Tick(frame, PickCubie(4))
	assert.Equal(t, StateDisabled, e.State(), "not manipulating")

	e.Manipulate()
	e.Tick(frame, PickNothing())
	assert.Equal(t, StateIdle, e.State())

	e.Tick(frame, PickCubie(999))
	assert.Equal(t, StateIdle, e.State())

	e.SetRayCastEnabled(false)
	e.Tick(frame, PickCubie(4))
	assert.Equal(t, StateIdle, e.State())

	assert.Empty(t, *events)
}

func TestRotate_RejectsBadMoves(t *testing.T) {
	e, _ := newEngine(t, 3)

	assert.ErrorIs(t, e.Rotate(4, lattice.Vec3i{X: 90, Y: 90}), ErrInvalidMove)
	assert.ErrorIs(t, e.Rotate(4, lattice.Vec3i{X: 45}), ErrInvalidMove)
	assert.ErrorIs(t, e.Rotate(4, lattice.Vec3i{X: 360}), ErrInvalidMove)
	assert.ErrorIs(t, e.Rotate(999, lattice.Vec3i{X: 90}), ErrUnknownCubie)

	require.NoError(t, e.Rotate(4, lattice.Vec3i{X: 90}))
	assert.ErrorIs(t, e.Rotate(4, lattice.Vec3i{X: 90}), ErrBusy)
}

func TestSolvedDetection(t *testing.T) {
	e, events := newEngine(t, 3)
	e.Manipulate()

	require.NoError(t, e.Rotate(4, lattice.Vec3i{Y: 90}))
	require.True(t, e.RunUntilIdle(frame, limit))
	assert.Equal(t, StateIdle, e.State())
	assert.False(t, e.IsSolved())

	require.NoError(t, e.Rotate(4, lattice.Vec3i{Y: -90}))
	require.True(t, e.RunUntilIdle(frame, limit))
	assert.Equal(t, StateSolved, e.State())
	assert.True(t, e.IsSolved())

	assert.Equal(t, []EventType{EventMoveCommitted, EventMoveCommitted, EventSolved}, eventTypes(*events))

	// Picks are ignored until manipulation is re-enabled.
	e.Tick(frame, PickCubie(4))
	assert.Equal(t, StateSolved, e.State())
	e.Manipulate()
	assert.Equal(t, StateIdle, e.State())
}

func TestUndo_RestoresLattice(t *testing.T) {
	e, events := newEngine(t, 3)
	e.Manipulate()
	before := grids(e.Lattice())

	assert.False(t, e.Undo(), "empty history")

	require.NoError(t, e.Rotate(4, lattice.Vec3i{X: 90}))
	require.True(t, e.RunUntilIdle(frame, limit))
	require.NoError(t, e.Rotate(10, lattice.Vec3i{Y: -90}))
	require.True(t, e.RunUntilIdle(frame, limit))

	l := e.Lattice()
	assert.Equal(t, lattice.Vec3i{X: 1, Y: 2, Z: 1}, l.Find(4).Grid)
	assert.Equal(t, lattice.Vec3i{X: 2, Y: 1, Z: 1}, l.Find(10).Grid)
	assert.Equal(t, lattice.Vec3i{X: 1, Y: 1, Z: 0}, l.Find(12).Grid)
	require.Len(t, e.History(), 2)

	require.True(t, e.Undo())
	assert.False(t, e.Undo(), "busy")
	require.True(t, e.RunUntilIdle(frame, limit))
	require.True(t, e.Undo())
	require.True(t, e.RunUntilIdle(frame, limit))

	assert.Equal(t, before, grids(l))
	assert.True(t, l.SameOrientation())
	assert.True(t, l.AtRest(1e-6))
	assert.Empty(t, e.History())
	assert.Equal(t, StateIdle, e.State())

	types := eventTypes(*events)
	assert.Equal(t, []EventType{EventMoveCommitted, EventMoveCommitted, EventMoveUndone, EventMoveUndone}, types)
	assert.Equal(t, 10, (*events)[2].CubieID)
	assert.Equal(t, 4, (*events)[3].CubieID)
}

func TestScramble_DeterministicAndUnrecorded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 5

	run := func() (*Engine, []Event) {
		e, events := newEngine(t, 3, WithConfig(cfg))
		e.Manipulate()
		done, err := e.Scramble(8, false)
		require.NoError(t, err)
		assert.Equal(t, StateScrambling, e.State())
		require.True(t, e.RunUntilIdle(frame, limit))

		select {
		case <-done:
		default:
			t.Fatal("scramble completion not signalled")
		}
		return e, *events
	}

	a, aEvents := run()
	b, _ := run()

	assert.Equal(t, a.Plan(), b.Plan())
	assert.Len(t, a.Plan(), 8)
	assert.Equal(t, grids(a.Lattice()), grids(b.Lattice()))
	assert.True(t, a.Lattice().AtRest(1e-6))
	assert.Empty(t, a.History())
	assert.Equal(t, StateIdle, a.State())
	assert.Equal(t, []EventType{EventScrambleCompleted}, eventTypes(aEvents))
}

func TestScramble_BusyAndReuse(t *testing.T) {
	e, _ := newEngine(t, 3)

	_, err := e.Scramble(4, false)
	require.NoError(t, err)
	plan := e.Plan()

	_, err = e.Scramble(4, false)
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, e.Undo())
	assert.ErrorIs(t, e.Rotate(4, lattice.Vec3i{X: 90}), ErrBusy)

	require.True(t, e.RunUntilIdle(frame, limit))
	assert.Equal(t, StateDisabled, e.State())

	_, err = e.Scramble(2, true)
	require.NoError(t, err)
	assert.Equal(t, plan, e.Plan())
	require.True(t, e.RunUntilIdle(frame, limit))
}

func TestScramble_PausesBetweenMoves(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScramblePause = time.Second

	e, _ := newEngine(t, 3, WithConfig(cfg))
	_, err := e.Replay(history.Plan{{CubieID: 4, Rotation: lattice.Vec3i{X: 90}}})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		e.Tick(frame, Input{})
	}
	assert.Equal(t, lattice.Vec3i{X: 1, Y: 2, Z: 1}, e.Lattice().Find(4).Grid)
	assert.Equal(t, StateScrambling, e.State(), "still pausing")

	e.Tick(time.Second, Input{})
	assert.Equal(t, StateDisabled, e.State())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	e, events := newEngine(t, 3)
	var extra int
	unsubscribe := e.Subscribe(func(Event) { extra++ })

	require.NoError(t, e.Rotate(4, lattice.Vec3i{X: 90}))
	require.True(t, e.RunUntilIdle(frame, limit))
	unsubscribe()
	require.NoError(t, e.Rotate(4, lattice.Vec3i{X: -90}))
	require.True(t, e.RunUntilIdle(frame, limit))

	assert.Equal(t, 1, extra)
	assert.Len(t, *events, 3) // two commits and the solve
}

func TestClearHistory(t *testing.T) {
	e, _ := newEngine(t, 2)
	e.Manipulate()

	require.NoError(t, e.Rotate(0, lattice.Vec3i{Z: 90}))
	require.True(t, e.RunUntilIdle(frame, limit))
	require.Len(t, e.History(), 1)

	e.ClearHistory()
	assert.Empty(t, e.History())
	assert.False(t, e.Undo())
	assert.False(t, e.IsSolved(), "lattice untouched")
}
