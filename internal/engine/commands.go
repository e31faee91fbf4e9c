package engine

import (
	"fmt"
	"time"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/rotation"
)

// Rotate animates a recorded move of the slice containing cubieID by r. The
// move lands on the undo stack and the solved check runs when it completes.
func (e *Engine) Rotate(cubieID int, r lattice.Vec3i) error {
	m := history.MoveRecord{CubieID: cubieID, Rotation: rotation.Normalize(r)}
	if !m.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidMove, m.Rotation)
	}
	if e.Busy() {
		return ErrBusy
	}

	c := e.lat.Find(cubieID)
	if c == nil {
		return fmt.Errorf("%w: %d", ErrUnknownCubie, cubieID)
	}

	slice := e.lat.SliceOf(c, m.Axis())

	e.resume = e.state
	e.state = StateCommitting
	e.anim.Enqueue(rotation.NewAnimation(slice, m.Rotation).OnDone(func() {
		rotation.UpdateGridPositions(slice, m.Rotation, e.lat.Offset())
		e.undo.Push(m)
		e.log.Info().Str("move", m.Notation()).Msg("move committed")
		e.emit(Event{Type: EventMoveCommitted, CubieID: m.CubieID, Move: m})
		e.finishMove(e.resume)
	}))
	return nil
}

// Undo pops the last recorded move and animates its inverse. The slice is
// resolved from the cubie's current grid position. It reports false when
// nothing can be undone right now.
func (e *Engine) Undo() bool {
	if e.Busy() {
		return false
	}

	m, ok := e.undo.Pop()
	if !ok {
		return false
	}

	c := e.lat.Find(m.CubieID)
	if c == nil {
		e.log.Warn().Int("cubie", m.CubieID).Msg("undo names unknown cubie")
		return false
	}

	inv := m.Inverse()
	slice := e.lat.SliceOf(c, inv.Axis())

	e.resume = e.state
	if e.resume == StateSolved {
		e.resume = StateIdle
	}
	e.state = StateUndoing

	e.anim.Enqueue(rotation.NewAnimation(slice, inv.Rotation).OnDone(func() {
		rotation.UpdateGridPositions(slice, inv.Rotation, e.lat.Offset())
		e.state = e.resume
		e.log.Info().Str("move", m.Notation()).Msg("move undone")
		e.emit(Event{Type: EventMoveUndone, CubieID: m.CubieID, Move: m})
	}))
	return true
}

// Scramble runs a plan of times random moves, or replays the retained plan
// when reuse is set and one exists. Scramble moves are not recorded and no
// user-facing events fire while it runs. The returned channel is closed when
// the last move and its pause have finished.
func (e *Engine) Scramble(times int, reuse bool) (<-chan struct{}, error) {
	if e.Busy() {
		return nil, ErrBusy
	}

	plan := e.scrambler.Next(e.lat.IDs(), times, reuse)
	return e.runPlan(plan), nil
}

// Replay runs plan as a scramble and retains it for later reuse.
func (e *Engine) Replay(plan history.Plan) (<-chan struct{}, error) {
	if e.Busy() {
		return nil, ErrBusy
	}
	for _, m := range plan {
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMove, m)
		}
	}

	e.scrambler.SetPlan(plan)
	return e.runPlan(e.scrambler.Plan()), nil
}

func (e *Engine) runPlan(plan history.Plan) <-chan struct{} {
	e.job = &scrambleJob{plan: plan, done: make(chan struct{})}
	e.resume = e.state
	if e.resume == StateSolved {
		e.resume = StateIdle
	}
	e.resetGesture()
	e.state = StateScrambling

	e.log.Info().Int("moves", len(plan)).Msg("scramble started")
	return e.job.done
}

func (e *Engine) tickScramble(dt time.Duration) {
	job := e.job
	if job.running {
		return
	}
	if job.pause > 0 {
		job.pause -= dt
		if job.pause > 0 {
			return
		}
	}

	if job.next >= len(job.plan) {
		e.job = nil
		e.state = e.resume
		close(job.done)
		e.log.Info().Int("moves", len(job.plan)).Msg("scramble completed")
		e.emit(Event{Type: EventScrambleCompleted})
		return
	}

	m := job.plan[job.next]
	c := e.lat.Find(m.CubieID)
	if c == nil {
		e.log.Warn().Int("cubie", m.CubieID).Msg("scramble move names unknown cubie")
		job.next++
		return
	}

	slice := e.lat.SliceOf(c, m.Axis())
	job.running = true
	e.anim.Enqueue(rotation.NewAnimation(slice, m.Rotation).OnDone(func() {
		rotation.UpdateGridPositions(slice, m.Rotation, e.lat.Offset())
		job.running = false
		job.pause = e.cfg.ScramblePause
		job.next++
	}))
}
