package engine

import (
	"math"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/rotation"
)

func (e *Engine) tickIdle(in Input) {
	if !in.Pressed || !e.rayCast {
		return
	}
	if !in.Hit {
		e.log.Debug().Msg("pick missed")
		return
	}

	c := e.lat.Find(in.HitID)
	if c == nil {
		e.log.Warn().Int("cubie", in.HitID).Msg("pick hit unknown cubie")
		return
	}

	e.resetGesture()
	e.g.caught = c
	e.resume = StateIdle
	e.state = StateAwaitingAxis

	e.log.Debug().Int("cubie", c.ID).Str("grid", c.Grid.String()).Msg("cube caught")
	e.emit(Event{Type: EventCubeCaught, CubieID: c.ID})

	// A tap shorter than one tick picks and releases together.
	if in.Released {
		e.resetGesture()
		e.state = e.resume
		e.emit(Event{Type: EventCubeReleased, CubieID: c.ID})
	}
}

func (e *Engine) tickAwaiting(in Input) {
	if in.Released {
		id := e.g.caught.ID
		e.resetGesture()
		e.state = e.resume
		e.emit(Event{Type: EventCubeReleased, CubieID: id})
		return
	}

	e.g.drag[0] += in.Drag.X()
	e.g.drag[1] += in.Drag.Y()

	dx, dy := abs(e.g.drag[0]), abs(e.g.drag[1])
	th := e.cfg.DragThreshold

	switch {
	case dx > th && dx > dy:
		e.g.horizontal = true
		e.g.axis, e.g.sign = dominantAxis(e.cam.Up())
	case dy > th && dy > dx:
		e.g.horizontal = false
		e.g.axis, e.g.sign = dominantAxis(e.cam.Right())
	default:
		return
	}

	e.g.slice = e.lat.SliceOf(e.g.caught, e.g.axis)
	e.g.total = 0
	e.state = StateRotating

	e.log.Debug().
		Int("cubie", e.g.caught.ID).
		Str("axis", e.g.axis.String()).
		Int("sign", e.g.sign).
		Int("slice", len(e.g.slice)).
		Msg("axis selected")
}

func (e *Engine) tickRotating(in Input) {
	if in.Released {
		e.state = StateCommitting
		e.emit(Event{Type: EventCubeReleased, CubieID: e.g.caught.ID})
		e.settle()
		return
	}

	var deg float64
	if e.g.horizontal {
		deg = -in.Drag.X() * e.cfg.DragSensitivity
	} else {
		deg = in.Drag.Y() * e.cfg.DragSensitivity
	}
	deg = math.Round(deg)
	if deg == 0 {
		return
	}

	angle := deg * float64(e.g.sign)
	e.anim.Enqueue(rotation.NewAxisAnimation(e.g.slice, e.g.axis, angle))
	e.g.total = math.Mod(e.g.total+angle, 360)
}

// settle animates the slice from its dragged angle to the snapped one and
// commits once every queued drag increment has been applied.
func (e *Engine) settle() {
	snap := Snap(e.g.total)
	diff := float64(snap) - math.Round(e.g.total)

	e.log.Debug().Float64("total", e.g.total).Int("snap", snap).Msg("settling")

	e.anim.Enqueue(rotation.NewAxisAnimation(e.g.slice, e.g.axis, diff).OnDone(func() {
		e.commitGesture(snap)
	}))
}

func (e *Engine) commitGesture(snap int) {
	r := rotation.Normalize(lattice.OnAxis(e.g.axis, snap))
	rotation.UpdateGridPositions(e.g.slice, r, e.lat.Offset())

	if !r.IsZero() {
		m := history.MoveRecord{CubieID: e.g.caught.ID, Rotation: r}
		e.undo.Push(m)
		e.log.Info().Str("move", m.Notation()).Msg("move committed")
		e.emit(Event{Type: EventMoveCommitted, CubieID: m.CubieID, Move: m})
	}

	e.resetGesture()
	e.finishMove(e.resume)
}

// finishMove settles the state after a recorded move: Solved when every
// cubie lines up, next otherwise.
func (e *Engine) finishMove(next State) {
	if e.lat.SameOrientation() {
		e.state = StateSolved
		e.log.Info().Int("moves", e.undo.Len()).Msg("solved")
		e.emit(Event{Type: EventSolved})
		return
	}
	if next == StateSolved {
		next = StateIdle
	}
	e.state = next
}
