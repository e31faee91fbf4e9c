package engine

import (
	"github.com/SeamusWaldron/nxncube/internal/history"
)

// EventType identifies an engine event.
type EventType int

const (
	EventCubeCaught EventType = iota
	EventCubeReleased
	EventSolved
	EventMoveCommitted
	EventMoveUndone
	EventScrambleCompleted
)

func (t EventType) String() string {
	switch t {
	case EventCubeCaught:
		return "cube_caught"
	case EventCubeReleased:
		return "cube_released"
	case EventSolved:
		return "solved"
	case EventMoveCommitted:
		return "move_committed"
	case EventMoveUndone:
		return "move_undone"
	case EventScrambleCompleted:
		return "scramble_completed"
	default:
		return "unknown"
	}
}

// Event is emitted to subscribers after the tick or call that caused it.
type Event struct {
	Type    EventType
	CubieID int                // caught cubie, or the move's reference cubie
	Move    history.MoveRecord // set for move_committed and move_undone
}

type subscriber struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every event and returns a function that removes it.
func (e *Engine) Subscribe(fn func(Event)) (unsubscribe func()) {
	e.nextSub++
	id := e.nextSub
	e.subs = append(e.subs, subscriber{id: id, fn: fn})

	return func() {
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) emit(ev Event) {
	e.pending = append(e.pending, ev)
}

// flush delivers queued events. Handlers may call back into the engine.
func (e *Engine) flush() {
	for len(e.pending) > 0 {
		ev := e.pending[0]
		e.pending = e.pending[1:]

		e.log.Debug().Str("event", ev.Type.String()).Int("cubie", ev.CubieID).Msg("emit")
		for _, s := range append([]subscriber(nil), e.subs...) {
			s.fn(ev)
		}
	}
}
