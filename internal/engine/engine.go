// Package engine drives an N×N×N lattice from per-tick input: it turns drags
// into slice rotations, snaps them to quarter turns, keeps the undo history
// and runs scrambles. Everything happens on the caller's goroutine inside Tick.
package engine

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/rotation"
)

var (
	// ErrBusy is returned when an operation needs the engine at rest.
	ErrBusy = errors.New("engine: busy")
	// ErrUnknownCubie is returned when a move names a cubie that does not exist.
	ErrUnknownCubie = errors.New("engine: unknown cubie")
	// ErrInvalidMove is returned for rotations that are not a single-axis
	// quarter-turn multiple.
	ErrInvalidMove = errors.New("engine: invalid move")
)

// State is the manipulation state.
type State int

const (
	StateDisabled State = iota
	StateIdle
	StateAwaitingAxis
	StateRotating
	StateCommitting
	StateSolved
	StateScrambling
	StateUndoing
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateIdle:
		return "idle"
	case StateAwaitingAxis:
		return "awaiting_axis"
	case StateRotating:
		return "rotating"
	case StateCommitting:
		return "committing"
	case StateSolved:
		return "solved"
	case StateScrambling:
		return "scrambling"
	case StateUndoing:
		return "undoing"
	default:
		return "unknown"
	}
}

// Config tunes gesture handling and scrambles.
type Config struct {
	DragThreshold   float64       // accumulated drag before an axis is chosen
	DragSensitivity float64       // degrees per unit of drag
	ScramblePause   time.Duration // pause after each scramble move
	ScrambleDegree  int
	Seed            uint64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		DragThreshold:   50,
		DragSensitivity: 0.3,
		ScramblePause:   100 * time.Millisecond,
		ScrambleDegree:  history.DefaultScrambleDegree,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the engine tuning.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithCamera sets the camera used to map drags to world axes.
func WithCamera(cam Camera) Option {
	return func(e *Engine) {
		e.cam = cam
	}
}

// gesture is the state of the drag in progress.
type gesture struct {
	caught     *lattice.Cubie
	drag       [2]float64
	horizontal bool
	axis       lattice.Axis
	sign       int
	slice      []*lattice.Cubie
	total      float64
}

type scrambleJob struct {
	plan    history.Plan
	next    int
	running bool
	pause   time.Duration
	done    chan struct{}
}

// Engine owns a lattice and everything that mutates it.
type Engine struct {
	cfg Config
	log zerolog.Logger
	cam Camera

	lat       *lattice.Lattice
	anim      rotation.Animator
	undo      history.Stack
	scrambler *history.Scrambler

	state   State
	resume  State
	rayCast bool
	g       gesture
	job     *scrambleJob

	subs    []subscriber
	nextSub int
	pending []Event
}

// New creates an engine around lat. The engine starts disabled; call
// Manipulate to accept gestures.
func New(lat *lattice.Lattice, opts ...Option) *Engine {
	e := &Engine{
		cfg:     DefaultConfig(),
		log:     zerolog.Nop(),
		cam:     FrontCamera(),
		lat:     lat,
		state:   StateDisabled,
		rayCast: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.scrambler = history.NewScrambler(e.cfg.Seed, e.cfg.ScrambleDegree)
	e.resetGesture()
	return e
}

// Lattice returns the lattice the engine drives.
func (e *Engine) Lattice() *lattice.Lattice {
	return e.lat
}

// State returns the current manipulation state.
func (e *Engine) State() State {
	return e.state
}

// Config returns the engine tuning.
func (e *Engine) Config() Config {
	return e.cfg
}

// Busy reports whether a gesture, animation, scramble or undo is in flight.
func (e *Engine) Busy() bool {
	if e.anim.Busy() {
		return true
	}
	switch e.state {
	case StateDisabled, StateIdle, StateSolved:
		return false
	}
	return true
}

// IsSolved reports whether every cubie shares one orientation.
func (e *Engine) IsSolved() bool {
	return e.lat.SameOrientation()
}

// Manipulate enables gesture handling. During a scramble it takes effect
// once the scramble completes.
func (e *Engine) Manipulate() {
	switch e.state {
	case StateDisabled, StateSolved:
		e.resetGesture()
		e.state = StateIdle
	default:
		e.resume = StateIdle
	}
}

// Disable stops gesture handling. A gesture in progress is abandoned without
// committing; the lattice is left as it is.
func (e *Engine) Disable() {
	if e.Busy() {
		e.resume = StateDisabled
		return
	}
	e.resetGesture()
	e.state = StateDisabled
}

// SetRayCastEnabled toggles picking. Disabled picking ignores pick edges.
func (e *Engine) SetRayCastEnabled(enabled bool) {
	e.rayCast = enabled
}

// RayCastEnabled reports whether picking is enabled.
func (e *Engine) RayCastEnabled() bool {
	return e.rayCast
}

// History returns the undo stack, oldest first.
func (e *Engine) History() []history.MoveRecord {
	return e.undo.Records()
}

// ClearHistory drops the undo stack.
func (e *Engine) ClearHistory() {
	e.undo.Clear()
}

// RestoreHistory replaces the undo stack, e.g. after loading a snapshot.
func (e *Engine) RestoreHistory(moves []history.MoveRecord) {
	e.undo.Clear()
	for _, m := range moves {
		e.undo.Push(m)
	}
}

// Plan returns the retained scramble plan.
func (e *Engine) Plan() history.Plan {
	return e.scrambler.Plan()
}

// SetPlan replaces the retained scramble plan.
func (e *Engine) SetPlan(p history.Plan) {
	e.scrambler.SetPlan(p)
}

// Reset swaps in a new lattice. History and the retained plan are kept.
func (e *Engine) Reset(lat *lattice.Lattice) error {
	if e.Busy() {
		return ErrBusy
	}
	e.lat = lat
	e.resetGesture()
	if e.state == StateSolved {
		e.state = StateIdle
	}
	return nil
}

// Tick advances the engine by one frame: the head animation takes one
// increment, then the input is applied to the current state.
func (e *Engine) Tick(dt time.Duration, in Input) {
	e.anim.Tick()

	switch e.state {
	case StateIdle:
		e.tickIdle(in)
	case StateAwaitingAxis:
		e.tickAwaiting(in)
	case StateRotating:
		e.tickRotating(in)
	case StateScrambling:
		e.tickScramble(dt)
	}

	e.flush()
}

// RunUntilIdle ticks with empty input until nothing is in flight or limit
// ticks have passed. It reports whether the engine came to rest.
func (e *Engine) RunUntilIdle(dt time.Duration, limit int) bool {
	for i := 0; i < limit; i++ {
		if !e.Busy() {
			return true
		}
		e.Tick(dt, Input{})
	}
	return !e.Busy()
}

func (e *Engine) resetGesture() {
	e.g = gesture{axis: lattice.AxisNone}
}
