package nxncube

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SeamusWaldron/nxncube/internal/engine"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/snapshot"
)

// Input is what the host reports for one tick: pointer drag, pick and
// release edges, and the cubie under the pointer.
type Input = engine.Input

// PickCubie is a pick edge that hit the cubie with the given id.
func PickCubie(id int) Input { return engine.PickCubie(id) }

// PickNothing is a pick edge that hit empty space.
func PickNothing() Input { return engine.PickNothing() }

// DragBy is a tick with the pointer moving by (dx, dy) screen units.
func DragBy(dx, dy float64) Input { return engine.DragBy(dx, dy) }

// Release is a release edge.
func Release() Input { return engine.Release() }

// Camera supplies the view basis used to map drags to world axes.
type Camera = engine.Camera

// Snapshot is a saved session.
type Snapshot = snapshot.Document

// Session is one play session: a lattice, its scramble plan and undo
// history, and the manipulation engine that drives it.
//
// Create a Session using NewSession, then Start it and call Tick once per
// frame:
//
//	s, err := nxncube.NewSession(nxncube.WithDimension(3))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//	s.Start()
//
// A Session is not safe for concurrent use except for registering callbacks.
type Session struct {
	id     string
	config *config
	eng    *engine.Engine
	unsub  func()
	closed bool

	mu    sync.RWMutex
	phase Phase

	// Callbacks
	onCaught      func(int)
	onReleased    func(int)
	onSolved      func()
	onMove        func(Move)
	onUndo        func(Move)
	onPhaseChange func(Phase)
}

// NewSession builds a solved lattice. Call Start to scramble it and hand it
// to the player.
func NewSession(opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	lat, err := lattice.Build(cfg.dimension)
	if err != nil {
		return nil, err
	}
	return newSession(uuid.NewString(), cfg, lat), nil
}

// RestoreSession rebuilds a session from a snapshot. The restored session
// accepts gestures immediately unless it was saved solved.
func RestoreSession(snap Snapshot, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.dimension = snap.Dimension

	lat, err := snap.Lattice()
	if err != nil {
		return nil, err
	}

	id := snap.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	s := newSession(id, cfg, lat)
	s.eng.SetPlan(snap.Plan)
	s.eng.RestoreHistory(snap.History)

	if snap.Phase == PhaseSolved.String() && lat.SameOrientation() {
		s.phase = PhaseSolved
	} else {
		s.eng.Manipulate()
		s.phase = PhaseManipulating
	}
	return s, nil
}

func newSession(id string, cfg *config, lat *lattice.Lattice) *Session {
	ecfg := cfg.engine
	if !cfg.seeded {
		ecfg.Seed = uint64(time.Now().UnixNano())
	}

	s := &Session{
		id:     id,
		config: cfg,
		phase:  PhaseCreated,
	}
	s.eng = engine.New(lat,
		engine.WithConfig(ecfg),
		engine.WithCamera(cfg.camera),
		engine.WithLogger(cfg.logger.With().Str("session", id).Logger()),
	)
	s.unsub = s.eng.Subscribe(s.handleEvent)
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Dimension returns N.
func (s *Session) Dimension() int {
	return s.eng.Lattice().Dimension()
}

// Engine returns the underlying engine.
func (s *Session) Engine() *engine.Engine {
	return s.eng
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Start scrambles the lattice with a fresh plan and hands it to the player
// once the scramble completes.
func (s *Session) Start() error {
	if s.closed {
		return ErrClosed
	}
	if s.Phase() != PhaseCreated {
		return ErrAlreadyStarted
	}
	return s.scramble(false)
}

// Retry destroys every cubie, clears the history, rebuilds a solved lattice
// and replays the session's scramble plan.
func (s *Session) Retry() error {
	if s.closed {
		return ErrClosed
	}
	if s.Phase() == PhaseCreated {
		return ErrNotStarted
	}
	if s.eng.Busy() {
		return ErrBusy
	}

	old := s.eng.Lattice()
	lat, err := lattice.Build(old.Dimension())
	if err != nil {
		return err
	}
	old.Clear()

	if err := s.eng.Reset(lat); err != nil {
		return err
	}
	s.eng.ClearHistory()
	return s.scramble(true)
}

func (s *Session) scramble(reuse bool) error {
	s.eng.Manipulate()
	if _, err := s.eng.Scramble(s.config.scrambleTimes, reuse); err != nil {
		return err
	}
	s.setPhase(PhaseScrambling)
	return nil
}

// Tick advances the session by one frame. Callbacks fire from inside Tick.
func (s *Session) Tick(dt time.Duration, in Input) {
	if s.closed {
		return
	}
	s.eng.Tick(dt, in)
}

// RunUntilIdle ticks with empty input until nothing is in flight, for at
// most limit ticks.
func (s *Session) RunUntilIdle(dt time.Duration, limit int) bool {
	return s.eng.RunUntilIdle(dt, limit)
}

// Rotate animates a recorded move without a gesture.
func (s *Session) Rotate(m Move) error {
	if s.closed {
		return ErrClosed
	}
	return s.eng.Rotate(m.CubieID, m.Rotation)
}

// Undo starts reverting the last recorded move. It returns false when the
// history is empty or a move is in flight.
func (s *Session) Undo() bool {
	if s.closed {
		return false
	}
	return s.eng.Undo()
}

// SetRayCastEnabled toggles picking.
func (s *Session) SetRayCastEnabled(enabled bool) {
	s.eng.SetRayCastEnabled(enabled)
}

// IsSolved returns true if every cubie shares one orientation.
func (s *Session) IsSolved() bool {
	return s.eng.IsSolved()
}

// Busy returns true while a gesture, animation, scramble or undo is in flight.
func (s *Session) Busy() bool {
	return s.eng.Busy()
}

// Moves returns the undo history, oldest first.
func (s *Session) Moves() []Move {
	return s.eng.History()
}

// Plan returns the scramble plan.
func (s *Session) Plan() Plan {
	return s.eng.Plan()
}

// Cubies returns the save records of every cubie.
func (s *Session) Cubies() []CubieInfo {
	return s.eng.Lattice().Infos()
}

// Snapshot captures the session for saving.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Version:   snapshot.Version,
		SessionID: s.id,
		Dimension: s.Dimension(),
		SavedAt:   time.Now().UTC(),
		Phase:     s.Phase().String(),
		Cubies:    s.Cubies(),
		History:   s.Moves(),
		Plan:      s.Plan(),
	}
}

// Close detaches the session's callbacks. Further ticks are ignored.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.unsub()
	return nil
}

// Event callbacks

// OnCaught sets a callback that fires when a pick catches a cubie.
func (s *Session) OnCaught(cb func(cubieID int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCaught = cb
}

// OnReleased sets a callback that fires when the caught cubie is released.
func (s *Session) OnReleased(cb func(cubieID int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReleased = cb
}

// OnSolved sets a callback that fires when a committed move solves the cube.
func (s *Session) OnSolved(cb func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSolved = cb
}

// OnMove sets a callback that fires for each recorded move.
func (s *Session) OnMove(cb func(Move)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMove = cb
}

// OnUndo sets a callback that fires when an undo finishes.
func (s *Session) OnUndo(cb func(Move)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUndo = cb
}

// OnPhaseChange sets a callback for phase changes.
func (s *Session) OnPhaseChange(cb func(Phase)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPhaseChange = cb
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	if s.phase == p {
		s.mu.Unlock()
		return
	}
	s.phase = p
	cb := s.onPhaseChange
	s.mu.Unlock()

	if cb != nil {
		cb(p)
	}
}

func (s *Session) handleEvent(ev engine.Event) {
	s.mu.RLock()
	onCaught := s.onCaught
	onReleased := s.onReleased
	onSolved := s.onSolved
	onMove := s.onMove
	onUndo := s.onUndo
	s.mu.RUnlock()

	switch ev.Type {
	case engine.EventCubeCaught:
		if onCaught != nil {
			onCaught(ev.CubieID)
		}

	case engine.EventCubeReleased:
		if onReleased != nil {
			onReleased(ev.CubieID)
		}

	case engine.EventMoveCommitted:
		if s.Phase() == PhaseSolved {
			s.setPhase(PhaseManipulating)
		}
		if onMove != nil {
			onMove(ev.Move)
		}

	case engine.EventMoveUndone:
		if s.Phase() == PhaseSolved {
			s.setPhase(PhaseManipulating)
		}
		if onUndo != nil {
			onUndo(ev.Move)
		}

	case engine.EventSolved:
		s.setPhase(PhaseSolved)
		if onSolved != nil {
			onSolved()
		}

	case engine.EventScrambleCompleted:
		s.setPhase(PhaseManipulating)
	}
}
