package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SeamusWaldron/nxncube/internal/engine"
	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

var (
	// ErrRecording is returned by Start while a recording is open.
	ErrRecording = errors.New("recorder: session already recording")
	// ErrNotRecording is returned when no recording is open.
	ErrNotRecording = errors.New("recorder: no session recording")
)

// Phase keys written to phase_marks.
const (
	PhaseCreated      = "created"
	PhaseManipulating = "manipulating"
	PhaseSolved       = "solved"
)

// SessionState represents the current state of a recording session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateRecording
	StateEnded
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session follows one engine and writes what it does to the database.
type Session struct {
	db        *storage.DB
	stateFile *StateFile
	log       zerolog.Logger

	mu        sync.RWMutex
	state     SessionState
	sessionID string
	startTime time.Time
	moveIndex int
	eng       *engine.Engine
	unsub     func()
	err       error

	// Repositories
	sessionRepo  *storage.SessionRepository
	eventRepo    *storage.EventRepository
	moveRepo     *storage.MoveRepository
	phaseRepo    *storage.PhaseRepository
	snapshotRepo *storage.SnapshotRepository

	// Callbacks
	onMove  func(history.MoveRecord)
	onPhase func(string)
}

// NewSession creates a recorder. stateFile may be nil.
func NewSession(db *storage.DB, stateFile *StateFile, log zerolog.Logger) *Session {
	return &Session{
		db:           db,
		stateFile:    stateFile,
		log:          log,
		state:        StateIdle,
		sessionRepo:  storage.NewSessionRepository(db),
		eventRepo:    storage.NewEventRepository(db),
		moveRepo:     storage.NewMoveRepository(db),
		phaseRepo:    storage.NewPhaseRepository(db),
		snapshotRepo: storage.NewSnapshotRepository(db),
	}
}

// SetMoveCallback sets the callback for recorded moves.
func (s *Session) SetMoveCallback(cb func(history.MoveRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMove = cb
}

// SetPhaseCallback sets the callback for phase marks.
func (s *Session) SetPhaseCallback(cb func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPhase = cb
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SessionID returns the id of the session being recorded.
func (s *Session) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// ElapsedMs returns the time since the recording started in milliseconds.
func (s *Session) ElapsedMs() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateRecording {
		return 0
	}
	return time.Since(s.startTime).Milliseconds()
}

// MoveCount returns the number of moves written so far.
func (s *Session) MoveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.moveIndex
}

// Err returns the first storage error hit while handling events. Events
// keep flowing after a failed write; the error is only remembered.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Start opens a session row under id (a fresh id when empty) and subscribes
// to eng.
func (s *Session) Start(eng *engine.Engine, id, notes, appVersion string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		return "", ErrRecording
	}

	dim := eng.Lattice().Dimension()
	plan := history.FormatMoveRecords(eng.Plan())

	var err error
	if id == "" {
		id, err = s.sessionRepo.Create(dim, plan, notes, appVersion)
	} else {
		err = s.sessionRepo.CreateWithID(id, dim, plan, notes, appVersion)
	}
	if err != nil {
		return "", err
	}

	s.begin(eng, id, time.Now(), 0)

	if _, err := s.phaseRepo.CreatePhaseMark(id, 0, PhaseCreated, ""); err != nil {
		s.log.Warn().Err(err).Msg("phase mark failed")
	}

	s.log.Info().Str("session", id).Int("dimension", dim).Msg("recording started")
	return id, nil
}

// Resume reattaches to an unfinished session row. Move indices continue
// after the last stored move.
func (s *Session) Resume(eng *engine.Engine, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		return ErrRecording
	}

	row, err := s.sessionRepo.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if row == nil {
		return fmt.Errorf("session not found: %s", id)
	}
	if row.EndedAt != nil {
		return fmt.Errorf("session already ended: %s", id)
	}

	next, err := s.moveRepo.GetNextIndex(id)
	if err != nil {
		return fmt.Errorf("failed to get next move index: %w", err)
	}

	s.begin(eng, id, row.StartedAt, next)
	s.log.Info().Str("session", id).Int("moves", next).Msg("recording resumed")
	return nil
}

func (s *Session) begin(eng *engine.Engine, id string, start time.Time, next int) {
	s.eng = eng
	s.sessionID = id
	s.startTime = start
	s.moveIndex = next
	s.err = nil
	s.state = StateRecording
	s.unsub = eng.Subscribe(s.handle)

	if s.stateFile != nil {
		if err := s.stateFile.SetActiveSession(id); err != nil {
			s.log.Warn().Err(err).Msg("state file update failed")
		}
	}
}

// End closes the session row, marking it solved when the lattice is.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return ErrNotRecording
	}

	s.unsub()
	s.unsub = nil

	solved := s.eng.IsSolved()
	if err := s.sessionRepo.End(s.sessionID, solved); err != nil {
		return err
	}
	s.state = StateEnded

	if s.stateFile != nil {
		if err := s.stateFile.ClearActiveSession(); err != nil {
			s.log.Warn().Err(err).Msg("state file update failed")
		}
	}

	s.log.Info().Str("session", s.sessionID).Bool("solved", solved).Int("moves", s.moveIndex).Msg("recording ended")
	return nil
}

// MarkPhase records a phase transition at the current time.
func (s *Session) MarkPhase(phaseKey, notes string) error {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return ErrNotRecording
	}
	_, err := s.phaseRepo.CreatePhaseMark(s.sessionID, time.Since(s.startTime).Milliseconds(), phaseKey, notes)
	cb := s.onPhase
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if cb != nil {
		cb(phaseKey)
	}
	return nil
}

// Snapshot stores the current cubies under label.
func (s *Session) Snapshot(label string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return 0, ErrNotRecording
	}
	return s.snapshotRepo.Create(s.sessionID, time.Since(s.startTime).Milliseconds(),
		label, s.moveIndex, s.eng.Lattice().Infos())
}

type eventPayload struct {
	CubieID int    `json:"cubie_id"`
	Move    string `json:"move,omitempty"`
	State   string `json:"state"`
}

func (s *Session) handle(ev engine.Event) {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return
	}

	tsMs := time.Since(s.startTime).Milliseconds()
	var (
		moved *history.MoveRecord
		phase string
	)

	payload := eventPayload{CubieID: ev.CubieID, State: s.eng.State().String()}
	if ev.Type == engine.EventMoveCommitted || ev.Type == engine.EventMoveUndone {
		payload.Move = ev.Move.Notation()
	}
	data, err := json.Marshal(payload)
	if err == nil {
		_, err = s.eventRepo.Create(s.sessionID, tsMs, ev.Type.String(), string(data))
	}
	s.fail(err)

	switch ev.Type {
	case engine.EventMoveCommitted:
		_, err := s.moveRepo.Create(s.sessionID, s.moveIndex, tsMs, ev.Move)
		s.fail(err)
		if err == nil {
			s.moveIndex++
			m := ev.Move
			moved = &m
		}

	case engine.EventMoveUndone:
		_, err := s.moveRepo.MarkLastUndone(s.sessionID, tsMs)
		s.fail(err)

	case engine.EventScrambleCompleted:
		s.fail(s.sessionRepo.SetPlan(s.sessionID, history.FormatMoveRecords(s.eng.Plan())))
		phase = PhaseManipulating

	case engine.EventSolved:
		_, err := s.snapshotRepo.Create(s.sessionID, tsMs, PhaseSolved, s.moveIndex, s.eng.Lattice().Infos())
		s.fail(err)
		phase = PhaseSolved
	}

	if phase != "" {
		_, err := s.phaseRepo.CreatePhaseMark(s.sessionID, tsMs, phase, "")
		s.fail(err)
	}

	onMove, onPhase := s.onMove, s.onPhase
	s.mu.Unlock()

	if moved != nil && onMove != nil {
		onMove(*moved)
	}
	if phase != "" && onPhase != nil {
		onPhase(phase)
	}
}

// fail remembers the first error. Callers hold mu.
func (s *Session) fail(err error) {
	if err == nil {
		return
	}
	s.log.Error().Err(err).Str("session", s.sessionID).Msg("recording write failed")
	if s.err == nil {
		s.err = err
	}
}
