// Package ws streams cubie poses to an external renderer over websocket and
// takes pointer input and move commands back.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/SeamusWaldron/nxncube"
	"github.com/SeamusWaldron/nxncube/internal/engine"
)

const (
	writeWait   = 5 * time.Second
	readWait    = 60 * time.Second
	clientQueue = 256
	cmdQueue    = 1024
)

// Server fans frames and events out to every connected client and queues
// their commands for the tick loop.
type Server struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uint64]chan []byte
	hello   HelloMsg
	nextID  atomic.Uint64

	commands chan Command
	held     *Command // INPUT that starts the next tick's gesture; Run goroutine only
	ready    chan struct{}
	once     sync.Once
}

// NewServer creates a server. Run must be called to drive a session.
func NewServer(log zerolog.Logger) *Server {
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    64 * 1024,
			WriteBufferSize:   64 * 1024,
			EnableCompression: true,
			CheckOrigin:       func(r *http.Request) bool { return true }, // dev default
		},
		clients:  make(map[uint64]chan []byte),
		commands: make(chan Command, cmdQueue),
		ready:    make(chan struct{}),
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Handler upgrades the request and serves one client until it disconnects.
// Clients wait for Run to start before the upgrade.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		select {
		case <-s.ready:
		case <-r.Context().Done():
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Debug().Err(err).Msg("upgrade failed")
			return
		}
		defer conn.Close()

		id, out := s.register()
		defer s.unregister(id)
		s.log.Info().Uint64("client", id).Str("remote", r.RemoteAddr).Msg("client connected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readWait))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var cmd Command
			if err := json.Unmarshal(msg, &cmd); err != nil {
				s.send(id, ErrorMsg{Type: TypeError, Message: "bad command"})
				continue
			}
			cmd.client = id
			select {
			case s.commands <- cmd:
			default:
				// Drop under load; the client may resend.
				s.log.Warn().Uint64("client", id).Str("command", cmd.Type).Msg("command queue full")
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		s.log.Info().Uint64("client", id).Msg("client disconnected")
	}
}

func (s *Server) register() (uint64, chan []byte) {
	id := s.nextID.Add(1)
	out := make(chan []byte, clientQueue)

	s.mu.Lock()
	s.clients[id] = out
	hello := s.hello
	s.mu.Unlock()

	if b, err := json.Marshal(hello); err == nil {
		out <- b
	}
	return id, out
}

func (s *Server) unregister(id uint64) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
}

// Broadcast sends v to every client. Slow clients miss messages rather than
// stall the tick loop.
func (s *Server) Broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("encode failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, out := range s.clients {
		select {
		case out <- b:
		default:
			s.log.Debug().Uint64("client", id).Msg("client queue full, dropping")
		}
	}
}

func (s *Server) send(id uint64, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if out, ok := s.clients[id]; ok {
		select {
		case out <- b:
		default:
		}
	}
}

// Run ticks sess every dt until ctx is done, applying queued commands
// before each tick and broadcasting a frame whenever cubies may have moved.
// All session access happens on the calling goroutine.
func (s *Server) Run(ctx context.Context, sess *nxncube.Session, dt time.Duration) error {
	s.mu.Lock()
	s.hello = HelloMsg{
		Type:            TypeHello,
		ProtocolVersion: Version,
		SessionID:       sess.ID(),
		Dimension:       sess.Dimension(),
	}
	s.mu.Unlock()
	s.once.Do(func() { close(s.ready) })

	var tick uint64
	unsub := sess.Engine().Subscribe(func(ev engine.Event) {
		msg := EventMsg{Type: TypeEvent, Tick: tick, Event: ev.Type.String(), CubieID: ev.CubieID}
		if ev.Type == engine.EventMoveCommitted || ev.Type == engine.EventMoveUndone {
			msg.Move = ev.Move.Notation()
		}
		s.Broadcast(msg)
	})
	defer unsub()

	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	force := true
	wasBusy := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		in, snap := s.drain(sess)
		sess.Tick(dt, in)
		tick++

		busy := sess.Busy()
		if force || snap || busy || wasBusy {
			s.Broadcast(FrameMsg{
				Type:   TypeFrame,
				Tick:   tick,
				State:  sess.Engine().State().String(),
				Phase:  sess.Phase().String(),
				Cubies: sess.Cubies(),
			})
		}
		force = false
		wasBusy = busy
	}
}

// drain applies every queued command and merges INPUT commands into one
// tick of input. An INPUT carrying a second pick, or a pick or release after
// this tick's release, is held back with everything queued behind it until
// the next tick. It reports whether a client asked for a full frame.
func (s *Server) drain(sess *nxncube.Session) (nxncube.Input, bool) {
	var (
		in   nxncube.Input
		snap bool
	)
	if s.held != nil {
		cmd := *s.held
		s.held = nil
		snap = s.handle(sess, cmd, &in)
	}
	for {
		select {
		case cmd := <-s.commands:
			if cmd.Type == CmdInput && !mergeable(in, cmd) {
				s.held = &cmd
				return in, snap
			}
			if s.handle(sess, cmd, &in) {
				snap = true
			}
		default:
			return in, snap
		}
	}
}

func (s *Server) handle(sess *nxncube.Session, cmd Command, in *nxncube.Input) bool {
	if err := s.apply(sess, cmd, in); err != nil {
		s.send(cmd.client, ErrorMsg{Type: TypeError, Command: cmd.Type, Message: err.Error()})
	}
	return cmd.Type == CmdSnapshot
}

// mergeable reports whether cmd still belongs to the gesture edges already
// collected in in.
func mergeable(in nxncube.Input, cmd Command) bool {
	switch {
	case cmd.Pressed && (in.Pressed || in.Released):
		return false
	case cmd.Released && in.Released:
		return false
	}
	return true
}

var errNothingToUndo = errors.New("nothing to undo")

func (s *Server) apply(sess *nxncube.Session, cmd Command, in *nxncube.Input) error {
	switch cmd.Type {
	case CmdInput:
		in.Drag[0] += cmd.Drag[0]
		in.Drag[1] += cmd.Drag[1]
		if cmd.Pressed {
			in.Pressed = true
			in.Hit = cmd.Hit
			in.HitID = cmd.HitID
		}
		in.Released = in.Released || cmd.Released
		return nil

	case CmdRotate:
		m, err := nxncube.ParseMove(cmd.Move)
		if err != nil {
			return err
		}
		return sess.Rotate(m)

	case CmdUndo:
		if !sess.Undo() {
			return errNothingToUndo
		}
		return nil

	case CmdRetry:
		return sess.Retry()

	case CmdSnapshot:
		return nil

	default:
		return errors.New("unknown command " + cmd.Type)
	}
}
