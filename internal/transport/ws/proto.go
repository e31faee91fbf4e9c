package ws

import (
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// Version is the wire protocol version sent in HELLO.
const Version = "1"

// Server to client message types.
const (
	TypeHello = "HELLO"
	TypeFrame = "FRAME"
	TypeEvent = "EVENT"
	TypeError = "ERROR"
)

// Client to server command types.
const (
	CmdInput    = "INPUT"
	CmdRotate   = "ROTATE"
	CmdUndo     = "UNDO"
	CmdRetry    = "RETRY"
	CmdSnapshot = "SNAPSHOT"
)

// HelloMsg is sent once after the upgrade.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	Dimension       int    `json:"dimension"`
}

// FrameMsg carries every cubie pose after a tick that moved something.
type FrameMsg struct {
	Type   string         `json:"type"`
	Tick   uint64         `json:"tick"`
	State  string         `json:"state"`
	Phase  string         `json:"phase"`
	Cubies []lattice.Info `json:"cubies"`
}

// EventMsg mirrors one engine event.
type EventMsg struct {
	Type    string `json:"type"`
	Tick    uint64 `json:"tick"`
	Event   string `json:"event"`
	CubieID int    `json:"cubie_id"`
	Move    string `json:"move,omitempty"`
}

// ErrorMsg reports a rejected command to the client that sent it.
type ErrorMsg struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Message string `json:"message"`
}

// Command is a client request. The renderer does the picking, so INPUT
// carries the hit result along with the pointer delta.
type Command struct {
	Type     string     `json:"type"`
	Drag     [2]float64 `json:"drag,omitempty"`
	Pressed  bool       `json:"pressed,omitempty"`
	Hit      bool       `json:"hit,omitempty"`
	HitID    int        `json:"hit_id,omitempty"`
	Released bool       `json:"released,omitempty"`
	Move     string     `json:"move,omitempty"`

	client uint64
}
