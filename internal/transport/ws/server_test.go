package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/nxncube"
)

func newSession(t *testing.T) *nxncube.Session {
	t.Helper()
	sess, err := nxncube.NewSession(nxncube.WithDimension(3), nxncube.WithSeed(7))
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return sess
}

type envelope struct {
	Type    string `json:"type"`
	Event   string `json:"event"`
	Move    string `json:"move"`
	Command string `json:"command"`
}

// readUntil reads messages until one satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, match func(envelope, []byte) bool) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var env envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		if match(env, msg) {
			return msg
		}
	}
}

func TestServer_StreamAndCommands(t *testing.T) {
	sess := newSession(t)
	srv := NewServer(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, sess, 2*time.Millisecond) }()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello HelloMsg
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, TypeHello, hello.Type)
	assert.Equal(t, Version, hello.ProtocolVersion)
	assert.Equal(t, 3, hello.Dimension)
	assert.Equal(t, sess.ID(), hello.SessionID)

	require.NoError(t, conn.WriteJSON(Command{Type: CmdSnapshot}))
	raw := readUntil(t, conn, func(e envelope, _ []byte) bool { return e.Type == TypeFrame })
	var frame FrameMsg
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Len(t, frame.Cubies, 26)

	require.NoError(t, conn.WriteJSON(Command{Type: CmdRotate, Move: "#4 X+90"}))
	readUntil(t, conn, func(e envelope, _ []byte) bool {
		return e.Type == TypeEvent && e.Event == "move_committed" && e.Move == "#4 X+90"
	})

	require.NoError(t, conn.WriteJSON(Command{Type: CmdRotate, Move: "garbage"}))
	readUntil(t, conn, func(e envelope, _ []byte) bool {
		return e.Type == TypeError && e.Command == CmdRotate
	})

	require.NoError(t, conn.WriteJSON(Command{Type: CmdUndo}))
	readUntil(t, conn, func(e envelope, _ []byte) bool {
		return e.Type == TypeEvent && e.Event == "move_undone"
	})

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestServer_DrainMergesInput(t *testing.T) {
	sess := newSession(t)
	srv := NewServer(zerolog.Nop())

	srv.commands <- Command{Type: CmdInput, Pressed: true, Hit: true, HitID: 4}
	srv.commands <- Command{Type: CmdInput, Drag: [2]float64{10, -2}}
	srv.commands <- Command{Type: CmdInput, Drag: [2]float64{5, 1}, Released: true}
	srv.commands <- Command{Type: CmdSnapshot}

	in, snap := srv.drain(sess)
	assert.True(t, snap)
	assert.True(t, in.Pressed)
	assert.True(t, in.Hit)
	assert.Equal(t, 4, in.HitID)
	assert.True(t, in.Released)
	assert.InDelta(t, 15.0, in.Drag.X(), 1e-9)
	assert.InDelta(t, -1.0, in.Drag.Y(), 1e-9)

	in, snap = srv.drain(sess)
	assert.False(t, snap)
	assert.False(t, in.Pressed)
}

func TestServer_DrainSplitsGestures(t *testing.T) {
	sess := newSession(t)
	srv := NewServer(zerolog.Nop())

	srv.commands <- Command{Type: CmdInput, Pressed: true, Hit: true, HitID: 4, Released: true}
	srv.commands <- Command{Type: CmdInput, Pressed: true, Hit: true, HitID: 10}
	srv.commands <- Command{Type: CmdInput, Drag: [2]float64{60, 0}}
	srv.commands <- Command{Type: CmdInput, Released: true}
	srv.commands <- Command{Type: CmdSnapshot}

	in, snap := srv.drain(sess)
	assert.False(t, snap)
	assert.True(t, in.Pressed)
	assert.True(t, in.Released)
	assert.Equal(t, 4, in.HitID)

	in, snap = srv.drain(sess)
	assert.True(t, snap)
	assert.True(t, in.Pressed)
	assert.Equal(t, 10, in.HitID)
	assert.True(t, in.Released)
	assert.InDelta(t, 60.0, in.Drag.X(), 1e-9)

	in, _ = srv.drain(sess)
	assert.False(t, in.Pressed)
	assert.Nil(t, srv.held)
}

func TestServer_ApplyRejects(t *testing.T) {
	sess := newSession(t)
	srv := NewServer(zerolog.Nop())

	var in nxncube.Input
	assert.ErrorIs(t, srv.apply(sess, Command{Type: CmdUndo}, &in), errNothingToUndo)
	assert.Error(t, srv.apply(sess, Command{Type: "JUMP"}, &in))
	assert.ErrorIs(t, srv.apply(sess, Command{Type: CmdRetry}, &in), nxncube.ErrNotStarted)
	assert.ErrorIs(t, srv.apply(sess, Command{Type: CmdRotate, Move: "#99 X+90"}, &in), nxncube.ErrUnknownCubie)
}
