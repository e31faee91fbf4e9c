package cli

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/nxncube"
	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/recorder"
	"github.com/SeamusWaldron/nxncube/internal/snapshot"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (*playModel, *recorder.StateFile) {
	t.Helper()
	sess, err := nxncube.NewSession(nxncube.WithDimension(2), nxncube.WithSeed(3))
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	sf, err := recorder.NewStateFile(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	return newPlayModel(sess, nil, sf), sf
}

func settle(m *playModel) {
	for i := 0; i < 1000 && m.sess.Busy(); i++ {
		m.Update(tickMsg(time.Now()))
	}
	m.Update(tickMsg(time.Now()))
}

func TestPlayModel_TurnAndUndo(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, 8, m.count)

	m.Update(key("x"))
	settle(m)
	require.Len(t, m.sess.Moves(), 1)
	assert.Equal(t, nxncube.Turn(0, nxncube.Rotation{X: 90}), m.sess.Moves()[0])
	assert.Equal(t, []string{"#0 X+90"}, m.lastMoves)

	m.Update(key("u"))
	settle(m)
	assert.Empty(t, m.sess.Moves())
	require.Len(t, m.lastMoves, 2)
	assert.True(t, strings.HasPrefix(m.lastMoves[1], "undo "))
	assert.True(t, m.sess.IsSolved())

	m.Update(key("u"))
	assert.EqualError(t, m.err, "nothing to undo")
}

func TestPlayModel_ReverseTurnAndSelection(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 7, m.selected)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.selected)

	m.Update(key("Z"))
	settle(m)
	require.Len(t, m.sess.Moves(), 1)
	assert.Equal(t, nxncube.Rotation{Z: -90}, m.sess.Moves()[0].Rotation)
}

func TestPlayModel_RenderAndView(t *testing.T) {
	m, _ := newTestModel(t)
	settle(m)

	require.NotEmpty(t, m.grid)
	assert.Contains(t, m.grid, "z=0")
	assert.Contains(t, m.grid, "z=1")

	view := m.View()
	assert.Contains(t, view, "nxncube 2x2x2")
	assert.Contains(t, view, "Moves: 0")

	m.Update(key("q"))
	assert.True(t, m.quitting)
	assert.Equal(t, "Goodbye!\n", m.View())
}

func TestPlayModel_SaveSnapshot(t *testing.T) {
	m, sf := newTestModel(t)
	m.Update(key("y"))
	settle(m)

	m.Update(key("s"))
	require.NoError(t, m.err)
	assert.Equal(t, m.saved, sf.LastSnapshotPath())

	doc, err := snapshot.Read(m.saved)
	require.NoError(t, err)
	assert.Equal(t, m.sess.ID(), doc.SessionID)
	assert.Len(t, doc.History, 1)
	assert.Len(t, doc.Cubies, 8)
}

func TestGeneratePlan(t *testing.T) {
	a, err := generatePlan(3, 12, 42, 90)
	require.NoError(t, err)
	b, err := generatePlan(3, 12, 42, 90)
	require.NoError(t, err)

	assert.Len(t, a, 12)
	assert.Equal(t, a, b)
	for _, m := range a {
		assert.True(t, m.Valid())
		assert.Less(t, m.CubieID, lattice.ShellCount(3))
	}

	_, err = generatePlan(1, 5, 1, 90)
	assert.ErrorIs(t, err, lattice.ErrInvalidDimension)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m5.0s", formatDuration(125*time.Second))
	assert.Equal(t, "abcdef12", shortID("abcdef12-3456"))
	assert.Equal(t, "abc", shortID("abc"))
}

func useTempDB(t *testing.T) *storage.DB {
	t.Helper()
	saved := settings
	t.Cleanup(func() { settings = saved })
	settings.DBPath = filepath.Join(t.TempDir(), "nxncube.db")

	db, err := openDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenDB_Migrated(t *testing.T) {
	db := useTempDB(t)

	v, err := db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, storage.LatestVersion(), v)
	assert.Equal(t, settings.DBPath, db.Path())
}

func TestSessionPatterns(t *testing.T) {
	db := useTempDB(t)
	sessionRepo := storage.NewSessionRepository(db)
	moveRepo := storage.NewMoveRepository(db)

	seq := []history.MoveRecord{
		{CubieID: 4, Rotation: lattice.Vec3i{X: 90}},
		{CubieID: 10, Rotation: lattice.Vec3i{Y: 90}},
		{CubieID: 4, Rotation: lattice.Vec3i{X: 90}},
		{CubieID: 10, Rotation: lattice.Vec3i{Y: 90}},
	}
	for i := 0; i < 2; i++ {
		id, err := sessionRepo.Create(3, "", "", "test")
		require.NoError(t, err)
		require.NoError(t, moveRepo.CreateBatch(id, seq, 0, time.Now()))
	}
	_, err := sessionRepo.Create(3, "", "empty", "test")
	require.NoError(t, err)

	sessions, err := sessionRepo.List(10)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	report, err := sessionPatterns(db, sessions, 3)
	require.NoError(t, err)
	require.NotEmpty(t, report.TopNGrams[2])

	top := report.TopNGrams[2][0]
	assert.Equal(t, []string{"X+90", "Y+90"}, top.Sequence)
	assert.Equal(t, 4, top.Count)
}
