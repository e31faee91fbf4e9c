package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_Migrates(t *testing.T) {
	db := openTestDB(t)

	v, err := db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), v)

	// Re-applying is a no-op.
	require.NoError(t, db.MigrateUp())
	v, err = db.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestVersion(), v)
}

func TestSessionRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewSessionRepository(db)

	first, err := repo.Create(3, "#4 X+90", "", "test")
	require.NoError(t, err)
	second, err := repo.Create(5, "", "notes", "")
	require.NoError(t, err)

	s, err := repo.Get(first)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 3, s.Dimension)
	require.NotNil(t, s.PlanText)
	assert.Equal(t, "#4 X+90", *s.PlanText)
	assert.Nil(t, s.Notes)
	assert.Nil(t, s.EndedAt)
	assert.False(t, s.Solved)

	require.NoError(t, repo.SetPlan(second, "#0 Z-90"))
	require.NoError(t, repo.End(second, true))

	last, err := repo.GetLast()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, second, last.SessionID)
	assert.True(t, last.Solved)
	require.NotNil(t, last.EndedAt)
	require.NotNil(t, last.DurationMs)
	assert.GreaterOrEqual(t, *last.DurationMs, int64(0))

	list, err := repo.List(10)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	missing, err := repo.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Delete(first))
	list, err = repo.List(10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMoveRepository_UndoAndRecords(t *testing.T) {
	db := openTestDB(t)
	sessionID, err := NewSessionRepository(db).Create(3, "", "", "")
	require.NoError(t, err)

	moves := NewMoveRepository(db)
	a := history.MoveRecord{CubieID: 4, Rotation: lattice.Vec3i{X: 90}}
	b := history.MoveRecord{CubieID: 10, Rotation: lattice.Vec3i{Y: -90}}
	c := history.MoveRecord{CubieID: 0, Rotation: lattice.Vec3i{Z: 180}}

	_, err = moves.Create(sessionID, 0, 100, a)
	require.NoError(t, err)
	require.NoError(t, moves.CreateBatch(sessionID, []history.MoveRecord{b, c}, 1, time.UnixMilli(200)))

	next, err := moves.GetNextIndex(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	idx, err := moves.MarkLastUndone(sessionID, 300)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	rows, err := moves.GetBySession(sessionID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "#10 Y-90", rows[1].Notation)
	assert.Equal(t, b, rows[1].Record())
	assert.True(t, rows[2].Undone())

	assert.Equal(t, []history.MoveRecord{a, b}, ToRecords(rows))

	live, err := NewSessionRepository(db).GetMoveCount(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, live)

	total, err := moves.Count(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestMoveRepository_RequiresSession(t *testing.T) {
	db := openTestDB(t)
	_, err := NewMoveRepository(db).Create("missing", 0, 0, history.MoveRecord{CubieID: 1, Rotation: lattice.Vec3i{X: 90}})
	assert.Error(t, err)
}

func TestEventsAndPhases(t *testing.T) {
	db := openTestDB(t)
	sessionID, err := NewSessionRepository(db).Create(2, "", "", "")
	require.NoError(t, err)

	events := NewEventRepository(db)
	_, err = events.Create(sessionID, 10, "cube_caught", `{"cubie":3}`)
	require.NoError(t, err)
	_, err = events.Create(sessionID, 20, "solved", "")
	require.NoError(t, err)

	solved, err := events.GetByType(sessionID, "solved")
	require.NoError(t, err)
	require.Len(t, solved, 1)
	assert.Equal(t, "{}", solved[0].PayloadJSON)

	n, err := events.Count(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	phases := NewPhaseRepository(db)
	for _, m := range []struct {
		ts  int64
		key string
	}{{0, "scrambling"}, {500, "manipulating"}, {4500, "solved"}} {
		_, err := phases.CreatePhaseMark(sessionID, m.ts, m.key, "")
		require.NoError(t, err)
	}

	marks, err := phases.GetPhaseMarks(sessionID)
	require.NoError(t, err)
	segs := Segments(marks, 5000)
	require.Len(t, segs, 3)
	assert.Equal(t, int64(500), segs[0].DurationMs)
	assert.Equal(t, int64(4000), segs[1].DurationMs)
	assert.Equal(t, int64(500), segs[2].DurationMs)
}

func TestSnapshotRepository(t *testing.T) {
	db := openTestDB(t)
	sessionID, err := NewSessionRepository(db).Create(3, "", "", "")
	require.NoError(t, err)

	lat, err := lattice.Build(3)
	require.NoError(t, err)

	snaps := NewSnapshotRepository(db)
	none, err := snaps.GetLatest(sessionID)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = snaps.Create(sessionID, 1, "scrambled", 0, lat.Infos())
	require.NoError(t, err)
	_, err = snaps.Create(sessionID, 2, "solved", 7, lat.Infos())
	require.NoError(t, err)

	latest, err := snaps.GetLatest(sessionID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "solved", latest.Label)
	assert.Equal(t, 7, latest.MoveCount)
	assert.Equal(t, lat.Infos(), latest.Cubies)

	// Deleting the session cascades.
	require.NoError(t, NewSessionRepository(db).Delete(sessionID))
	n, err := snaps.Count(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
