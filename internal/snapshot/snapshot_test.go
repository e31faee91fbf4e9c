package snapshot

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/rotation"
)

func scrambledDocument(t *testing.T) Document {
	t.Helper()
	lat, err := lattice.Build(3)
	require.NoError(t, err)

	c := lat.Find(4)
	slice := lat.SliceOf(c, lattice.AxisX)
	rotation.Apply(slice, lattice.AxisX, 90)
	rotation.UpdateGridPositions(slice, lattice.Vec3i{X: 90}, lat.Offset())

	return Document{
		SessionID: "abc",
		Dimension: 3,
		SavedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Phase:     "manipulating",
		Cubies:    lat.Infos(),
		History:   []history.MoveRecord{{CubieID: 4, Rotation: lattice.Vec3i{X: 90}}},
		Plan:      history.Plan{{CubieID: 10, Rotation: lattice.Vec3i{Z: -90}}},
	}
}

func TestWriteRead(t *testing.T) {
	doc := scrambledDocument(t)
	path := filepath.Join(t.TempDir(), "saves", "one.snap")

	require.NoError(t, Write(path, doc))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, Version, got.Version)
	assert.Equal(t, doc.Cubies, got.Cubies)
	assert.Equal(t, doc.History, got.History)
	assert.Equal(t, doc.Plan, got.Plan)
	assert.True(t, doc.SavedAt.Equal(got.SavedAt))

	lat, err := got.Lattice()
	require.NoError(t, err)
	assert.Equal(t, lattice.Vec3i{X: 1, Y: 2, Z: 1}, lat.Find(4).Grid)

	h, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", h.SessionID)
	assert.Equal(t, 3, h.Dimension)
}

func TestValidate_RejectsBadDocuments(t *testing.T) {
	bad := []string{
		`{"version":1,"dimension":1,"cubies":[]}`,
		`{"version":2,"dimension":3,"cubies":[]}`,
		`{"version":1,"dimension":3}`,
		`{"version":1,"dimension":3,"cubies":[{"id":0,"grid":{"x":0,"y":0},"position":[0,0,0],"rotation":[1,0,0,0]}]}`,
		`{"version":1,"dimension":3,"cubies":[],"history":[{"cubie_id":-1,"rotation":{"x":90,"y":0,"z":0}}]}`,
	}
	for _, raw := range bad {
		assert.ErrorIs(t, Validate([]byte(raw)), ErrInvalid, raw)
	}

	assert.NoError(t, Validate([]byte(`{"version":1,"dimension":2,"cubies":[],"history":null}`)))
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not zstd at all")))
	assert.Error(t, err)
}
