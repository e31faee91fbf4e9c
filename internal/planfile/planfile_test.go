package planfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

func TestSaveLoad(t *testing.T) {
	plan := history.Plan{
		{CubieID: 4, Rotation: lattice.Vec3i{X: 90}},
		{CubieID: 10, Rotation: lattice.Vec3i{Y: -90}},
	}
	f := New(3, plan)
	f.Seed = 42

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, Save(path, f))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	back, err := got.Plan()
	require.NoError(t, err)
	assert.Equal(t, plan, back)
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(`
dimension: 3
moves:
  - "#4 X+90"
  - " #10 y-90 "
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"#4 X+90", "#10 y-90"}, f.Moves)

	plan, err := f.Plan()
	require.NoError(t, err)
	assert.Equal(t, lattice.Vec3i{Y: -90}, plan[1].Rotation)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"yaml", "moves: [unterminated"},
		{"dimension", "dimension: 1\nmoves: []"},
		{"notation", "dimension: 3\nmoves: ['#4 Q+90']"},
		{"cubie", "dimension: 2\nmoves: ['#8 X+90']"},
		{"angle", "dimension: 3\nmoves: ['#4 X+45']"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("dimension: 2\nmoves: ['#8 X+90']"))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Parse([]byte("dimension: 3\nmoves: ['#4 Q+90']"))
	assert.ErrorIs(t, err, history.ErrInvalidNotation)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
