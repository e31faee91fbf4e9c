package nxncube

import (
	"fmt"
	"strings"

	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/rotation"
)

// Cube is a headless N×N×N lattice that applies moves instantly.
// It shares the rotation rules of Session but has no animation, gestures
// or history.
type Cube struct {
	lat *lattice.Lattice
}

// NewCube creates a solved cube of dimension n.
func NewCube(n int) (*Cube, error) {
	lat, err := lattice.Build(n)
	if err != nil {
		return nil, err
	}
	return &Cube{lat: lat}, nil
}

// RestoreCube rebuilds a cube from saved cubie records.
func RestoreCube(n int, cubies []CubieInfo) (*Cube, error) {
	lat, err := lattice.Restore(n, cubies)
	if err != nil {
		return nil, err
	}
	return &Cube{lat: lat}, nil
}

// Clone creates a deep copy of the cube.
func (c *Cube) Clone() *Cube {
	lat, err := lattice.Restore(c.lat.Dimension(), c.lat.Infos())
	if err != nil {
		// Infos of a valid lattice always restore.
		panic(err)
	}
	return &Cube{lat: lat}
}

// Dimension returns N.
func (c *Cube) Dimension() int {
	return c.lat.Dimension()
}

// Len returns the number of cubies.
func (c *Cube) Len() int {
	return c.lat.Len()
}

// IsSolved returns true if every cubie shares one orientation.
func (c *Cube) IsSolved() bool {
	return c.lat.SameOrientation()
}

// Grid returns the grid position of the cubie with the given id.
func (c *Cube) Grid(id int) (GridPos, bool) {
	cb := c.lat.Find(id)
	if cb == nil {
		return GridPos{}, false
	}
	return cb.Grid, true
}

// Cubies returns the save records of every cubie.
func (c *Cube) Cubies() []CubieInfo {
	return c.lat.Infos()
}

// ApplyMove applies a single move.
func (c *Cube) ApplyMove(m Move) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidMove, m.Rotation)
	}
	cb := c.lat.Find(m.CubieID)
	if cb == nil {
		return fmt.Errorf("%w: %d", ErrUnknownCubie, m.CubieID)
	}

	axis, deg := m.Rotation.Axis()
	slice := c.lat.SliceOf(cb, axis)
	rotation.Apply(slice, axis, float64(deg))
	rotation.UpdateGridPositions(slice, m.Rotation, c.lat.Offset())
	return nil
}

// Apply applies moves in order and stops at the first invalid one.
func (c *Cube) Apply(moves ...Move) error {
	for i, m := range moves {
		if err := c.ApplyMove(m); err != nil {
			return fmt.Errorf("move %d: %w", i, err)
		}
	}
	return nil
}

// ApplyNotation parses and applies a move list such as "#4 X+90, #10 Y-90".
func (c *Cube) ApplyNotation(s string) error {
	moves, err := ParseMoves(s)
	if err != nil {
		return err
	}
	return c.Apply(moves...)
}

// String renders the lattice one z layer at a time, listing the cubie id at
// each shell cell and "." for interior cells.
func (c *Cube) String() string {
	n := c.lat.Dimension()
	at := make(map[lattice.Vec3i]int, c.lat.Len())
	for _, cb := range c.lat.Cubies() {
		at[cb.Grid] = cb.ID
	}

	var sb strings.Builder
	for z := 0; z < n; z++ {
		fmt.Fprintf(&sb, "z=%d\n", z)
		for y := n - 1; y >= 0; y-- {
			for x := 0; x < n; x++ {
				if id, ok := at[lattice.Vec3i{X: x, Y: y, Z: z}]; ok {
					fmt.Fprintf(&sb, "%4d", id)
				} else {
					sb.WriteString("   .")
				}
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
