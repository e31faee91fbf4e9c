// Package lattice models the cubies of an N×N×N puzzle and the arena that owns them.
package lattice

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrInvalidDimension = errors.New("lattice: dimension must be at least 2")
	ErrNotShell         = errors.New("lattice: grid position is not on the shell")
	ErrDuplicateID      = errors.New("lattice: duplicate cubie id")
)

// Cubie is one visible small cube. ID is assigned once and never reused.
type Cubie struct {
	ID   int
	Grid Vec3i
	Pose Pose
}

// Info is the per-cubie record handed to save collaborators.
type Info struct {
	ID       int        `json:"id"`
	Grid     Vec3i      `json:"grid"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // w, x, y, z
}

// Info returns the serializable record of the cubie.
func (c *Cubie) Info() Info {
	q := c.Pose.Rotation
	return Info{
		ID:       c.ID,
		Grid:     c.Grid,
		Position: [3]float64(c.Pose.Position),
		Rotation: [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()},
	}
}

// Lattice is the arena of cubies for one session.
type Lattice struct {
	dimension int
	cubies    []*Cubie
}

// Build creates the shell cubies of an N×N×N cube. Cells are visited with
// z outermost and x innermost; ids count up from 0 in that order.
func Build(n int) (*Lattice, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimension, n)
	}

	l := &Lattice{
		dimension: n,
		cubies:    make([]*Cubie, 0, ShellCount(n)),
	}

	id := 0
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				g := Vec3i{x, y, z}
				if !IsShell(g, n) {
					continue
				}
				l.cubies = append(l.cubies, &Cubie{
					ID:   id,
					Grid: g,
					Pose: IdentityPose(l.WorldPosition(g)),
				})
				id++
			}
		}
	}

	return l, nil
}

// Restore rebuilds a lattice from saved cubie records.
func Restore(n int, infos []Info) (*Lattice, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimension, n)
	}

	l := &Lattice{dimension: n, cubies: make([]*Cubie, 0, len(infos))}
	seen := make(map[int]bool, len(infos))

	for _, info := range infos {
		if seen[info.ID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, info.ID)
		}
		seen[info.ID] = true

		if !IsShell(info.Grid, n) {
			return nil, fmt.Errorf("%w: cubie %d at %v", ErrNotShell, info.ID, info.Grid)
		}

		r := info.Rotation
		l.cubies = append(l.cubies, &Cubie{
			ID:   info.ID,
			Grid: info.Grid,
			Pose: Pose{
				Position: mgl64.Vec3(info.Position),
				Rotation: mgl64.Quat{W: r[0], V: mgl64.Vec3{r[1], r[2], r[3]}}.Normalize(),
			},
		})
	}

	return l, nil
}

// ShellCount returns N^3 - (N-2)^3, the number of shell cells.
func ShellCount(n int) int {
	inner := n - 2
	if inner < 0 {
		inner = 0
	}
	return n*n*n - inner*inner*inner
}

// IsShell reports whether g is inside the grid and on its outer shell.
func IsShell(g Vec3i, n int) bool {
	last := n - 1
	for _, c := range []int{g.X, g.Y, g.Z} {
		if c < 0 || c > last {
			return false
		}
	}
	return g.X == 0 || g.Y == 0 || g.Z == 0 ||
		g.X == last || g.Y == last || g.Z == last
}

// Dimension returns N.
func (l *Lattice) Dimension() int {
	return l.dimension
}

// Offset returns (N-1)/2, the distance from grid index 0 to the centre.
func (l *Lattice) Offset() float64 {
	return float64(l.dimension-1) / 2
}

// WorldPosition maps a grid cell to its rest position centred on the origin.
func (l *Lattice) WorldPosition(g Vec3i) mgl64.Vec3 {
	o := l.Offset()
	return mgl64.Vec3{float64(g.X) - o, float64(g.Y) - o, float64(g.Z) - o}
}

// Cubies returns the live cubie list. Callers must not retain it across Clear.
func (l *Lattice) Cubies() []*Cubie {
	return l.cubies
}

// Len returns the number of cubies.
func (l *Lattice) Len() int {
	return len(l.cubies)
}

// IDs returns all cubie ids in arena order.
func (l *Lattice) IDs() []int {
	ids := make([]int, len(l.cubies))
	for i, c := range l.cubies {
		ids[i] = c.ID
	}
	return ids
}

// Find returns the cubie with the given id, or nil.
func (l *Lattice) Find(id int) *Cubie {
	for _, c := range l.cubies {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Slice returns all cubies whose grid component along axis equals value.
func (l *Lattice) Slice(axis Axis, value int) []*Cubie {
	var out []*Cubie
	for _, c := range l.cubies {
		if c.Grid.Get(axis) == value {
			out = append(out, c)
		}
	}
	return out
}

// SliceOf returns the slice containing c along axis.
func (l *Lattice) SliceOf(c *Cubie, axis Axis) []*Cubie {
	return l.Slice(axis, c.Grid.Get(axis))
}

// Clear destroys all cubies.
func (l *Lattice) Clear() {
	l.cubies = l.cubies[:0]
}

// Infos returns the save records of every cubie.
func (l *Lattice) Infos() []Info {
	infos := make([]Info, len(l.cubies))
	for i, c := range l.cubies {
		infos[i] = c.Info()
	}
	return infos
}

// SameOrientation reports whether every cubie shares the first cubie's
// orientation. Positions are not considered.
func (l *Lattice) SameOrientation() bool {
	if len(l.cubies) == 0 {
		return true
	}
	first := l.cubies[0].Pose
	for _, c := range l.cubies[1:] {
		if !first.SameOrientation(c.Pose) {
			return false
		}
	}
	return true
}

// AtRest reports whether every cubie's pose matches its grid cell within eps.
func (l *Lattice) AtRest(eps float64) bool {
	for _, c := range l.cubies {
		if !c.Pose.Position.ApproxEqualThreshold(l.WorldPosition(c.Grid), eps) {
			return false
		}
	}
	return true
}
