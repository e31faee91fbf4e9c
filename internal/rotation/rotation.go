// Package rotation applies slice rotations to cubies: the exact integer update
// of grid positions and the stepped animation of their world poses.
package rotation

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// Normalize folds every component of r into (-360, 360).
func Normalize(r lattice.Vec3i) lattice.Vec3i {
	return lattice.Vec3i{X: r.X % 360, Y: r.Y % 360, Z: r.Z % 360}
}

// mustSingleAxis panics when more than one component of r is non-zero.
func mustSingleAxis(r lattice.Vec3i) {
	if r.NonZero() > 1 {
		panic(fmt.Sprintf("rotation: vector %v rotates about more than one axis", r))
	}
}

// RotateGridPosition rotates grid position g by r about the axis through the
// lattice centre. offset is (N-1)/2. r must have at most one non-zero
// component, a multiple of 90.
func RotateGridPosition(g, r lattice.Vec3i, offset float64) lattice.Vec3i {
	mustSingleAxis(r)
	r = Normalize(r)
	if r.IsZero() {
		return g
	}

	axis, deg := r.Axis()
	rad := mgl64.DegToRad(float64(deg))
	cos := math.Round(math.Cos(rad))
	sin := math.Round(math.Sin(rad))

	x := float64(g.X) - offset
	y := float64(g.Y) - offset
	z := float64(g.Z) - offset

	switch axis {
	case lattice.AxisX:
		y, z = cos*y-sin*z, sin*y+cos*z
	case lattice.AxisY:
		x, z = cos*x+sin*z, -sin*x+cos*z
	case lattice.AxisZ:
		x, y = cos*x-sin*y, sin*x+cos*y
	}

	return lattice.Vec3i{
		X: int(math.Round(x + offset)),
		Y: int(math.Round(y + offset)),
		Z: int(math.Round(z + offset)),
	}
}

// UpdateGridPositions commits rotation r to the grid position of every cubie.
func UpdateGridPositions(cubies []*lattice.Cubie, r lattice.Vec3i, offset float64) {
	for _, c := range cubies {
		c.Grid = RotateGridPosition(c.Grid, r, offset)
	}
}

// Matrix returns the world rotation of deg degrees about axis, centred on the origin.
func Matrix(axis lattice.Axis, deg float64) mgl64.Mat4 {
	rad := mgl64.DegToRad(deg)
	switch axis {
	case lattice.AxisX:
		return mgl64.HomogRotate3DX(rad)
	case lattice.AxisY:
		return mgl64.HomogRotate3DY(rad)
	case lattice.AxisZ:
		return mgl64.HomogRotate3DZ(rad)
	}
	return mgl64.Ident4()
}

// Apply rotates the pose of every cubie by deg about axis in one increment.
func Apply(cubies []*lattice.Cubie, axis lattice.Axis, deg float64) {
	if deg == 0 || axis == lattice.AxisNone {
		return
	}
	m := Matrix(axis, deg)
	for _, c := range cubies {
		c.Pose = c.Pose.Transform(m)
	}
}

// StepCount returns how many increments an animation of total degrees uses.
func StepCount(total float64) int {
	a := math.Abs(total)
	switch {
	case a < 10:
		return 1
	case a < 30:
		return 3
	case a < 45:
		return 5
	default:
		return 10
	}
}

// Steps splits total into StepCount increments of floor(total/n) degrees,
// with the remainder folded into the last one.
func Steps(total float64) []float64 {
	n := StepCount(total)
	each := math.Floor(total / float64(n))

	steps := make([]float64, n)
	for i := 0; i < n-1; i++ {
		steps[i] = each
	}
	steps[n-1] = total - each*float64(n-1)
	return steps
}
