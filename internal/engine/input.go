package engine

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// Input is what the input collaborator reports for one tick. Drag is zero
// when no pointer is active.
type Input struct {
	Drag     mgl64.Vec2 // screen-space delta since the previous tick
	Pressed  bool       // pick edge this tick
	Hit      bool       // the pick ray hit a cubie
	HitID    int        // id of the cubie hit, valid when Hit is set
	Released bool       // release edge this tick
}

// PickCubie is a pick edge that hit the cubie with the given id.
func PickCubie(id int) Input {
	return Input{Pressed: true, Hit: true, HitID: id}
}

// PickNothing is a pick edge that hit empty space.
func PickNothing() Input {
	return Input{Pressed: true}
}

// DragBy is a tick with a pointer moving by (dx, dy).
func DragBy(dx, dy float64) Input {
	return Input{Drag: mgl64.Vec2{dx, dy}}
}

// Release is a release edge.
func Release() Input {
	return Input{Released: true}
}

// Camera supplies the view basis used to map 2D drags to world axes.
type Camera interface {
	Up() mgl64.Vec3
	Right() mgl64.Vec3
}

// FixedCamera is a camera with a constant basis.
type FixedCamera struct {
	UpVec    mgl64.Vec3
	RightVec mgl64.Vec3
}

// Up returns the camera's up vector.
func (c FixedCamera) Up() mgl64.Vec3 { return c.UpVec }

// Right returns the camera's right vector.
func (c FixedCamera) Right() mgl64.Vec3 { return c.RightVec }

// FrontCamera looks down -Z at the z=0 face with +Y up and +X right.
func FrontCamera() FixedCamera {
	return FixedCamera{UpVec: mgl64.Vec3{0, 1, 0}, RightVec: mgl64.Vec3{1, 0, 0}}
}

// dominantAxis returns the world axis with the largest absolute component
// of v and the sign of that component. Ties fall through to Z.
func dominantAxis(v mgl64.Vec3) (lattice.Axis, int) {
	x, y, z := abs(v.X()), abs(v.Y()), abs(v.Z())

	var axis lattice.Axis
	var c float64
	switch {
	case x > y && x > z:
		axis, c = lattice.AxisX, v.X()
	case y > x && y > z:
		axis, c = lattice.AxisY, v.Y()
	default:
		axis, c = lattice.AxisZ, v.Z()
	}

	if c > 0 {
		return axis, 1
	}
	return axis, -1
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
