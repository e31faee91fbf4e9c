package lattice

import "fmt"

// Axis identifies one of the three world axes.
type Axis int

const (
	AxisNone Axis = -1
	AxisX    Axis = 0
	AxisY    Axis = 1
	AxisZ    Axis = 2
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// Vec3i is an integer 3-vector. It is used both for grid coordinates and
// for rotation vectors (degrees per axis).
type Vec3i struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

// Add returns v + o.
func (v Vec3i) Add(o Vec3i) Vec3i {
	return Vec3i{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Neg returns -v.
func (v Vec3i) Neg() Vec3i {
	return Vec3i{-v.X, -v.Y, -v.Z}
}

// Scale returns v * k.
func (v Vec3i) Scale(k int) Vec3i {
	return Vec3i{v.X * k, v.Y * k, v.Z * k}
}

// IsZero reports whether all components are zero.
func (v Vec3i) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// NonZero returns the number of non-zero components.
func (v Vec3i) NonZero() int {
	n := 0
	if v.X != 0 {
		n++
	}
	if v.Y != 0 {
		n++
	}
	if v.Z != 0 {
		n++
	}
	return n
}

// Get returns the component along axis a.
func (v Vec3i) Get(a Axis) int {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	}
	return 0
}

// Axis returns the first axis with a non-zero component and its value.
// A zero vector returns AxisNone.
func (v Vec3i) Axis() (Axis, int) {
	switch {
	case v.X != 0:
		return AxisX, v.X
	case v.Y != 0:
		return AxisY, v.Y
	case v.Z != 0:
		return AxisZ, v.Z
	}
	return AxisNone, 0
}

func (v Vec3i) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// OnAxis returns a vector with value on axis a and zero elsewhere.
func OnAxis(a Axis, value int) Vec3i {
	switch a {
	case AxisX:
		return Vec3i{X: value}
	case AxisY:
		return Vec3i{Y: value}
	case AxisZ:
		return Vec3i{Z: value}
	}
	return Vec3i{}
}
