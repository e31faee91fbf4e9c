package nxncube

// Predefined rotations for convenience.
// Combine them with Turn to build moves.
//
// Example:
//
//	cube.Apply(nxncube.Turn(4, nxncube.RotX), nxncube.Turn(10, nxncube.RotYPrime))
var (
	// X axis rotations
	RotX      = Rotation{X: 90}  // +90 about X
	RotXPrime = Rotation{X: -90} // -90 about X
	RotX2     = Rotation{X: 180} // 180 about X

	// Y axis rotations
	RotY      = Rotation{Y: 90}  // +90 about Y
	RotYPrime = Rotation{Y: -90} // -90 about Y
	RotY2     = Rotation{Y: 180} // 180 about Y

	// Z axis rotations
	RotZ      = Rotation{Z: 90}  // +90 about Z
	RotZPrime = Rotation{Z: -90} // -90 about Z
	RotZ2     = Rotation{Z: 180} // 180 about Z
)

// Commutator returns a b a' b' for the moves a and b.
func Commutator(a, b Move) []Move {
	return []Move{a, b, a.Inverse(), b.Inverse()}
}
