package lattice

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// orientationTolerance bounds |1 - |q1·q2|| for two orientations to count as equal.
const orientationTolerance = 1e-6

// Pose is the continuous world transform of a cubie. Scale is always one.
type Pose struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
}

// IdentityPose returns a pose at position p with no rotation.
func IdentityPose(p mgl64.Vec3) Pose {
	return Pose{Position: p, Rotation: mgl64.QuatIdent()}
}

// Matrix returns the local-to-world matrix of the pose.
func (p Pose) Matrix() mgl64.Mat4 {
	t := mgl64.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z())
	return t.Mul4(p.Rotation.Mat4())
}

// Transform left-multiplies m onto the pose's world matrix and returns the
// resulting pose. The orientation is re-quantized to three decimals of a
// degree per Euler component so repeated composition does not drift.
func (p Pose) Transform(m mgl64.Mat4) Pose {
	w := m.Mul4(p.Matrix())
	pos := w.Col(3).Vec3()
	return Pose{
		Position: pos,
		Rotation: QuantizeRotation(mgl64.Mat4ToQuat(w).Normalize()),
	}
}

// SameOrientation reports whether two poses have the same orientation.
// q and -q describe the same rotation.
func (p Pose) SameOrientation(o Pose) bool {
	d := math.Abs(p.Rotation.Dot(o.Rotation))
	return d > 1-orientationTolerance
}

// Euler returns the rotation as (x, y, z) degrees, composed as Ry * Rx * Rz.
func Euler(q mgl64.Quat) (x, y, z float64) {
	m := q.Mat4().Mat3()
	sx := -m.At(1, 2)
	if sx > 1 {
		sx = 1
	} else if sx < -1 {
		sx = -1
	}
	xr := math.Asin(sx)

	var yr, zr float64
	if math.Abs(sx) > 0.9999999 {
		// gimbal: z folds into y
		yr = math.Atan2(-m.At(2, 0), m.At(0, 0))
		zr = 0
	} else {
		yr = math.Atan2(m.At(0, 2), m.At(2, 2))
		zr = math.Atan2(m.At(1, 0), m.At(1, 1))
	}

	return mgl64.RadToDeg(xr), mgl64.RadToDeg(yr), mgl64.RadToDeg(zr)
}

// FromEuler builds Ry(y) * Rx(x) * Rz(z) from degrees.
func FromEuler(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), mgl64.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz).Normalize()
}

// QuantizeRotation rounds each Euler angle of q to 0.001 degrees.
func QuantizeRotation(q mgl64.Quat) mgl64.Quat {
	x, y, z := Euler(q)
	return FromEuler(round3(x), round3(y), round3(z))
}

func round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // drop -0
	}
	return r
}
