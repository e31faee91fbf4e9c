package engine

import "math"

// Snap maps a drag angle in degrees to the quarter-turn multiple it settles
// on. Inputs beyond ±360 are wrapped first. Boundaries:
//
//	[-360,-315] -360   (-315,-225] -270   (-225,-135] -180
//	(-135,-45)   -90   [-45,45]       0   (45,135)      90
//	[135,225]    180   (225,315]    270   (315,360]    360
func Snap(angle float64) int {
	if angle > 360 || angle < -360 {
		angle = math.Mod(angle, 360)
	}

	switch {
	case angle <= -315:
		return -360
	case angle <= -225:
		return -270
	case angle <= -135:
		return -180
	case angle < -45:
		return -90
	case angle <= 45:
		return 0
	case angle < 135:
		return 90
	case angle <= 225:
		return 180
	case angle <= 315:
		return 270
	default:
		return 360
	}
}
