package systems

import "math"

// clampInt clamps v between lo and hi.
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// velocityMagnitude returns the magnitude of a velocity vector.
func velocityMagnitude(vx, vy float64) float64 {
	return math.Hypot(vx, vy)
}

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}
