// Package geom provides 2D vector algebra, convex polygons and the separating
// axis intersection test used by the collision resolver.
package geom

import "gonum.org/v1/gonum/spatial/r2"

// Vector2 is an immutable 2D vector. All operations return new values.
type Vector2 r2.Vec

// Vec returns the vector (x, y).
func Vec(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

func (v Vector2) r2() r2.Vec { return r2.Vec(v) }

// Add returns v + u.
func (v Vector2) Add(u Vector2) Vector2 {
	return Vector2(r2.Add(v.r2(), u.r2()))
}

// Sub returns v - u.
func (v Vector2) Sub(u Vector2) Vector2 {
	return Vector2(r2.Sub(v.r2(), u.r2()))
}

// Scale returns v * f.
func (v Vector2) Scale(f float64) Vector2 {
	return Vector2(r2.Scale(f, v.r2()))
}

// Neg returns -v.
func (v Vector2) Neg() Vector2 {
	return v.Scale(-1)
}

// Dot returns the dot product of v and u.
func (v Vector2) Dot(u Vector2) float64 {
	return r2.Dot(v.r2(), u.r2())
}

// Len returns the Euclidean length of v.
func (v Vector2) Len() float64 {
	return r2.Norm(v.r2())
}

// Len2 returns the squared length of v.
func (v Vector2) Len2() float64 {
	return r2.Norm2(v.r2())
}

// Perp returns v rotated by -90 degrees in a y-down frame: (y, -x).
func (v Vector2) Perp() Vector2 {
	return Vector2{X: v.Y, Y: -v.X}
}

// Normalize returns the unit vector in the direction of v.
// The zero vector normalizes to itself.
func (v Vector2) Normalize() Vector2 {
	if v.IsZero() {
		return v
	}
	return Vector2(r2.Unit(v.r2()))
}

// Project returns the projection of v onto u.
func (v Vector2) Project(u Vector2) Vector2 {
	l2 := u.Len2()
	if l2 == 0 {
		return Vector2{}
	}
	return u.Scale(v.Dot(u) / l2)
}

// ProjectN returns the projection of v onto the unit vector n.
func (v Vector2) ProjectN(n Vector2) Vector2 {
	return n.Scale(v.Dot(n))
}

// IsZero reports whether both components are exactly zero.
func (v Vector2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
