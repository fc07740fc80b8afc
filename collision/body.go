// Package collision resolves a moving body against an ordered set of polygon
// candidates: positional correction, touching flags and a bounce/friction
// velocity response.
package collision

import "github.com/pthm-cable/polygons/geom"

// Touching records which sides of a body are in contact with something.
type Touching struct {
	Up, Down, Left, Right bool
}

// Reset clears all flags.
func (t *Touching) Reset() {
	*t = Touching{}
}

// Any reports whether any flag is set.
func (t Touching) Any() bool {
	return t.Up || t.Down || t.Left || t.Right
}

// set marks the sides implied by an outward correction vector.
func (t *Touching) set(outward geom.Vector2) {
	if outward.X > 0 {
		t.Left = true
	}
	if outward.X < 0 {
		t.Right = true
	}
	if outward.Y > 0 {
		t.Up = true
	}
	if outward.Y < 0 {
		t.Down = true
	}
}

// Body is a polygon-backed physics body as seen by the resolver.
type Body struct {
	Position geom.Vector2
	Velocity geom.Vector2

	// Polygon is owned by the body. Its Pos is kept in sync with Position.
	Polygon *geom.Polygon

	// Bounce scales the reflected normal velocity; Friction removes that
	// fraction of tangential velocity. Both are expected in [0, 1].
	Bounce   float64
	Friction float64

	Touching Touching

	// Alive is false for bodies that must not take part in collisions.
	Alive bool
}

// NewBody returns a live body at pos carrying poly.
func NewBody(pos geom.Vector2, poly *geom.Polygon) *Body {
	b := &Body{Position: pos, Polygon: poly, Alive: true}
	b.syncPolygon()
	return b
}

func (b *Body) syncPolygon() {
	if b.Polygon != nil {
		b.Polygon.Pos = b.Position
	}
}
