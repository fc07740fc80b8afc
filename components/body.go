package components

import (
	"github.com/pthm-cable/polygons/collision"
	"github.com/pthm-cable/polygons/geom"
)

// Shape holds the convex polygon owned by an entity.
// A nil Polygon means the body was never enabled for polygon collisions.
type Shape struct {
	Polygon *geom.Polygon
}

// Material holds the collision response coefficients.
type Material struct {
	Bounce   float64 // 0 = absorb normal velocity, 1 = full reflection
	Friction float64 // 0 = keep tangential velocity, 1 = stop
}

// BodyFlags mirrors the arcade body switches that matter to collisions.
type BodyFlags struct {
	Alive        bool // participates in motion and collisions
	Immovable    bool // never moved by the resolver; acts as a candidate
	AllowGravity bool
}

// Contact holds the result of the last collision pass for a movable body.
type Contact struct {
	Touching   collision.Touching
	Contacts   int     // candidates resolved last tick
	MaxOverlap float64 // deepest penetration last tick
}
