// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/polygons/geom"

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() geom.Vector2 { return geom.Vec(p.X, p.Y) }

// Set copies v into the position.
func (p *Position) Set(v geom.Vector2) { p.X, p.Y = v.X, v.Y }

// Velocity represents an entity's velocity in world units per second.
type Velocity struct {
	X, Y float64
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() geom.Vector2 { return geom.Vec(v.X, v.Y) }

// Set copies u into the velocity.
func (v *Velocity) Set(u geom.Vector2) { v.X, v.Y = u.X, u.Y }
