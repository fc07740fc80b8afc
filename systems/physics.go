package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/polygons/components"
)

// PhysicsSystem integrates gravity and velocity for movable bodies.
type PhysicsSystem struct {
	filter ecs.Filter3[components.Position, components.Velocity, components.BodyFlags]
	params MotionParams
}

// MotionParams holds the integration settings.
type MotionParams struct {
	DT         float64 // seconds per tick
	Gravity    float64 // downward acceleration (+y)
	MaxSpeed   float64 // velocity clamp, 0 disables
	Bounds     Bounds
	KillMargin float64 // bodies this far outside Bounds are retired
}

// Bounds represents the simulation bounds.
type Bounds struct {
	Width, Height float64
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World, params MotionParams) *PhysicsSystem {
	return &PhysicsSystem{
		filter: *ecs.NewFilter3[components.Position, components.Velocity, components.BodyFlags](w),
		params: params,
	}
}

// Update runs the physics system and returns the number of bodies retired
// for leaving the world.
func (s *PhysicsSystem) Update(w *ecs.World) int {
	p := s.params
	retired := 0

	query := s.filter.Query()
	for query.Next() {
		pos, vel, flags := query.Get()

		// Static geometry and retired bodies stay put
		if flags.Immovable || !flags.Alive {
			continue
		}

		if flags.AllowGravity {
			vel.Y += p.Gravity * p.DT
		}

		// Limit velocity
		if p.MaxSpeed > 0 {
			speed := velocityMagnitude(vel.X, vel.Y)
			if speed > p.MaxSpeed {
				scale := p.MaxSpeed / speed
				vel.X *= scale
				vel.Y *= scale
			}
		}

		// Update position
		pos.X += vel.X * p.DT
		pos.Y += vel.Y * p.DT

		if s.outside(pos) {
			flags.Alive = false
			retired++
		}
	}
	return retired
}

// outside reports whether pos is past the kill margin around the world.
func (s *PhysicsSystem) outside(pos *components.Position) bool {
	m := s.params.KillMargin
	b := s.params.Bounds
	if m <= 0 || b.Width <= 0 || b.Height <= 0 {
		return false
	}
	return pos.X < -m || pos.Y < -m || pos.X > b.Width+m || pos.Y > b.Height+m
}
