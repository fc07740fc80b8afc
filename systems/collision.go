package systems

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/polygons/collision"
	"github.com/pthm-cable/polygons/components"
	"github.com/pthm-cable/polygons/geom"
)

// CollideHook replaces the default collision response for a movable body.
// Its result is reported in ContactEvent.Value.
type CollideHook func(body, candidate ecs.Entity) any

// ContactEvent reports the collision outcome for one movable body in a tick.
type ContactEvent struct {
	Entity     ecs.Entity
	Contacts   int
	Skipped    int
	MaxOverlap float64
	Touching   collision.Touching
	Handled    bool
	Value      any
}

// staticSlot is an immovable body cached for the current tick.
type staticSlot struct {
	entity ecs.Entity
	body   collision.Body
	center geom.Vector2
}

// CollisionSystem resolves movable bodies against immovable polygons.
// Candidates come from a spatial grid and are handed to the narrow phase
// nearest first.
type CollisionSystem struct {
	filter ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Shape,
		components.Material,
		components.BodyFlags,
		components.Contact,
	]
	narrow collision.NarrowPhase
	grid   *SpatialGrid

	// OnCollide, when set, is invoked instead of the default response.
	OnCollide CollideHook

	statics []staticSlot
	slots   []int
	dist    []float64
	cands   []*collision.Body
	events  []ContactEvent
}

// NewCollisionSystem creates a collision system using narrow for pairwise
// resolution and a grid of the given cell size over bounds.
func NewCollisionSystem(w *ecs.World, narrow collision.NarrowPhase, bounds Bounds, cellSize float64) *CollisionSystem {
	return &CollisionSystem{
		filter: *ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Shape,
			components.Material,
			components.BodyFlags,
			components.Contact,
		](w),
		narrow: narrow,
		grid:   NewSpatialGrid(bounds.Width, bounds.Height, cellSize),
	}
}

// Update rebuilds the static grid and resolves every live movable body.
// The returned events are only valid until the next call.
func (s *CollisionSystem) Update(w *ecs.World) ([]ContactEvent, error) {
	s.rebuildStatics()
	s.events = s.events[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, vel, shape, mat, flags, contact := query.Get()
		if flags.Immovable || !flags.Alive {
			continue
		}
		entity := query.Entity()

		body := collision.Body{
			Position: pos.Vec(),
			Velocity: vel.Vec(),
			Polygon:  shape.Polygon,
			Bounce:   mat.Bounce,
			Friction: mat.Friction,
			Alive:    true,
		}

		out, err := s.narrow.Resolve(&body, s.candidatesFor(&body), s.hookFor(entity))
		if err != nil {
			query.Close()
			return nil, fmt.Errorf("resolving entity %v: %w", entity, err)
		}

		pos.Set(body.Position)
		vel.Set(body.Velocity)
		contact.Touching = body.Touching
		contact.Contacts = out.Contacts
		contact.MaxOverlap = out.MaxOverlap

		if out.Collided || out.Skipped > 0 {
			s.events = append(s.events, ContactEvent{
				Entity:     entity,
				Contacts:   out.Contacts,
				Skipped:    out.Skipped,
				MaxOverlap: out.MaxOverlap,
				Touching:   body.Touching,
				Handled:    out.Handled,
				Value:      out.Value,
			})
		}
	}

	return s.events, nil
}

// StaticCount returns the number of immovable shapes indexed last update.
func (s *CollisionSystem) StaticCount() int {
	return len(s.statics)
}

// rebuildStatics snapshots every live immovable shape and indexes it.
func (s *CollisionSystem) rebuildStatics() {
	s.statics = s.statics[:0]
	s.grid.Clear()

	query := s.filter.Query()
	for query.Next() {
		pos, _, shape, mat, flags, _ := query.Get()
		if !flags.Immovable || !flags.Alive {
			continue
		}
		if shape.Polygon == nil {
			slog.Debug("immovable body without polygon ignored", "entity", query.Entity())
			continue
		}

		body := collision.NewBody(pos.Vec(), shape.Polygon)
		body.Bounce = mat.Bounce
		body.Friction = mat.Friction

		slot := len(s.statics)
		s.statics = append(s.statics, staticSlot{
			entity: query.Entity(),
			body:   *body,
			center: shape.Polygon.Centroid(),
		})
		s.grid.Insert(slot, shape.Polygon.AABB())
	}
}

// candidatesFor returns the static bodies near body, nearest centroid first.
func (s *CollisionSystem) candidatesFor(body *collision.Body) []*collision.Body {
	s.cands = s.cands[:0]
	if body.Polygon == nil {
		return s.cands
	}

	body.Polygon.Pos = body.Position
	s.slots = s.grid.QueryBoxInto(s.slots[:0], body.Polygon.AABB())

	center := body.Polygon.Centroid()
	s.dist = s.dist[:0]
	for _, slot := range s.slots {
		c := s.statics[slot].center
		s.dist = append(s.dist, distanceSq(center.X, center.Y, c.X, c.Y))
	}
	sort.Sort(byDistance{slots: s.slots, dist: s.dist})

	for _, slot := range s.slots {
		s.cands = append(s.cands, &s.statics[slot].body)
	}
	return s.cands
}

// hookFor adapts OnCollide to the resolver callback for one movable entity.
func (s *CollisionSystem) hookFor(entity ecs.Entity) collision.CollideFunc {
	if s.OnCollide == nil {
		return nil
	}
	return func(_, candidate *collision.Body) any {
		for i := range s.statics {
			if &s.statics[i].body == candidate {
				return s.OnCollide(entity, s.statics[i].entity)
			}
		}
		return nil
	}
}

// byDistance sorts slots by distance, breaking ties by slot index.
type byDistance struct {
	slots []int
	dist  []float64
}

func (b byDistance) Len() int { return len(b.slots) }

func (b byDistance) Less(i, j int) bool {
	if b.dist[i] != b.dist[j] {
		return b.dist[i] < b.dist[j]
	}
	return b.slots[i] < b.slots[j]
}

func (b byDistance) Swap(i, j int) {
	b.slots[i], b.slots[j] = b.slots[j], b.slots[i]
	b.dist[i], b.dist[j] = b.dist[j], b.dist[i]
}
