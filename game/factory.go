package game

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/polygons/components"
	"github.com/pthm-cable/polygons/geom"
	"github.com/pthm-cable/polygons/systems"
)

// Decomposer splits a simple outline into convex pieces.
type Decomposer interface {
	Decompose(outline []geom.Vector2) ([][]geom.Vector2, error)
}

// DecomposerFunc adapts a function to the Decomposer interface.
type DecomposerFunc func(outline []geom.Vector2) ([][]geom.Vector2, error)

// Decompose calls f.
func (f DecomposerFunc) Decompose(outline []geom.Vector2) ([][]geom.Vector2, error) {
	return f(outline)
}

// DefaultDecomposer triangulates outlines by ear clipping.
var DefaultDecomposer Decomposer = DecomposerFunc(geom.Triangulate)

// BodyOptions controls how a body is enabled.
type BodyOptions struct {
	VelX, VelY float64
	Immovable  bool
	NoGravity  bool

	// Material overrides the configured defaults when set.
	Material *components.Material
}

// EnableBody creates a body whose polygon is given as flattened local
// vertices [x0, y0, x1, y1, ...] relative to (x, y).
func (s *Sim) EnableBody(x, y float64, flat []float64, opts BodyOptions) (ecs.Entity, error) {
	poly, err := geom.FromFlat(geom.Vec(x, y), flat)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("enabling body at (%g, %g): %w", x, y, err)
	}
	return s.spawnBody(x, y, poly, opts), nil
}

// EnableBox creates a body with a w by h box polygon whose top-left corner
// is at (x, y).
func (s *Sim) EnableBox(x, y, w, h float64, opts BodyOptions) (ecs.Entity, error) {
	poly, err := geom.NewBox(geom.Vec(x, y), w, h).ToPolygon()
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("enabling box at (%g, %g): %w", x, y, err)
	}
	return s.spawnBody(x, y, poly, opts), nil
}

// EnableGroup decomposes each world-space outline into convex pieces and
// creates one immovable, gravity-free body per piece. Nothing is spawned
// unless every outline decomposes into valid pieces.
func (s *Sim) EnableGroup(outlines [][]geom.Vector2) ([]ecs.Entity, error) {
	var polys []*geom.Polygon
	for i, outline := range outlines {
		pieces, err := s.decomposer.Decompose(outline)
		if err != nil {
			return nil, fmt.Errorf("decomposing outline %d: %w", i, err)
		}

		for _, piece := range pieces {
			if len(piece) == 0 {
				continue
			}
			origin := piece[0]
			local := make([]geom.Vector2, len(piece))
			for j, v := range piece {
				local[j] = v.Sub(origin)
			}

			poly, err := geom.NewPolygon(origin, local)
			if err != nil {
				return nil, fmt.Errorf("outline %d piece: %w", i, err)
			}
			polys = append(polys, poly)
		}
	}

	entities := make([]ecs.Entity, 0, len(polys))
	for _, poly := range polys {
		e := s.spawnBody(poly.Pos.X, poly.Pos.Y, poly, BodyOptions{Immovable: true, NoGravity: true})
		entities = append(entities, e)
	}
	return entities, nil
}

// EnableTerrain generates a noise floor spanning the world and enables it
// as a static group.
func (s *Sim) EnableTerrain(params systems.TerrainParams) ([]ecs.Entity, error) {
	params.Width = s.cfg.World.Width
	params.Height = s.cfg.World.Height

	terrain, err := systems.NewTerrain(params)
	if err != nil {
		return nil, err
	}
	return s.EnableGroup([][]geom.Vector2{terrain.FloorOutline()})
}

// spawnBody adds the body archetype to the world.
func (s *Sim) spawnBody(x, y float64, poly *geom.Polygon, opts BodyOptions) ecs.Entity {
	mat := components.Material{
		Bounce:   s.cfg.Derived.Bounce,
		Friction: s.cfg.Derived.Friction,
	}
	if opts.Material != nil {
		mat = *opts.Material
	}

	vel := &components.Velocity{X: opts.VelX, Y: opts.VelY}
	if opts.Immovable {
		vel = &components.Velocity{}
	}

	e := s.entityMapper.NewEntity(
		&components.Position{X: x, Y: y},
		vel,
		&components.Shape{Polygon: poly},
		&mat,
		&components.BodyFlags{
			Alive:        true,
			Immovable:    opts.Immovable,
			AllowGravity: !opts.NoGravity && !opts.Immovable,
		},
		&components.Contact{},
	)

	if opts.Immovable {
		s.numStatics++
	} else {
		s.numBodies++
	}
	return e
}
