package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/polygons/geom"
)

// TerrainParams controls procedural floor generation.
type TerrainParams struct {
	Width, Height float64
	Seed          int64
	Step          float64 // horizontal spacing between surface vertices
	NoiseScale    float64 // noise frequency per world unit
	MinRatio      float64 // thinnest floor as a fraction of Height
	MaxRatio      float64 // thickest floor as a fraction of Height
}

// Terrain generates floor outlines from Perlin noise.
type Terrain struct {
	params TerrainParams
	noise  *PerlinNoise
}

// NewTerrain creates a terrain generator.
func NewTerrain(params TerrainParams) (*Terrain, error) {
	switch {
	case params.Width <= 0 || params.Height <= 0:
		return nil, fmt.Errorf("terrain: invalid size %gx%g", params.Width, params.Height)
	case params.Step <= 0:
		return nil, fmt.Errorf("terrain: step must be positive, got %g", params.Step)
	case params.MinRatio <= 0 || params.MaxRatio < params.MinRatio || params.MaxRatio >= 1:
		return nil, fmt.Errorf("terrain: invalid floor ratios [%g, %g]", params.MinRatio, params.MaxRatio)
	}
	return &Terrain{params: params, noise: NewPerlinNoise(params.Seed)}, nil
}

// SurfaceAt returns the floor surface Y at world X.
func (t *Terrain) SurfaceAt(x float64) float64 {
	p := t.params
	n := t.noise.Noise2D(x*p.NoiseScale, 0.5)
	n = math.Max(-1, math.Min(1, n))

	// Map noise [-1,1] to [MinRatio, MaxRatio] of the height
	ratio := p.MinRatio + (n+1)*0.5*(p.MaxRatio-p.MinRatio)
	return p.Height - p.Height*ratio
}

// FloorOutline returns a simple, generally concave outline spanning the
// world width: the noisy surface left to right, then the bottom corners.
func (t *Terrain) FloorOutline() []geom.Vector2 {
	p := t.params
	n := int(math.Ceil(p.Width / p.Step))

	outline := make([]geom.Vector2, 0, n+3)
	for i := 0; i <= n; i++ {
		x := math.Min(float64(i)*p.Step, p.Width)
		outline = append(outline, geom.Vec(x, t.SurfaceAt(x)))
	}
	outline = append(outline,
		geom.Vec(p.Width, p.Height),
		geom.Vec(0, p.Height),
	)
	return outline
}
