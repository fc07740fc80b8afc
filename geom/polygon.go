package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// areaEpsilon is the smallest absolute area accepted for a polygon.
const areaEpsilon = 1e-12

// Polygon is a convex polygon: an ordered list of local-space vertices plus a
// world-space offset. Convexity and consistent winding are preconditions, not
// checked here.
type Polygon struct {
	// Pos is added to every vertex to obtain world coordinates.
	Pos Vector2

	points  []Vector2
	edges   []Vector2
	normals []Vector2
}

// NewPolygon creates a polygon at pos from local vertices.
// The vertex slice is copied.
func NewPolygon(pos Vector2, points []Vector2) (*Polygon, error) {
	p := &Polygon{Pos: pos}
	if err := p.SetPoints(points); err != nil {
		return nil, err
	}
	return p, nil
}

// FromFlat creates a polygon from a flattened [x0, y0, x1, y1, ...] list.
func FromFlat(pos Vector2, flat []float64) (*Polygon, error) {
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("%w: odd coordinate count %d", ErrInvalidPolygon, len(flat))
	}
	points := make([]Vector2, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		points = append(points, Vector2{X: flat[i], Y: flat[i+1]})
	}
	return NewPolygon(pos, points)
}

// SetPoints replaces the vertices and recomputes edges and normals.
// On error the polygon is left unchanged.
func (p *Polygon) SetPoints(points []Vector2) error {
	if len(points) < 3 {
		return fmt.Errorf("%w: need at least 3 vertices, got %d", ErrInvalidPolygon, len(points))
	}
	if math.Abs(signedArea(points)) < areaEpsilon {
		return fmt.Errorf("%w: zero area", ErrInvalidPolygon)
	}

	n := len(points)
	pts := make([]Vector2, n)
	copy(pts, points)
	edges := make([]Vector2, n)
	normals := make([]Vector2, n)
	for i := range pts {
		next := pts[(i+1)%n]
		edges[i] = next.Sub(pts[i])
		// Coincident vertices leave a zero normal; the SAT loop skips it.
		normals[i] = edges[i].Perp().Normalize()
	}

	p.points = pts
	p.edges = edges
	p.normals = normals
	return nil
}

// Len returns the number of vertices.
func (p *Polygon) Len() int { return len(p.points) }

// Points returns a copy of the local-space vertices.
func (p *Polygon) Points() []Vector2 {
	out := make([]Vector2, len(p.points))
	copy(out, p.points)
	return out
}

// Edges returns a copy of the edge vectors; edge i runs from vertex i to i+1.
func (p *Polygon) Edges() []Vector2 {
	out := make([]Vector2, len(p.edges))
	copy(out, p.edges)
	return out
}

// Normals returns a copy of the unit edge normals.
func (p *Polygon) Normals() []Vector2 {
	out := make([]Vector2, len(p.normals))
	copy(out, p.normals)
	return out
}

// WorldPoints returns the vertices offset by Pos.
func (p *Polygon) WorldPoints() []Vector2 {
	out := make([]Vector2, len(p.points))
	for i, pt := range p.points {
		out[i] = pt.Add(p.Pos)
	}
	return out
}

// Translate moves every local vertex by offset. Pos is unchanged.
func (p *Polygon) Translate(offset Vector2) {
	moved := make([]Vector2, len(p.points))
	for i, pt := range p.points {
		moved[i] = pt.Add(offset)
	}
	// Translation preserves area, so this cannot fail.
	_ = p.SetPoints(moved)
}

// Area returns the signed area of the polygon. The sign follows the winding.
func (p *Polygon) Area() float64 {
	return signedArea(p.points)
}

// Centroid returns the world-space area centroid.
func (p *Polygon) Centroid() Vector2 {
	var cx, cy, a float64
	n := len(p.points)
	for i := range p.points {
		p1 := p.points[i]
		p2 := p.points[(i+1)%n]
		cross := p1.X*p2.Y - p2.X*p1.Y
		cx += (p1.X + p2.X) * cross
		cy += (p1.Y + p2.Y) * cross
		a += cross
	}
	a *= 3
	return Vector2{X: cx / a, Y: cy / a}.Add(p.Pos)
}

// AABB returns the world-space axis-aligned bounding box.
func (p *Polygon) AABB() r2.Box {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range p.points {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return r2.Box{
		Min: r2.Vec{X: minX + p.Pos.X, Y: minY + p.Pos.Y},
		Max: r2.Vec{X: maxX + p.Pos.X, Y: maxY + p.Pos.Y},
	}
}

// project returns the interval covered by the local vertices on axis.
func (p *Polygon) project(axis Vector2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, pt := range p.points {
		d := pt.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// signedArea computes the shoelace area of points.
func signedArea(points []Vector2) float64 {
	var sum float64
	n := len(points)
	for i := range points {
		p1 := points[i]
		p2 := points[(i+1)%n]
		sum += p1.X*p2.Y - p2.X*p1.Y
	}
	return sum / 2
}
