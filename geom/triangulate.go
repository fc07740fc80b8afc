package geom

import (
	"fmt"
	"math"
)

// Triangulate splits a simple (possibly concave) outline into triangles by ear
// clipping. Each triangle keeps the winding of the outline. Collinear vertices
// are dropped.
func Triangulate(outline []Vector2) ([][]Vector2, error) {
	if len(outline) < 3 {
		return nil, fmt.Errorf("%w: need at least 3 vertices, got %d", ErrInvalidPolygon, len(outline))
	}
	area := signedArea(outline)
	if math.Abs(area) < areaEpsilon {
		return nil, fmt.Errorf("%w: zero area", ErrInvalidPolygon)
	}
	winding := 1.0
	if area < 0 {
		winding = -1
	}

	idx := make([]int, len(outline))
	for i := range idx {
		idx[i] = i
	}
	idx = dropCollinear(outline, idx)

	tris := make([][]Vector2, 0, len(outline)-2)
	for len(idx) > 3 {
		clipped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			a, b, c := outline[prev], outline[cur], outline[next]

			turn := cross(b.Sub(a), c.Sub(b)) * winding
			if math.Abs(turn) < areaEpsilon {
				// Collinear: drop the middle vertex.
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
			if turn < 0 || containsAny(outline, idx, prev, cur, next) {
				continue
			}

			tris = append(tris, []Vector2{a, b, c})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, fmt.Errorf("%w: outline is self-intersecting", ErrInvalidPolygon)
		}
	}

	last := []Vector2{outline[idx[0]], outline[idx[1]], outline[idx[2]]}
	if math.Abs(signedArea(last)) >= areaEpsilon {
		tris = append(tris, last)
	}
	return tris, nil
}

// dropCollinear removes vertices that lie on the line through their neighbours.
func dropCollinear(outline []Vector2, idx []int) []int {
	for i := 0; i < len(idx) && len(idx) > 3; {
		a := outline[idx[(i+len(idx)-1)%len(idx)]]
		b := outline[idx[i]]
		c := outline[idx[(i+1)%len(idx)]]
		if math.Abs(cross(b.Sub(a), c.Sub(b))) < areaEpsilon {
			idx = append(idx[:i], idx[i+1:]...)
			i = 0
			continue
		}
		i++
	}
	return idx
}

// containsAny reports whether a remaining vertex other than the ear corners
// lies inside triangle (a, b, c).
func containsAny(outline []Vector2, idx []int, a, b, c int) bool {
	for _, j := range idx {
		if j == a || j == b || j == c {
			continue
		}
		if inTriangle(outline[j], outline[a], outline[b], outline[c]) {
			return true
		}
	}
	return false
}

func inTriangle(p, a, b, c Vector2) bool {
	d1 := cross(b.Sub(a), p.Sub(a))
	d2 := cross(c.Sub(b), p.Sub(b))
	d3 := cross(a.Sub(c), p.Sub(c))
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func cross(u, v Vector2) float64 {
	return u.X*v.Y - u.Y*v.X
}
