package geom

import (
	"errors"
	"math"
)

// Response describes the overlap between two intersecting polygons.
//
// OverlapN points from A toward B. Subtracting OverlapV from A's position (or
// adding it to B's) separates the two shapes.
type Response struct {
	A, B *Polygon

	// Overlap is the penetration depth along OverlapN. Always > 0.
	Overlap float64
	// OverlapN is the unit axis of minimum penetration.
	OverlapN Vector2
	// OverlapV is OverlapN scaled by Overlap.
	OverlapV Vector2

	// AInB is true when A lies completely inside B; BInA the reverse.
	AInB, BInA bool
}

// TestPolygonPolygon runs the separating axis test between a and b.
//
// The edge normals of a are tried first, then those of b. The axis with the
// smallest overlap wins and ties keep the first such axis in that order.
// Polygons whose projections only touch (zero overlap) do not intersect.
// The test reads Pos and vertex data only and has no side effects.
func TestPolygonPolygon(a, b *Polygon) (Response, bool) {
	r := Response{
		A:       a,
		B:       b,
		Overlap: math.MaxFloat64,
		AInB:    true,
		BInA:    true,
	}

	for _, normals := range [2][]Vector2{a.normals, b.normals} {
		for _, axis := range normals {
			separated, err := separatingAxis(a, b, axis, &r)
			if errors.Is(err, ErrDegenerateAxis) {
				continue
			}
			if separated {
				return Response{}, false
			}
		}
	}

	if r.Overlap == math.MaxFloat64 {
		// Every axis was degenerate.
		return Response{}, false
	}

	r.OverlapV = r.OverlapN.Scale(r.Overlap)
	return r, true
}

// separatingAxis projects both polygons onto axis and reports whether it
// separates them. When it does not, r is updated if this axis has the smallest
// overlap seen so far.
func separatingAxis(a, b *Polygon, axis Vector2, r *Response) (bool, error) {
	if axis.IsZero() {
		return false, ErrDegenerateAxis
	}

	offset := b.Pos.Sub(a.Pos).Dot(axis)
	aMin, aMax := a.project(axis)
	bMin, bMax := b.project(axis)
	bMin += offset
	bMax += offset

	if aMin >= bMax || bMin >= aMax {
		return true, nil
	}

	var overlap float64
	if aMin < bMin {
		r.AInB = false
		if aMax < bMax {
			overlap = aMax - bMin
			r.BInA = false
		} else {
			overlap = containedOverlap(aMin, aMax, bMin, bMax)
		}
	} else {
		r.BInA = false
		if aMax > bMax {
			overlap = aMin - bMax
			r.AInB = false
		} else {
			overlap = containedOverlap(aMin, aMax, bMin, bMax)
		}
	}

	if abs := math.Abs(overlap); abs < r.Overlap {
		r.Overlap = abs
		r.OverlapN = axis
		if overlap < 0 {
			r.OverlapN = axis.Neg()
		}
	}
	return false, nil
}

// containedOverlap picks the shorter way out when one interval contains the
// other. A negative result means A has to leave through the low end.
func containedOverlap(aMin, aMax, bMin, bMax float64) float64 {
	forward := aMax - bMin
	backward := bMax - aMin
	if forward < backward {
		return forward
	}
	return -backward
}

// TestPointInPolygon reports whether the world-space point p lies inside or on
// the boundary of poly.
func TestPointInPolygon(p Vector2, poly *Polygon) bool {
	local := p.Sub(poly.Pos)
	for _, axis := range poly.normals {
		if axis.IsZero() {
			continue
		}
		lo, hi := poly.project(axis)
		d := local.Dot(axis)
		if d < lo || d > hi {
			return false
		}
	}
	return true
}
