package geom

import "errors"

var (
	// ErrInvalidPolygon is returned for vertex lists that cannot form a polygon:
	// fewer than three vertices, an odd flat coordinate list, or zero area.
	ErrInvalidPolygon = errors.New("geom: invalid polygon")

	// ErrDegenerateAxis marks a zero-length edge normal. The intersection test
	// skips such axes instead of failing.
	ErrDegenerateAxis = errors.New("geom: degenerate axis")
)
