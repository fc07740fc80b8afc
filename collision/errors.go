package collision

import "errors"

// ErrMissingPolygon is returned when the moving body has no polygon.
var ErrMissingPolygon = errors.New("collision: body has no polygon")
