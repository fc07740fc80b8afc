package geom

import "fmt"

// Box is an axis-aligned rectangle anchored at its top-left corner.
type Box struct {
	Pos  Vector2
	W, H float64
}

// NewBox returns a box at pos with the given size.
func NewBox(pos Vector2, w, h float64) Box {
	return Box{Pos: pos, W: w, H: h}
}

// ToPolygon converts the box into a four-vertex polygon positioned at Pos.
func (b Box) ToPolygon() (*Polygon, error) {
	if b.W <= 0 || b.H <= 0 {
		return nil, fmt.Errorf("%w: box size %gx%g", ErrInvalidPolygon, b.W, b.H)
	}
	return NewPolygon(b.Pos, []Vector2{
		{X: 0, Y: 0},
		{X: b.W, Y: 0},
		{X: b.W, Y: b.H},
		{X: 0, Y: b.H},
	})
}
