// Package systems provides ECS systems for the simulation.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// SpatialGrid buckets static shapes by the grid cells their bounding boxes
// cover. Positions outside the grid are clamped into the border cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // flat grid of slot lists

	// seen de-duplicates slots that span several cells during a query.
	seen  []uint32
	stamp uint32
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all slots from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds slot to every cell overlapped by box.
func (g *SpatialGrid) Insert(slot int, box r2.Box) {
	c0, r0 := g.cellCoords(box.Min.X, box.Min.Y)
	c1, r1 := g.cellCoords(box.Max.X, box.Max.Y)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			idx := row*g.cols + col
			g.cells[idx] = append(g.cells[idx], slot)
		}
	}
	if slot >= len(g.seen) {
		g.seen = append(g.seen, make([]uint32, slot+1-len(g.seen))...)
	}
}

// QueryBoxInto appends the slots whose cells overlap box to dst, each once,
// in ascending cell order. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryBoxInto(dst []int, box r2.Box) []int {
	g.stamp++
	if g.stamp == 0 {
		// Wrapped around: old marks could collide with the new stamp.
		clear(g.seen)
		g.stamp = 1
	}

	c0, r0 := g.cellCoords(box.Min.X, box.Min.Y)
	c1, r1 := g.cellCoords(box.Max.X, box.Max.Y)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for _, slot := range g.cells[row*g.cols+col] {
				if g.seen[slot] == g.stamp {
					continue
				}
				g.seen[slot] = g.stamp
				dst = append(dst, slot)
			}
		}
	}
	return dst
}

// cellCoords returns the clamped column and row for a world position.
func (g *SpatialGrid) cellCoords(x, y float64) (col, row int) {
	col = clampInt(int(math.Floor(x/g.cellSize)), 0, g.cols-1)
	row = clampInt(int(math.Floor(y/g.cellSize)), 0, g.rows-1)
	return col, row
}
