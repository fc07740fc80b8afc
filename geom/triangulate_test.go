package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalArea(tris [][]Vector2) float64 {
	var sum float64
	for _, tri := range tris {
		sum += math.Abs(signedArea(tri))
	}
	return sum
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name     string
		outline  []Vector2
		wantTris int
		wantArea float64
	}{
		{
			name:     "triangle",
			outline:  []Vector2{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}},
			wantTris: 1,
			wantArea: 8,
		},
		{
			name:     "square",
			outline:  []Vector2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}},
			wantTris: 2,
			wantArea: 4,
		},
		{
			name: "L-shape",
			outline: []Vector2{
				{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1},
				{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
			},
			wantTris: 4,
			wantArea: 3,
		},
		{
			name: "clockwise L-shape",
			outline: []Vector2{
				{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 1, Y: 1},
				{X: 2, Y: 1}, {X: 2, Y: 0}, {X: 0, Y: 0},
			},
			wantTris: 4,
			wantArea: 3,
		},
		{
			name:     "collinear vertex dropped",
			outline:  []Vector2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}},
			wantTris: 2,
			wantArea: 4,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tris, err := Triangulate(tc.outline)
			require.NoError(t, err)
			assert.Len(t, tris, tc.wantTris)
			assert.InDelta(t, tc.wantArea, totalArea(tris), tol)

			wantSign := math.Signbit(signedArea(tc.outline))
			for _, tri := range tris {
				_, err := NewPolygon(Vector2{}, tri)
				assert.NoError(t, err)
				assert.Equal(t, wantSign, math.Signbit(signedArea(tri)), "winding preserved")
			}
		})
	}
}

func TestTriangulateRejectsDegenerate(t *testing.T) {
	_, err := Triangulate([]Vector2{{X: 0, Y: 0}, {X: 1, Y: 1}})
	assert.ErrorIs(t, err, ErrInvalidPolygon)

	_, err = Triangulate([]Vector2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}})
	assert.ErrorIs(t, err, ErrInvalidPolygon)
}
