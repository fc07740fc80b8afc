package collision

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/polygons/geom"
)

const tol = 1e-9

func squareBody(t *testing.T, x, y float64) *Body {
	t.Helper()
	poly, err := geom.NewBox(geom.Vector2{}, 1, 1).ToPolygon()
	require.NoError(t, err)
	return NewBody(geom.Vec(x, y), poly)
}

func TestResolveEndToEnd(t *testing.T) {
	body := squareBody(t, 0, 0)
	body.Velocity = geom.Vec(0, 5)
	body.Bounce = 0.5
	body.Friction = 0

	floor := squareBody(t, 0, 0.9)

	out, err := Resolve(body, []*Body{floor}, nil)
	require.NoError(t, err)

	assert.True(t, out.Collided)
	assert.False(t, out.Handled)
	assert.Equal(t, 1, out.Contacts)
	assert.InDelta(t, 0.1, out.MaxOverlap, tol)

	assert.InDelta(t, 0, body.Position.X, tol)
	assert.InDelta(t, -0.1, body.Position.Y, tol)
	assert.Equal(t, body.Position, body.Polygon.Pos, "polygon follows corrected position")

	assert.Equal(t, Touching{Down: true}, body.Touching)

	assert.InDelta(t, 0, body.Velocity.X, tol)
	assert.InDelta(t, -2.5, body.Velocity.Y, tol)

	// The candidate is read, never moved.
	assert.Equal(t, geom.Vec(0, 0.9), floor.Position)
}

func TestResolveLeavesNoResidualOverlap(t *testing.T) {
	offsets := []geom.Vector2{
		geom.Vec(0, 0.75), geom.Vec(0, -0.5), geom.Vec(0.625, 0.25), geom.Vec(-0.75, 0.125),
	}
	for _, off := range offsets {
		body := squareBody(t, 0, 0)
		cand := squareBody(t, off.X, off.Y)

		out, err := Resolve(body, []*Body{cand}, nil)
		require.NoError(t, err)
		require.True(t, out.Collided, "offset %v", off)

		_, hit := geom.TestPolygonPolygon(body.Polygon, cand.Polygon)
		assert.False(t, hit, "residual overlap for offset %v", off)
	}
}

func TestResolveMaterialResponse(t *testing.T) {
	tests := []struct {
		name     string
		bounce   float64
		friction float64
		wantVel  geom.Vector2
	}{
		{"absorb normal, keep tangent", 0, 0, geom.Vec(3, 0)},
		{"full reflection", 1, 0, geom.Vec(3, -4)},
		{"half bounce, half friction", 0.5, 0.5, geom.Vec(1.5, -2)},
		{"full friction", 0, 1, geom.Vec(0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := squareBody(t, 0, 0)
			body.Velocity = geom.Vec(3, 4)
			body.Bounce = tc.bounce
			body.Friction = tc.friction

			floor := squareBody(t, 0, 0.75)
			_, err := Resolve(body, []*Body{floor}, nil)
			require.NoError(t, err)

			assert.InDelta(t, tc.wantVel.X, body.Velocity.X, tol)
			assert.InDelta(t, tc.wantVel.Y, body.Velocity.Y, tol)
		})
	}
}

func TestResolveTouchingFlags(t *testing.T) {
	tests := []struct {
		name string
		cand geom.Vector2
		vel  geom.Vector2
		want Touching
	}{
		{"falling onto floor", geom.Vec(0, 0.75), geom.Vec(0, 10), Touching{Down: true}},
		{"rising into ceiling", geom.Vec(0, -0.75), geom.Vec(0, -10), Touching{Up: true}},
		{"moving into right wall", geom.Vec(0.75, 0), geom.Vec(10, 0), Touching{Right: true}},
		{"moving into left wall", geom.Vec(-0.75, 0), geom.Vec(-10, 0), Touching{Left: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := squareBody(t, 0, 0)
			body.Velocity = tc.vel
			cand := squareBody(t, tc.cand.X, tc.cand.Y)

			_, err := Resolve(body, []*Body{cand}, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, body.Touching)
		})
	}
}

func TestResolveFlagsAccumulateWithinCall(t *testing.T) {
	body := squareBody(t, 0, 0)
	floor := squareBody(t, 0, 0.75)
	wall := squareBody(t, 0.875, -0.5)

	out, err := Resolve(body, []*Body{floor, wall}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Contacts)
	assert.Equal(t, Touching{Down: true, Right: true}, body.Touching)
	assert.InDelta(t, -0.125, body.Position.X, tol)
	assert.InDelta(t, -0.25, body.Position.Y, tol)
}

func TestResolveResetsFlagsOnEntry(t *testing.T) {
	body := squareBody(t, 0, 0)
	body.Touching = Touching{Up: true, Left: true}

	out, err := Resolve(body, []*Body{squareBody(t, 5, 5)}, nil)
	require.NoError(t, err)
	assert.False(t, out.Collided)
	assert.False(t, body.Touching.Any())
}

func TestResolveIsSequential(t *testing.T) {
	body := squareBody(t, 0, 0)
	body.Velocity = geom.Vec(0, 5)

	// Both overlap the starting position, but the first correction lifts the
	// body clear of the second.
	first := squareBody(t, 0, 0.75)
	second := squareBody(t, 0, 0.8)

	out, err := Resolve(body, []*Body{first, second}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Contacts)
	assert.InDelta(t, -0.25, body.Position.Y, tol)

	// Reversed order takes two corrections to reach the same place.
	body = squareBody(t, 0, 0)
	out, err = Resolve(body, []*Body{second, first}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Contacts)
	assert.InDelta(t, -0.25, body.Position.Y, tol)
}

func TestResolveCallbackShortCircuits(t *testing.T) {
	body := squareBody(t, 0, 0)
	body.Velocity = geom.Vec(1, 5)
	body.Touching = Touching{Left: true}

	first := squareBody(t, 0, 0.75)
	second := squareBody(t, 0, -0.75)

	var calls []*Body
	cb := func(b, c *Body) any {
		assert.Same(t, body, b)
		calls = append(calls, c)
		return "handled"
	}

	out, err := Resolve(body, []*Body{first, second}, cb)
	require.NoError(t, err)

	assert.True(t, out.Collided)
	assert.True(t, out.Handled)
	assert.Equal(t, "handled", out.Value)
	assert.Equal(t, 0, out.Contacts)
	require.Len(t, calls, 1)
	assert.Same(t, first, calls[0])

	assert.Equal(t, geom.Vec(0, 0), body.Position)
	assert.Equal(t, geom.Vec(1, 5), body.Velocity)
	assert.False(t, body.Touching.Any())
}

func TestResolveCallbackNotCalledWithoutOverlap(t *testing.T) {
	body := squareBody(t, 0, 0)
	called := false

	out, err := Resolve(body, []*Body{squareBody(t, 3, 0)}, func(_, _ *Body) any {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.False(t, out.Collided)
	assert.Nil(t, out.Value)
}

func TestResolveMissingPolygon(t *testing.T) {
	body := &Body{Position: geom.Vec(1, 2), Velocity: geom.Vec(3, 4), Alive: true}

	_, err := Resolve(body, []*Body{squareBody(t, 1, 2)}, nil)
	assert.ErrorIs(t, err, ErrMissingPolygon)
	assert.Equal(t, geom.Vec(1, 2), body.Position)
	assert.Equal(t, geom.Vec(3, 4), body.Velocity)
}

func TestResolveNilBody(t *testing.T) {
	out, err := Resolve(nil, []*Body{squareBody(t, 0, 0)}, nil)
	assert.ErrorIs(t, err, ErrMissingPolygon)
	assert.False(t, out.Collided)
}

func TestResolveSkipsInactiveAndMalformedCandidates(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(Options{
		Logger: slog.New(slog.NewTextHandler(&buf, nil)),
		Debug:  DebugOptions{LogSkipped: true},
	})

	body := squareBody(t, 0, 0)

	dead := squareBody(t, 0, 0.5)
	dead.Alive = false
	hollow := &Body{Position: geom.Vec(0, 0.5), Alive: true}

	out, err := r.Resolve(body, []*Body{dead, nil, hollow}, nil)
	require.NoError(t, err)

	assert.False(t, out.Collided)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, geom.Vec(0, 0), body.Position)
	assert.True(t, strings.Contains(buf.String(), "collision candidate without polygon"))
}

func TestResolveLogsContacts(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(Options{
		Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Debug:  DebugOptions{LogContacts: true},
	})

	body := squareBody(t, 0, 0)
	_, err := r.Resolve(body, []*Body{squareBody(t, 0, 0.75)}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "contact resolved")
}

func TestRespond(t *testing.T) {
	diag := geom.Vec(-1, -1).Normalize()

	tests := []struct {
		name             string
		vel, normal      geom.Vector2
		bounce, friction float64
		want             geom.Vector2
	}{
		{"head-on elastic", geom.Vec(0, 5), geom.Vec(0, -1), 1, 0, geom.Vec(0, -5)},
		{"head-on inelastic", geom.Vec(0, 5), geom.Vec(0, -1), 0, 0, geom.Vec(0, 0)},
		{"sliding with friction", geom.Vec(4, 0), geom.Vec(0, -1), 0.5, 0.25, geom.Vec(3, 0)},
		{"slope elastic", geom.Vec(0, 2), diag, 1, 0, geom.Vec(-2, 0)},
		{"slope absorbing", geom.Vec(0, 2), diag, 0, 0, geom.Vec(-1, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Respond(tc.vel, tc.normal, tc.bounce, tc.friction)
			assert.InDelta(t, tc.want.X, got.X, tol)
			assert.InDelta(t, tc.want.Y, got.Y, tol)
		})
	}
}
