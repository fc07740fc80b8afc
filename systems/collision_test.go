package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/polygons/collision"
	"github.com/pthm-cable/polygons/components"
	"github.com/pthm-cable/polygons/geom"
)

type bodyOpts struct {
	x, y, w, h   float64
	vx, vy       float64
	bounce       float64
	friction     float64
	immovable    bool
	gravity      bool
	withoutShape bool
}

func spawnBox(t *testing.T, w *ecs.World, o bodyOpts) ecs.Entity {
	t.Helper()

	var poly *geom.Polygon
	if !o.withoutShape {
		var err error
		poly, err = geom.NewBox(geom.Vec(o.x, o.y), o.w, o.h).ToPolygon()
		if err != nil {
			t.Fatalf("box polygon: %v", err)
		}
	}

	mapper := ecs.NewMap6[
		components.Position,
		components.Velocity,
		components.Shape,
		components.Material,
		components.BodyFlags,
		components.Contact,
	](w)

	return mapper.NewEntity(
		&components.Position{X: o.x, Y: o.y},
		&components.Velocity{X: o.vx, Y: o.vy},
		&components.Shape{Polygon: poly},
		&components.Material{Bounce: o.bounce, Friction: o.friction},
		&components.BodyFlags{Alive: true, Immovable: o.immovable, AllowGravity: o.gravity},
		&components.Contact{},
	)
}

func newTestCollisionSystem(w *ecs.World) *CollisionSystem {
	resolver := collision.NewResolver(collision.Options{})
	return NewCollisionSystem(w, resolver, Bounds{Width: 400, Height: 300}, 32)
}

// TestCollisionSystemBodyComesToRest drops a box onto a floor and checks it
// settles on top with the down flag set.
func TestCollisionSystemBodyComesToRest(t *testing.T) {
	w := ecs.NewWorld()
	spawnBox(t, w, bodyOpts{x: 0, y: 100, w: 200, h: 20, immovable: true})
	box := spawnBox(t, w, bodyOpts{x: 50, y: 50, w: 10, h: 10, gravity: true})

	physics := NewPhysicsSystem(w, MotionParams{DT: 1.0 / 60.0, Gravity: 900})
	coll := newTestCollisionSystem(w)

	for i := 0; i < 120; i++ {
		physics.Update(w)
		if _, err := coll.Update(w); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	pos := ecs.NewMap[components.Position](w).Get(box)
	vel := ecs.NewMap[components.Velocity](w).Get(box)
	contact := ecs.NewMap[components.Contact](w).Get(box)

	if math.Abs(pos.Y-90) > 1e-6 {
		t.Errorf("resting Y = %f, want 90", pos.Y)
	}
	if pos.X != 50 {
		t.Errorf("X drifted to %f", pos.X)
	}
	if math.Abs(vel.Y) > 1e-6 {
		t.Errorf("resting vel.Y = %f, want 0", vel.Y)
	}
	if contact.Touching != (collision.Touching{Down: true}) {
		t.Errorf("touching = %+v, want only Down", contact.Touching)
	}
	if coll.StaticCount() != 1 {
		t.Errorf("StaticCount = %d, want 1", coll.StaticCount())
	}
}

func TestCollisionSystemEvents(t *testing.T) {
	w := ecs.NewWorld()
	spawnBox(t, w, bodyOpts{x: 0, y: 100, w: 200, h: 20, immovable: true})
	hit := spawnBox(t, w, bodyOpts{x: 20, y: 95, w: 10, h: 10, vy: 30, bounce: 0.5})
	spawnBox(t, w, bodyOpts{x: 150, y: 10, w: 10, h: 10})

	coll := newTestCollisionSystem(w)
	events, err := coll.Update(w)
	if err != nil {
		t.Fatal(err)
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Entity != hit {
		t.Errorf("event entity = %v, want %v", ev.Entity, hit)
	}
	if ev.Contacts != 1 || math.Abs(ev.MaxOverlap-5) > 1e-9 {
		t.Errorf("event = %+v, want 1 contact with overlap 5", ev)
	}

	vel := ecs.NewMap[components.Velocity](w).Get(hit)
	if math.Abs(vel.Y+15) > 1e-9 {
		t.Errorf("vel.Y = %f, want -15", vel.Y)
	}
}

func TestCollisionSystemHookSeesNearestCandidateFirst(t *testing.T) {
	w := ecs.NewWorld()
	far := spawnBox(t, w, bodyOpts{x: 0, y: 18, w: 40, h: 40, immovable: true})
	near := spawnBox(t, w, bodyOpts{x: 5, y: 8, w: 10, h: 10, immovable: true})
	body := spawnBox(t, w, bodyOpts{x: 5, y: 0, w: 10, h: 20})

	coll := newTestCollisionSystem(w)
	var calls int
	coll.OnCollide = func(b, c ecs.Entity) any {
		calls++
		if b != body {
			t.Errorf("hook body = %v, want %v", b, body)
		}
		return c
	}

	events, err := coll.Update(w)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("hook called %d times, want 1", calls)
	}
	if len(events) != 1 || !events[0].Handled {
		t.Fatalf("events = %+v, want one handled event", events)
	}
	if events[0].Value != near {
		t.Errorf("hook saw %v first, want nearest %v (far is %v)", events[0].Value, near, far)
	}

	pos := ecs.NewMap[components.Position](w).Get(body)
	if pos.X != 5 || pos.Y != 0 {
		t.Errorf("hooked body moved to (%f, %f)", pos.X, pos.Y)
	}
}

func TestCollisionSystemSkipsRetiredStatics(t *testing.T) {
	w := ecs.NewWorld()
	floor := spawnBox(t, w, bodyOpts{x: 0, y: 100, w: 200, h: 20, immovable: true})
	spawnBox(t, w, bodyOpts{x: 20, y: 95, w: 10, h: 10})

	ecs.NewMap[components.BodyFlags](w).Get(floor).Alive = false

	coll := newTestCollisionSystem(w)
	events, err := coll.Update(w)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events against a retired floor", len(events))
	}
	if coll.StaticCount() != 0 {
		t.Errorf("StaticCount = %d, want 0", coll.StaticCount())
	}
}

func TestCollisionSystemMissingPolygon(t *testing.T) {
	w := ecs.NewWorld()
	spawnBox(t, w, bodyOpts{x: 0, y: 100, w: 200, h: 20, immovable: true})
	spawnBox(t, w, bodyOpts{x: 20, y: 95, w: 10, h: 10, withoutShape: true})

	coll := newTestCollisionSystem(w)
	_, err := coll.Update(w)
	if !errors.Is(err, collision.ErrMissingPolygon) {
		t.Errorf("err = %v, want ErrMissingPolygon", err)
	}
}

func TestSpatialGridQuery(t *testing.T) {
	g := NewSpatialGrid(100, 100, 10)

	boxes := []struct {
		slot     int
		min, max [2]float64
	}{
		{0, [2]float64{0, 0}, [2]float64{5, 5}},
		{1, [2]float64{0, 0}, [2]float64{35, 5}}, // spans four columns
		{2, [2]float64{80, 80}, [2]float64{90, 90}},
		{3, [2]float64{-50, -50}, [2]float64{-40, -40}}, // clamped into cell (0, 0)
	}
	for _, b := range boxes {
		g.Insert(b.slot, box(b.min[0], b.min[1], b.max[0], b.max[1]))
	}

	tests := []struct {
		name  string
		query [4]float64
		want  []int
	}{
		{"origin cell", [4]float64{1, 1, 2, 2}, []int{0, 1, 3}},
		{"wide box dedup", [4]float64{0, 0, 40, 5}, []int{0, 1, 3}},
		{"right of origin", [4]float64{25, 1, 26, 2}, []int{1}},
		{"far corner", [4]float64{85, 85, 200, 200}, []int{2}},
		{"empty", [4]float64{50, 50, 55, 55}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.QueryBoxInto(nil, box(tc.query[0], tc.query[1], tc.query[2], tc.query[3]))
			if len(got) != len(tc.want) {
				t.Fatalf("QueryBoxInto = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("QueryBoxInto = %v, want %v", got, tc.want)
					break
				}
			}
		})
	}

	g.Clear()
	if got := g.QueryBoxInto(nil, box(0, 0, 100, 100)); len(got) != 0 {
		t.Errorf("after Clear got %v", got)
	}
}

func box(x0, y0, x1, y1 float64) r2.Box {
	return r2.Box{Min: r2.Vec{X: x0, Y: y0}, Max: r2.Vec{X: x1, Y: y1}}
}
