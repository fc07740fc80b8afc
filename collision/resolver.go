package collision

import (
	"log/slog"

	"github.com/pthm-cable/polygons/geom"
)

// CollideFunc handles a collision in place of the default response. Its
// return value becomes Outcome.Value.
type CollideFunc func(body, candidate *Body) any

// Outcome summarises one Resolve call.
type Outcome struct {
	// Collided is true when at least one candidate overlapped the body.
	Collided bool
	// Handled is true when a CollideFunc consumed the collision.
	Handled bool
	// Value is the CollideFunc result when Handled is set.
	Value any

	Contacts   int     // candidates resolved by the default response
	Skipped    int     // candidates ignored because they carry no polygon
	MaxOverlap float64 // deepest penetration seen
}

// NarrowPhase resolves one body against its candidates.
type NarrowPhase interface {
	Resolve(body *Body, candidates []*Body, onCollide CollideFunc) (Outcome, error)
}

// DebugOptions enables extra diagnostics.
type DebugOptions struct {
	LogContacts bool // log every resolved contact at debug level
	LogSkipped  bool // warn about candidates without a polygon
}

// Options configures a Resolver.
type Options struct {
	Logger *slog.Logger // nil uses slog.Default()
	Debug  DebugOptions
}

// Resolver is the default NarrowPhase: separating axis test followed by a
// single-shot positional correction and a bounce/friction velocity response.
type Resolver struct {
	logger *slog.Logger
	debug  DebugOptions
}

var _ NarrowPhase = (*Resolver)(nil)

// NewResolver creates a resolver.
func NewResolver(opts Options) *Resolver {
	return &Resolver{logger: opts.Logger, debug: opts.Debug}
}

var defaultResolver = NewResolver(Options{Debug: DebugOptions{LogSkipped: true}})

// Resolve runs the default resolver.
func Resolve(body *Body, candidates []*Body, onCollide CollideFunc) (Outcome, error) {
	return defaultResolver.Resolve(body, candidates, onCollide)
}

func (r *Resolver) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Resolve tests body against each candidate in order.
//
// Touching flags are cleared once on entry. Inactive candidates are ignored.
// On the first overlap with a non-nil onCollide, the callback runs, its result
// is returned and no further candidates are processed; the body is not moved.
// Otherwise each overlap is resolved immediately so later candidates see the
// corrected position and velocity.
func (r *Resolver) Resolve(body *Body, candidates []*Body, onCollide CollideFunc) (Outcome, error) {
	var out Outcome
	if body == nil || body.Polygon == nil {
		return out, ErrMissingPolygon
	}

	body.Touching.Reset()
	body.syncPolygon()

	for i, cand := range candidates {
		if cand == nil || !cand.Alive {
			continue
		}
		if cand.Polygon == nil {
			out.Skipped++
			if r.debug.LogSkipped {
				r.log().Warn("collision candidate without polygon", "index", i)
			}
			continue
		}

		cand.syncPolygon()
		resp, hit := geom.TestPolygonPolygon(body.Polygon, cand.Polygon)
		if !hit {
			continue
		}

		out.Collided = true
		if resp.Overlap > out.MaxOverlap {
			out.MaxOverlap = resp.Overlap
		}

		if onCollide != nil {
			out.Handled = true
			out.Value = onCollide(body, cand)
			return out, nil
		}

		r.separate(body, resp)
		out.Contacts++

		if r.debug.LogContacts {
			r.log().Debug("contact resolved",
				"index", i,
				"overlap", resp.Overlap,
				"normal_x", resp.OverlapN.X,
				"normal_y", resp.OverlapN.Y,
				"vel_x", body.Velocity.X,
				"vel_y", body.Velocity.Y,
			)
		}
	}

	return out, nil
}

// separate applies the default response for one overlap.
func (r *Resolver) separate(body *Body, resp geom.Response) {
	// The response points into the candidate; flip it to face out of it.
	outward := resp.OverlapV.Neg()

	body.Position = body.Position.Add(outward)
	body.syncPolygon()
	body.Touching.set(outward)

	body.Velocity = Respond(body.Velocity, resp.OverlapN.Neg(), body.Bounce, body.Friction)
}

// Respond splits velocity into components along the unit surface normal and
// along the surface, reflects the normal part scaled by bounce and damps the
// tangential part by friction.
func Respond(velocity, normal geom.Vector2, bounce, friction float64) geom.Vector2 {
	vn := velocity.ProjectN(normal)
	vt := velocity.Sub(vn)
	return vt.Scale(1 - friction).Add(vn.Scale(-bounce))
}
