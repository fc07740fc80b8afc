package telemetry

import "github.com/pthm-cable/polygons/collision"

// Collector accumulates contacts within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	retired   int
	collided  int
	resolved  int
	handled   int
	skipped   int
	touchUp   int
	touchDown int
	touchSide int
	depths    []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Contact is one body's collision result for a tick.
type Contact struct {
	Resolved   int
	Skipped    int
	Handled    bool
	MaxOverlap float64
	Touching   collision.Touching
}

// RecordContact records the collision result of one body.
func (c *Collector) RecordContact(ct Contact) {
	c.skipped += ct.Skipped
	if ct.Resolved == 0 && !ct.Handled {
		return
	}

	c.collided++
	c.resolved += ct.Resolved
	if ct.Handled {
		c.handled++
	}
	if ct.Touching.Up {
		c.touchUp++
	}
	if ct.Touching.Down {
		c.touchDown++
	}
	if ct.Touching.Left || ct.Touching.Right {
		c.touchSide++
	}
	c.depths = append(c.depths, ct.MaxOverlap)
}

// RecordRetired records bodies that left the world.
func (c *Collector) RecordRetired(n int) {
	c.retired += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// bodies and statics are the live movable and immovable counts at currentTick.
func (c *Collector) Flush(currentTick int32, bodies, statics int) WindowStats {
	mean, std, p50, p90, deepest := ComputeDepthStats(c.depths)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Bodies:  bodies,
		Statics: statics,

		Retired:   c.retired,
		Collided:  c.collided,
		Resolved:  c.resolved,
		Handled:   c.handled,
		Skipped:   c.skipped,
		TouchUp:   c.touchUp,
		TouchDown: c.touchDown,
		TouchSide: c.touchSide,

		DepthMean: mean,
		DepthStd:  std,
		DepthP50:  p50,
		DepthP90:  p90,
		DepthMax:  deepest,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.retired = 0
	c.collided = 0
	c.resolved = 0
	c.handled = 0
	c.skipped = 0
	c.touchUp = 0
	c.touchDown = 0
	c.touchSide = 0
	c.depths = c.depths[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
