package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/polygons/collision"
)

func TestComputeDepthStats(t *testing.T) {
	tests := []struct {
		name                         string
		values                       []float64
		mean, std, p50, p90, deepest float64
	}{
		{"empty", nil, 0, 0, 0, 0, 0},
		{"single sample", []float64{0.5}, 0.5, 0, 0.5, 0.5, 0.5},
		{"unsorted", []float64{4, 1, 3, 2}, 2.5, math.Sqrt(5.0 / 3.0), 2, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std, p50, p90, deepest := ComputeDepthStats(tt.values)
			got := []float64{mean, std, p50, p90, deepest}
			want := []float64{tt.mean, tt.std, tt.p50, tt.p90, tt.deepest}
			names := []string{"mean", "std", "p50", "p90", "max"}
			for i := range got {
				if math.Abs(got[i]-want[i]) > 1e-9 {
					t.Errorf("%s = %v, want %v", names[i], got[i], want[i])
				}
			}
		})
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.25)
	if c.WindowDurationTicks() != 4 {
		t.Fatalf("WindowDurationTicks = %d, want 4", c.WindowDurationTicks())
	}

	c.RecordContact(Contact{Resolved: 1, MaxOverlap: 2, Touching: collision.Touching{Down: true}})
	c.RecordContact(Contact{Resolved: 2, MaxOverlap: 4, Touching: collision.Touching{Down: true, Left: true}})
	c.RecordContact(Contact{Handled: true, MaxOverlap: 6})
	c.RecordContact(Contact{Skipped: 3}) // no overlap
	c.RecordRetired(2)

	if c.ShouldFlush(3) {
		t.Error("flushed before the window ended")
	}
	if !c.ShouldFlush(4) {
		t.Error("expected flush at window end")
	}

	s := c.Flush(4, 10, 5)

	if s.WindowStartTick != 0 || s.WindowEndTick != 4 || s.SimTimeSec != 1 {
		t.Errorf("window = [%d, %d] at %v s", s.WindowStartTick, s.WindowEndTick, s.SimTimeSec)
	}
	if s.Bodies != 10 || s.Statics != 5 || s.Retired != 2 {
		t.Errorf("population = %+v", s)
	}
	if s.Collided != 3 || s.Resolved != 3 || s.Handled != 1 || s.Skipped != 3 {
		t.Errorf("counters = collided %d resolved %d handled %d skipped %d",
			s.Collided, s.Resolved, s.Handled, s.Skipped)
	}
	if s.TouchDown != 2 || s.TouchSide != 1 || s.TouchUp != 0 {
		t.Errorf("touching = up %d down %d side %d", s.TouchUp, s.TouchDown, s.TouchSide)
	}
	if s.DepthMean != 4 || s.DepthMax != 6 || s.DepthP50 != 4 {
		t.Errorf("depth = mean %v p50 %v max %v", s.DepthMean, s.DepthP50, s.DepthMax)
	}

	// Counters reset for the next window.
	next := c.Flush(8, 10, 5)
	if next.WindowStartTick != 4 || next.Collided != 0 || next.Skipped != 0 || next.DepthMax != 0 {
		t.Errorf("second window not reset: %+v", next)
	}
}
