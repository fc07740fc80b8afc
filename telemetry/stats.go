package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated collision statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Bodies  int `csv:"bodies"`
	Statics int `csv:"statics"`

	// Events during window
	Retired   int `csv:"retired"`
	Collided  int `csv:"collided"` // body-ticks with at least one overlap
	Resolved  int `csv:"resolved"` // candidates resolved by the default response
	Handled   int `csv:"handled"`  // overlaps consumed by a hook
	Skipped   int `csv:"skipped"`  // candidates without a polygon
	TouchUp   int `csv:"touch_up"`
	TouchDown int `csv:"touch_down"`
	TouchSide int `csv:"touch_side"` // left or right

	// Penetration depth distribution
	DepthMean float64 `csv:"depth_mean"`
	DepthStd  float64 `csv:"depth_std"`
	DepthP50  float64 `csv:"depth_p50"`
	DepthP90  float64 `csv:"depth_p90"`
	DepthMax  float64 `csv:"depth_max"`
}

// ComputeDepthStats calculates mean, standard deviation, median, 90th
// percentile and maximum of penetration depths. values is sorted in place.
func ComputeDepthStats(values []float64) (mean, std, p50, p90, deepest float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	sort.Float64s(values)
	if n < 2 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	p50 = stat.Quantile(0.5, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, values, nil)
	deepest = values[n-1]

	return mean, std, p50, p90, deepest
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("bodies", s.Bodies),
		slog.Int("statics", s.Statics),
		slog.Int("retired", s.Retired),
		slog.Int("collided", s.Collided),
		slog.Int("resolved", s.Resolved),
		slog.Int("handled", s.Handled),
		slog.Int("skipped", s.Skipped),
		slog.Int("touch_up", s.TouchUp),
		slog.Int("touch_down", s.TouchDown),
		slog.Int("touch_side", s.TouchSide),
		slog.Float64("depth_mean", s.DepthMean),
		slog.Float64("depth_std", s.DepthStd),
		slog.Float64("depth_p50", s.DepthP50),
		slog.Float64("depth_p90", s.DepthP90),
		slog.Float64("depth_max", s.DepthMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"bodies", s.Bodies,
		"statics", s.Statics,
		"retired", s.Retired,
		"collided", s.Collided,
		"resolved", s.Resolved,
		"handled", s.Handled,
		"skipped", s.Skipped,
		"touch_down", s.TouchDown,
		"depth_mean", s.DepthMean,
		"depth_max", s.DepthMax,
	)
}
