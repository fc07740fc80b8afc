package game

import "github.com/pthm-cable/polygons/telemetry"

// Options configures a simulation run.
type Options struct {
	LogStats       bool    // log window and perf stats via slog
	StatsWindowSec float64 // 0 uses telemetry.stats_window
	OutputDir      string  // CSV logs and config snapshot, empty disables
	SnapshotDir    string  // final body snapshot, empty disables

	// Scene is applied after the world is created. Nil starts empty.
	Scene *Scene

	// Decomposer splits static outlines into convex pieces.
	// Nil uses ear-clipping triangulation.
	Decomposer Decomposer

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}
