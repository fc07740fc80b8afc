package game

import (
	"log/slog"

	"github.com/pthm-cable/polygons/telemetry"
)

// flushTelemetry checks if the stats window should be flushed.
func (s *Sim) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.numBodies, s.numStatics)
	perfStats := s.perfCollector.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
		s.logWorldState()
	}

	// Write to CSV if output manager is enabled
	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (s *Sim) saveSnapshot() {
	snapshot := s.createSnapshot()

	path, err := telemetry.SaveSnapshot(snapshot, s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", s.tick)
}

// createSnapshot builds a snapshot from the current state.
func (s *Sim) createSnapshot() *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		WorldWidth:  s.cfg.World.Width,
		WorldHeight: s.cfg.World.Height,
		Tick:        s.tick,
	}

	query := s.entityFilter.Query()
	for query.Next() {
		pos, vel, shape, mat, flags, contact := query.Get()

		state := telemetry.BodyState{
			ID:        uint32(query.Entity().ID()),
			Immovable: flags.Immovable,
			Alive:     flags.Alive,
			X:         pos.X,
			Y:         pos.Y,
			VelX:      vel.X,
			VelY:      vel.Y,
			Bounce:    mat.Bounce,
			Friction:  mat.Friction,
			Touching:  touchingNames(contact.Touching),
		}
		if shape.Polygon != nil {
			for _, p := range shape.Polygon.Points() {
				state.Points = append(state.Points, [2]float64{p.X, p.Y})
			}
		}

		snapshot.Bodies = append(snapshot.Bodies, state)
	}

	return snapshot
}
