// Package game wires the ECS world, systems and telemetry into a runnable
// polygon collision simulation.
package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/polygons/collision"
	"github.com/pthm-cable/polygons/components"
	"github.com/pthm-cable/polygons/config"
	"github.com/pthm-cable/polygons/systems"
	"github.com/pthm-cable/polygons/telemetry"
)

// Sim holds the complete simulation state.
type Sim struct {
	world *ecs.World
	cfg   *config.Config

	// Entity mapper and filter over the full body archetype
	entityMapper *ecs.Map6[
		components.Position,
		components.Velocity,
		components.Shape,
		components.Material,
		components.BodyFlags,
		components.Contact,
	]
	entityFilter *ecs.Filter6[
		components.Position,
		components.Velocity,
		components.Shape,
		components.Material,
		components.BodyFlags,
		components.Contact,
	]

	// Systems
	physics    *systems.PhysicsSystem
	collision  *systems.CollisionSystem
	decomposer Decomposer

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	logStats      bool
	snapshotDir   string

	// State
	tick       int32
	numBodies  int
	numStatics int
}

// NewSim creates a simulation from cfg. A nil cfg uses config.Cfg().
func NewSim(cfg *config.Config, opts Options) (*Sim, error) {
	if cfg == nil {
		cfg = config.Cfg()
	}
	world := ecs.NewWorld()

	resolver := collision.NewResolver(collision.Options{
		Debug: collision.DebugOptions{
			LogContacts: cfg.Debug.LogContacts,
			LogSkipped:  cfg.Debug.LogSkipped,
		},
	})

	bounds := systems.Bounds{Width: cfg.World.Width, Height: cfg.World.Height}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	s := &Sim{
		world: world,
		cfg:   cfg,
		entityMapper: ecs.NewMap6[
			components.Position,
			components.Velocity,
			components.Shape,
			components.Material,
			components.BodyFlags,
			components.Contact,
		](world),
		entityFilter: ecs.NewFilter6[
			components.Position,
			components.Velocity,
			components.Shape,
			components.Material,
			components.BodyFlags,
			components.Contact,
		](world),
		physics: systems.NewPhysicsSystem(world, systems.MotionParams{
			DT:         cfg.Physics.DT,
			Gravity:    cfg.Physics.Gravity,
			MaxSpeed:   cfg.Physics.MaxSpeed,
			Bounds:     bounds,
			KillMargin: cfg.World.KillMargin,
		}),
		collision:     systems.NewCollisionSystem(world, resolver, bounds, cfg.Physics.GridCellSize),
		decomposer:    opts.Decomposer,
		collector:     telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		snapshotDir:   opts.SnapshotDir,
	}
	if s.decomposer == nil {
		s.decomposer = DefaultDecomposer
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	s.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	if opts.Scene != nil {
		if err := opts.Scene.Apply(s); err != nil {
			om.Close()
			return nil, fmt.Errorf("applying scene: %w", err)
		}
	}

	return s, nil
}

// Step runs a single tick of the simulation.
func (s *Sim) Step() error {
	s.perfCollector.StartTick()

	// 1. Gravity, integration, world bounds
	s.perfCollector.StartPhase(telemetry.PhaseMotion)
	s.collector.RecordRetired(s.physics.Update(s.world))

	// 2. Broad phase + resolver
	s.perfCollector.StartPhase(telemetry.PhaseCollision)
	events, err := s.collision.Update(s.world)
	if err != nil {
		s.perfCollector.EndTick()
		return fmt.Errorf("tick %d: %w", s.tick, err)
	}
	for _, ev := range events {
		s.collector.RecordContact(telemetry.Contact{
			Resolved:   ev.Contacts,
			Skipped:    ev.Skipped,
			Handled:    ev.Handled,
			MaxOverlap: ev.MaxOverlap,
			Touching:   ev.Touching,
		})
	}

	// 3. Remove retired bodies
	s.perfCollector.StartPhase(telemetry.PhaseCleanup)
	s.cleanupRetired()

	s.tick++

	// 4. Stats windows
	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perfCollector.EndTick()
	return nil
}

// Run steps the simulation maxTicks times, or until an error if maxTicks <= 0.
func (s *Sim) Run(maxTicks int) error {
	for maxTicks <= 0 || int(s.tick) < maxTicks {
		if err := s.Step(); err != nil {
			return err
		}
	}
	slog.Info("max ticks reached", "tick", s.tick)
	return nil
}

// SetCollideHook installs a hook that replaces the default collision
// response. Pass nil to restore it.
func (s *Sim) SetCollideHook(hook systems.CollideHook) {
	s.collision.OnCollide = hook
}

// World returns the ECS world.
func (s *Sim) World() *ecs.World {
	return s.world
}

// Tick returns the current simulation tick.
func (s *Sim) Tick() int32 {
	return s.tick
}

// BodyCount returns the number of live movable bodies.
func (s *Sim) BodyCount() int {
	return s.numBodies
}

// StaticCount returns the number of live immovable bodies.
func (s *Sim) StaticCount() int {
	return s.numStatics
}

// Close saves the final snapshot if requested and closes output files.
func (s *Sim) Close() error {
	if s.snapshotDir != "" {
		s.saveSnapshot()
	}
	return s.outputManager.Close()
}
