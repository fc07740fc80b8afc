package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/polygons/config"
	"github.com/pthm-cable/polygons/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	scenePath := flag.String("scene", "", "Path to scene.yaml (empty = built-in demo scene)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for the final body snapshot")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxTicks := flag.Int("max-ticks", 600, "Stop after N ticks (0 = unlimited)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var scene *game.Scene
	var err error
	if *scenePath != "" {
		scene, err = game.LoadScene(*scenePath)
	} else {
		scene, err = game.DemoScene()
	}
	if err != nil {
		slog.Error("failed to load scene", "error", err)
		os.Exit(1)
	}

	sim, err := game.NewSim(config.Cfg(), game.Options{
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Scene:          scene,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting headless simulation",
		"scene", *scenePath,
		"bodies", sim.BodyCount(),
		"statics", sim.StaticCount(),
		"max_ticks", *maxTicks,
	)

	runErr := sim.Run(*maxTicks)
	if err := sim.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}
	if runErr != nil {
		slog.Error("simulation failed", "error", runErr)
		os.Exit(1)
	}
}
