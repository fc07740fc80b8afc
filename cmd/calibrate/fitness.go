package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/polygons/components"
	"github.com/pthm-cable/polygons/config"
	"github.com/pthm-cable/polygons/game"
)

// Targets are the material behaviours the calibration aims for.
type Targets struct {
	Rebound float64 // rebound height as a fraction of drop height
	Slide   float64 // distance a box launched along the floor travels
}

// Scenario geometry
const (
	floorY      = 500.0
	floorH      = 40.0
	boxSize     = 20.0
	slideStartX = 20.0
	slideSpeed  = 200.0
)

// FitnessEvaluator runs headless trials and scores materials against targets.
type FitnessEvaluator struct {
	params      *ParamVector
	targets     Targets
	dropHeights []float64
	maxTicks    int32
	baseConfig  *config.Config

	mu          sync.Mutex
	bestFitness float64
	lastTrial   trialResult
}

// trialResult holds the measurements from one evaluation.
type trialResult struct {
	rebound float64 // mean rebound ratio over drop heights
	slide   float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, targets Targets, dropHeights []float64, maxTicks int32, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		targets:     targets,
		dropHeights: dropHeights,
		maxTicks:    maxTicks,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastTrial returns the measurements of the most recent evaluation.
func (fe *FitnessEvaluator) LastTrial() (rebound, slide float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastTrial.rebound, fe.lastTrial.slide
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// the summed squared relative errors of rebound and slide.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	clamped := fe.params.Clamp(x)
	mat := components.Material{Bounce: clamped[0], Friction: clamped[1]}

	// Drops and the slide run in parallel
	rebounds := make([]float64, len(fe.dropHeights))
	var slide float64
	var g errgroup.Group

	for i, h := range fe.dropHeights {
		g.Go(func() error {
			r, err := fe.runDrop(mat, h)
			rebounds[i] = r
			return err
		})
	}
	g.Go(func() error {
		var err error
		slide, err = fe.runSlide(mat)
		return err
	})
	if err := g.Wait(); err != nil {
		return math.Inf(1)
	}

	var rebound float64
	for _, r := range rebounds {
		rebound += r
	}
	rebound /= float64(len(rebounds))

	fitness := relErrSq(rebound, fe.targets.Rebound) + relErrSq(slide, fe.targets.Slide)

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
	}
	fe.lastTrial = trialResult{rebound: rebound, slide: slide}
	fe.mu.Unlock()

	return fitness
}

// relErrSq is the squared error relative to target, or absolute for a zero target.
func relErrSq(got, target float64) float64 {
	d := got - target
	if target != 0 {
		d /= target
	}
	return d * d
}

// newTrialSim builds a simulation with a floor spanning the world.
func (fe *FitnessEvaluator) newTrialSim() (*game.Sim, error) {
	cfg := *fe.baseConfig
	sim, err := game.NewSim(&cfg, game.Options{})
	if err != nil {
		return nil, err
	}
	if _, err := sim.EnableBox(0, floorY, cfg.World.Width, floorH, game.BodyOptions{Immovable: true}); err != nil {
		sim.Close()
		return nil, err
	}
	return sim, nil
}

// runDrop drops a box from height onto the floor and returns the apex of the
// first rebound as a fraction of height.
func (fe *FitnessEvaluator) runDrop(mat components.Material, height float64) (float64, error) {
	sim, err := fe.newTrialSim()
	if err != nil {
		return 0, err
	}
	defer sim.Close()

	startY := floorY - boxSize - height
	box, err := sim.EnableBox(100, startY, boxSize, boxSize, game.BodyOptions{Material: &mat})
	if err != nil {
		return 0, err
	}

	posMap := ecs.NewMap[components.Position](sim.World())
	velMap := ecs.NewMap[components.Velocity](sim.World())
	contactMap := ecs.NewMap[components.Contact](sim.World())

	landed := false
	apex := floorY - boxSize
	for sim.Tick() < fe.maxTicks {
		if err := sim.Step(); err != nil {
			return 0, err
		}
		if !sim.World().Alive(box) {
			return 0, fmt.Errorf("drop box retired")
		}

		pos := posMap.Get(box)
		if !landed {
			landed = contactMap.Get(box).Touching.Down
			continue
		}
		apex = math.Min(apex, pos.Y)
		if velMap.Get(box).Y > 0 {
			break // falling again
		}
	}

	return (floorY - boxSize - apex) / height, nil
}

// runSlide launches a box along the floor and returns the distance it
// travels within the tick budget.
func (fe *FitnessEvaluator) runSlide(mat components.Material) (float64, error) {
	sim, err := fe.newTrialSim()
	if err != nil {
		return 0, err
	}
	defer sim.Close()

	box, err := sim.EnableBox(slideStartX, floorY-boxSize, boxSize, boxSize, game.BodyOptions{
		VelX:     slideSpeed,
		Material: &mat,
	})
	if err != nil {
		return 0, err
	}

	posMap := ecs.NewMap[components.Position](sim.World())
	velMap := ecs.NewMap[components.Velocity](sim.World())

	x := slideStartX
	for sim.Tick() < fe.maxTicks {
		if err := sim.Step(); err != nil {
			return 0, err
		}
		if !sim.World().Alive(box) {
			break // slid off the world
		}
		x = posMap.Get(box).X
		if math.Abs(velMap.Get(box).X) < 1e-3 {
			break
		}
	}

	return x - slideStartX, nil
}
