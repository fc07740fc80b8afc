package game

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/polygons/components"
	"github.com/pthm-cable/polygons/geom"
	"github.com/pthm-cable/polygons/systems"
)

//go:embed demo_scene.yaml
var demoSceneYAML []byte

// Scene describes the bodies a simulation starts with.
type Scene struct {
	Terrain *TerrainSpec  `yaml:"terrain,omitempty"`
	Statics []OutlineSpec `yaml:"statics,omitempty"`
	Boxes   []BoxSpec     `yaml:"boxes,omitempty"`
	Bodies  []BodySpec    `yaml:"bodies,omitempty"`
}

// TerrainSpec configures a generated noise floor.
type TerrainSpec struct {
	Seed       int64   `yaml:"seed"`
	Step       float64 `yaml:"step"`
	NoiseScale float64 `yaml:"noise_scale"`
	MinRatio   float64 `yaml:"min_ratio"`
	MaxRatio   float64 `yaml:"max_ratio"`
}

// OutlineSpec is a static outline in world coordinates, as [x, y] pairs.
type OutlineSpec struct {
	Outline [][2]float64 `yaml:"outline"`
}

// MaterialSpec overrides the configured material for one body.
type MaterialSpec struct {
	Bounce   float64 `yaml:"bounce"`
	Friction float64 `yaml:"friction"`
}

// MotionSpec holds the options shared by boxes and bodies.
type MotionSpec struct {
	VX        float64       `yaml:"vx"`
	VY        float64       `yaml:"vy"`
	Immovable bool          `yaml:"immovable"`
	NoGravity bool          `yaml:"no_gravity"`
	Material  *MaterialSpec `yaml:"material,omitempty"`
}

// BoxSpec is an axis-aligned box body.
type BoxSpec struct {
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	W          float64 `yaml:"w"`
	H          float64 `yaml:"h"`
	MotionSpec `yaml:",inline"`
}

// BodySpec is a convex body with local vertices [x0, y0, x1, y1, ...].
type BodySpec struct {
	X          float64   `yaml:"x"`
	Y          float64   `yaml:"y"`
	Vertices   []float64 `yaml:"vertices"`
	MotionSpec `yaml:",inline"`
}

// LoadScene reads a scene from a YAML file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return ParseScene(data)
}

// DemoScene returns the built-in scene.
func DemoScene() (*Scene, error) {
	return ParseScene(demoSceneYAML)
}

// ParseScene decodes a scene, rejecting unknown fields.
func ParseScene(data []byte) (*Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var scene Scene
	if err := dec.Decode(&scene); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}
	return &scene, nil
}

// Apply enables every scene body in s. Statics go first so candidate order
// does not depend on file order.
func (sc *Scene) Apply(s *Sim) error {
	if t := sc.Terrain; t != nil {
		if _, err := s.EnableTerrain(systems.TerrainParams{
			Seed:       t.Seed,
			Step:       t.Step,
			NoiseScale: t.NoiseScale,
			MinRatio:   t.MinRatio,
			MaxRatio:   t.MaxRatio,
		}); err != nil {
			return fmt.Errorf("terrain: %w", err)
		}
	}

	outlines := make([][]geom.Vector2, 0, len(sc.Statics))
	for _, st := range sc.Statics {
		outline := make([]geom.Vector2, len(st.Outline))
		for i, p := range st.Outline {
			outline[i] = geom.Vec(p[0], p[1])
		}
		outlines = append(outlines, outline)
	}
	if _, err := s.EnableGroup(outlines); err != nil {
		return err
	}

	for i, b := range sc.Boxes {
		if _, err := s.EnableBox(b.X, b.Y, b.W, b.H, b.options()); err != nil {
			return fmt.Errorf("box %d: %w", i, err)
		}
	}
	for i, b := range sc.Bodies {
		if _, err := s.EnableBody(b.X, b.Y, b.Vertices, b.options()); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
	}
	return nil
}

func (m MotionSpec) options() BodyOptions {
	opts := BodyOptions{
		VelX:      m.VX,
		VelY:      m.VY,
		Immovable: m.Immovable,
		NoGravity: m.NoGravity,
	}
	if m.Material != nil {
		opts.Material = &components.Material{
			Bounce:   m.Material.Bounce,
			Friction: m.Material.Friction,
		}
	}
	return opts
}
