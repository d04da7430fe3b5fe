package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/collision"
)

const (
	DefaultFPS       = 90.0
	DefaultSubsteps  = 30
	DefaultFrames    = 180
	DefaultSize      = 1.0
	DefaultPoints    = 24
	DefaultThickness = 0.01
	DefaultGravity   = -9.8
)

var (
	ErrUnknownCollider = errors.New("unknown collider type")
	ErrUnknownFormat   = errors.New("unknown config format")
	ErrInvalidSim      = errors.New("invalid sim settings")
)

// Scene is everything needed to build and drive one cloth simulation.
type Scene struct {
	Name          string           `yaml:"name,omitempty" toml:"name"`
	Cloth         ClothConfig      `yaml:"cloth" toml:"cloth"`
	Params        cloth.Params     `yaml:"params" toml:"params"`
	Sim           SimConfig        `yaml:"sim" toml:"sim"`
	Accelerations [][3]float64     `yaml:"accelerations" toml:"accelerations"`
	Colliders     []ColliderConfig `yaml:"colliders,omitempty" toml:"colliders"`
}

type ClothConfig struct {
	Width           float64  `yaml:"width" toml:"width"`
	Height          float64  `yaml:"height" toml:"height"`
	NumWidthPoints  int      `yaml:"num_width_points" toml:"num_width_points"`
	NumHeightPoints int      `yaml:"num_height_points" toml:"num_height_points"`
	Thickness       float64  `yaml:"thickness" toml:"thickness"`
	Orientation     string   `yaml:"orientation" toml:"orientation"`
	Pinned          [][2]int `yaml:"pinned" toml:"pinned"`
	Seed            int64    `yaml:"seed" toml:"seed"`
}

type SimConfig struct {
	FPS      float64 `yaml:"fps" toml:"fps"`
	Substeps int     `yaml:"substeps" toml:"substeps"`
	Frames   int     `yaml:"frames" toml:"frames"`
	Workers  int     `yaml:"workers" toml:"workers"`
}

// ColliderConfig describes a sphere (origin, radius) or a plane (point,
// normal). Fields of the other kind are ignored.
type ColliderConfig struct {
	Type     string     `yaml:"type" toml:"type"`
	Origin   [3]float64 `yaml:"origin,omitempty" toml:"origin"`
	Radius   float64    `yaml:"radius,omitempty" toml:"radius"`
	Point    [3]float64 `yaml:"point,omitempty" toml:"point"`
	Normal   [3]float64 `yaml:"normal,omitempty" toml:"normal"`
	Friction float64    `yaml:"friction" toml:"friction"`
}

// DefaultScene is a vertical sheet hanging from its two top corners.
func DefaultScene() *Scene {
	return &Scene{
		Name: "pinned2",
		Cloth: ClothConfig{
			Width:           DefaultSize,
			Height:          DefaultSize,
			NumWidthPoints:  DefaultPoints,
			NumHeightPoints: DefaultPoints,
			Thickness:       DefaultThickness,
			Orientation:     "vertical",
			Pinned:          [][2]int{{0, DefaultPoints - 1}, {DefaultPoints - 1, DefaultPoints - 1}},
		},
		Params: cloth.DefaultParams(),
		Sim: SimConfig{
			FPS:      DefaultFPS,
			Substeps: DefaultSubsteps,
			Frames:   DefaultFrames,
		},
		Accelerations: [][3]float64{{0, DefaultGravity, 0}},
	}
}

// Load reads a YAML or TOML scene, chosen by file extension. Values in the
// file override DefaultScene.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := DefaultScene()
	var pinsSet bool
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, s); err == nil {
			pinsSet, err = yamlSetsPins(data)
		}
	case ".toml":
		var md toml.MetaData
		md, err = toml.Decode(string(data), s)
		pinsSet = md.IsDefined("cloth", "pinned")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// default pins follow the file's resolution unless the file lists its own
	if !pinsSet {
		s.Cloth.Pinned = rescalePins(s.Cloth.Pinned, DefaultPoints, DefaultPoints,
			s.Cloth.NumWidthPoints, s.Cloth.NumHeightPoints)
	}
	return s, nil
}

func yamlSetsPins(data []byte) (bool, error) {
	var peek struct {
		Cloth struct {
			Pinned *[][2]int `yaml:"pinned"`
		} `yaml:"cloth"`
	}
	if err := yaml.Unmarshal(data, &peek); err != nil {
		return false, err
	}
	return peek.Cloth.Pinned != nil, nil
}

// Resize changes the cloth resolution and moves every pin to the same
// relative spot on the new grid.
func (s *Scene) Resize(cols, rows int) {
	s.Cloth.Pinned = rescalePins(s.Cloth.Pinned, s.Cloth.NumWidthPoints, s.Cloth.NumHeightPoints, cols, rows)
	s.Cloth.NumWidthPoints = cols
	s.Cloth.NumHeightPoints = rows
}

func rescalePins(pins [][2]int, fromW, fromH, toW, toH int) [][2]int {
	out := make([][2]int, 0, len(pins))
	seen := make(map[[2]int]bool, len(pins))
	for _, p := range pins {
		q := [2]int{rescale(p[0], fromW, toW), rescale(p[1], fromH, toH)}
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}

// rescale maps index i on a from-wide axis to the nearest index on a
// to-wide one, keeping both ends fixed.
func rescale(i, from, to int) int {
	if from <= 1 || to <= 1 {
		return 0
	}
	return (i*(to-1) + (from-1)/2) / (from - 1)
}

func Save(path string, s *Scene) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section, including that the cloth and colliders
// can be built.
func (s *Scene) Validate() error {
	if !(s.Sim.FPS > 0) || s.Sim.Substeps <= 0 {
		return fmt.Errorf("%w: fps=%g substeps=%d", ErrInvalidSim, s.Sim.FPS, s.Sim.Substeps)
	}
	if s.Sim.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidSim, s.Sim.Frames)
	}
	if err := s.Params.Validate(); err != nil {
		return err
	}
	for i, a := range s.Accelerations {
		if !finite(a) {
			return fmt.Errorf("%w: acceleration %d is %v", ErrInvalidSim, i, a)
		}
	}
	opts, err := s.ClothOptions()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	_, err = s.BuildColliders()
	return err
}

func (s *Scene) ClothOptions() (cloth.Options, error) {
	o, err := cloth.ParseOrientation(s.Cloth.Orientation)
	if err != nil {
		return cloth.Options{}, err
	}
	return cloth.Options{
		Width:           s.Cloth.Width,
		Height:          s.Cloth.Height,
		NumWidthPoints:  s.Cloth.NumWidthPoints,
		NumHeightPoints: s.Cloth.NumHeightPoints,
		Thickness:       s.Cloth.Thickness,
		Orientation:     o,
		Pinned:          s.Cloth.Pinned,
		Seed:            s.Cloth.Seed,
		Workers:         s.Sim.Workers,
	}, nil
}

func (s *Scene) NewCloth() (*cloth.Cloth, error) {
	opts, err := s.ClothOptions()
	if err != nil {
		return nil, err
	}
	return cloth.New(opts)
}

func (s *Scene) BuildColliders() ([]cloth.Collider, error) {
	out := make([]cloth.Collider, 0, len(s.Colliders))
	for i, cc := range s.Colliders {
		var (
			c   cloth.Collider
			err error
		)
		switch strings.ToLower(cc.Type) {
		case "sphere":
			c, err = collision.NewSphere(mgl64.Vec3(cc.Origin), cc.Radius, cc.Friction)
		case "plane":
			c, err = collision.NewPlane(mgl64.Vec3(cc.Point), mgl64.Vec3(cc.Normal), cc.Friction)
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownCollider, cc.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("collider %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func finite(v [3]float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (s *Scene) BuildAccelerations() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(s.Accelerations))
	for i, a := range s.Accelerations {
		out[i] = mgl64.Vec3(a)
	}
	return out
}

// Clone returns a deep copy so presets can be edited without aliasing.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Cloth.Pinned = append([][2]int(nil), s.Cloth.Pinned...)
	c.Accelerations = append([][3]float64(nil), s.Accelerations...)
	c.Colliders = append([]ColliderConfig(nil), s.Colliders...)
	return &c
}
