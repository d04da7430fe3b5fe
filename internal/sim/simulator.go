package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
)

type Simulator struct {
	cloth         *cloth.Cloth
	params        cloth.Params
	accelerations []mgl64.Vec3
	colliders     []cloth.Collider
	metrics       []Metric
	observers     []Observer
	log           *slog.Logger
}

func New(c *cloth.Cloth, p cloth.Params, accelerations []mgl64.Vec3, colliders []cloth.Collider) *Simulator {
	return &Simulator{
		cloth:         c,
		params:        p,
		accelerations: accelerations,
		colliders:     colliders,
		metrics:       make([]Metric, 0),
		observers:     make([]Observer, 0),
		log:           slog.New(slog.DiscardHandler),
	}
}

// FromScene builds the cloth, colliders and accelerations a scene describes.
func FromScene(s *config.Scene) (*Simulator, Config, error) {
	if err := s.Validate(); err != nil {
		return nil, Config{}, err
	}
	c, err := s.NewCloth()
	if err != nil {
		return nil, Config{}, err
	}
	colliders, err := s.BuildColliders()
	if err != nil {
		return nil, Config{}, err
	}
	cfg := Config{FPS: s.Sim.FPS, Substeps: s.Sim.Substeps, Frames: s.Sim.Frames}
	return New(c, s.Params, s.BuildAccelerations(), colliders), cfg, nil
}

func (s *Simulator) AddMetric(m Metric)          { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)      { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *slog.Logger)    { s.log = l }
func (s *Simulator) Cloth() *cloth.Cloth         { return s.cloth }
func (s *Simulator) Params() cloth.Params        { return s.params }
func (s *Simulator) SetParams(p cloth.Params)    { s.params = p }
func (s *Simulator) Colliders() []cloth.Collider { return s.colliders }

// Frame advances the cloth by one frame of cfg.Substeps steps.
func (s *Simulator) Frame(cfg Config) error {
	for i := 0; i < cfg.Substeps; i++ {
		if err := s.cloth.Step(cfg.FPS, cfg.Substeps, s.params, s.accelerations, s.colliders); err != nil {
			return err
		}
	}
	return nil
}

// Run simulates cfg.Frames frames. On cancellation or a failed step the
// partial result is returned with the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Times:   make([]float64, 0, cfg.Frames),
		Series:  make(map[string][]float64, len(s.metrics)),
		Metrics: make(map[string]float64, len(s.metrics)),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.Series[m.Name()] = make([]float64, 0, cfg.Frames)
	}

	frameTime := 1 / cfg.FPS
	t := 0.0
	var runErr error
	for f := 0; f < cfg.Frames; f++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		if err := s.Frame(cfg); err != nil {
			runErr = &FrameError{Frame: f, Time: t, Wrapped: err}
			break
		}
		t += frameTime
		result.Frames++
		result.Times = append(result.Times, t)

		for _, m := range s.metrics {
			m.Observe(s.cloth, t)
			result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
		}
		for _, obs := range s.observers {
			obs.OnFrame(s.cloth, f, t)
		}
		s.log.Debug("frame", "frame", f, "t", t, "steps", s.cloth.Steps())
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = s.cloth.Positions()
	return result, runErr
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.FPS > 0) || math.IsInf(cfg.FPS, 0) {
		return fmt.Errorf("%w: fps must be positive, got %g", ErrInvalidConfig, cfg.FPS)
	}
	if cfg.Substeps <= 0 {
		return fmt.Errorf("%w: substeps must be positive, got %d", ErrInvalidConfig, cfg.Substeps)
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidConfig, cfg.Frames)
	}
	return s.params.Validate()
}
