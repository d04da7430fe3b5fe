package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/cloth"
)

type Metric interface {
	Name() string
	Observe(c *cloth.Cloth, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(c *cloth.Cloth, frame int, t float64)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(c *cloth.Cloth, frame int, t float64)

func (f ObserverFunc) OnFrame(c *cloth.Cloth, frame int, t float64) { f(c, frame, t) }

type Config struct {
	FPS      float64
	Substeps int
	Frames   int
}

// Dt is the length of one substep.
func (c Config) Dt() float64 { return 1 / (c.FPS * float64(c.Substeps)) }

type Result struct {
	// Times holds the simulated time at the end of each frame.
	Times []float64
	// Series holds each metric's value after every frame, keyed by name.
	Series  map[string][]float64
	Metrics map[string]float64
	Frames  int
	Final   []mgl64.Vec3
}
