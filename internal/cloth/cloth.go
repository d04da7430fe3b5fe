package cloth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/mesh"
)

// jitter bounds the out-of-plane offset of a Vertical sheet.
const jitter = 0.001

// Options describe the sheet built by New.
type Options struct {
	Width, Height   float64
	NumWidthPoints  int
	NumHeightPoints int
	Thickness       float64
	Orientation     Orientation
	// Pinned lists (column, row) coordinates whose point masses never move.
	Pinned [][2]int
	// Seed drives the z jitter of a Vertical sheet.
	Seed int64
	// Workers > 1 splits force, integration and self-collision across goroutines.
	Workers int
}

type Cloth struct {
	width, height float64
	cols, rows    int
	thickness     float64
	orientation   Orientation
	workers       int

	points  []PointMass
	springs []Spring
	mesh    *mesh.Mesh

	steps int

	// scratch reused between steps
	forceBufs   [][]mgl64.Vec3
	corrections []mgl64.Vec3
}

func New(opts Options) (*Cloth, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	c := &Cloth{
		width:       opts.Width,
		height:      opts.Height,
		cols:        opts.NumWidthPoints,
		rows:        opts.NumHeightPoints,
		thickness:   opts.Thickness,
		orientation: opts.Orientation,
		workers:     workers,
	}
	c.buildGrid(opts.Pinned, rand.New(rand.NewSource(opts.Seed)))
	c.buildSprings()
	c.mesh = mesh.Build(c.cols, c.rows)
	c.corrections = make([]mgl64.Vec3, len(c.points))
	return c, nil
}

// Validate reports the first invalid option, before any allocation.
func (o Options) Validate() error {
	if !(o.Width > 0) || !(o.Height > 0) || math.IsInf(o.Width, 0) || math.IsInf(o.Height, 0) {
		return fmt.Errorf("%w: got %gx%g", ErrInvalidDimensions, o.Width, o.Height)
	}
	if o.NumWidthPoints < 1 || o.NumHeightPoints < 1 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidResolution, o.NumWidthPoints, o.NumHeightPoints)
	}
	if !(o.Thickness > 0) || math.IsInf(o.Thickness, 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidThickness, o.Thickness)
	}
	for _, p := range o.Pinned {
		if p[0] < 0 || p[0] >= o.NumWidthPoints || p[1] < 0 || p[1] >= o.NumHeightPoints {
			return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrPinOutOfRange, p[0], p[1], o.NumWidthPoints, o.NumHeightPoints)
		}
	}
	return nil
}

func (c *Cloth) buildGrid(pinned [][2]int, rng *rand.Rand) {
	pins := make(map[[2]int]bool, len(pinned))
	for _, p := range pinned {
		pins[p] = true
	}

	dw := c.width / float64(c.cols)
	dh := c.height / float64(c.rows)

	c.points = make([]PointMass, 0, c.cols*c.rows)
	for h := 0; h < c.rows; h++ {
		for w := 0; w < c.cols; w++ {
			var pos mgl64.Vec3
			if c.orientation == Horizontal {
				pos = mgl64.Vec3{float64(w) * dw, 1.0, float64(h) * dh}
			} else {
				z := rng.Float64()*2*jitter - jitter
				pos = mgl64.Vec3{float64(w) * dw, float64(h) * dh, z}
			}
			c.points = append(c.points, PointMass{
				Position:      pos,
				LastPosition:  pos,
				StartPosition: pos,
				Pinned:        pins[[2]int{w, h}],
			})
		}
	}
}

func (c *Cloth) buildSprings() {
	c.springs = make([]Spring, 0, 6*c.cols*c.rows)
	for h := 0; h < c.rows; h++ {
		for w := 0; w < c.cols; w++ {
			i := c.Index(w, h)
			if w > 0 {
				c.addSpring(c.Index(w-1, h), i, Structural)
			}
			if h > 0 {
				c.addSpring(c.Index(w, h-1), i, Structural)
			}
			if w > 0 && h > 0 {
				c.addSpring(c.Index(w-1, h-1), i, Shearing)
			}
			if h > 0 && w < c.cols-1 {
				c.addSpring(i, c.Index(w+1, h-1), Shearing)
			}
			if w > 1 {
				c.addSpring(i, c.Index(w-2, h), Bending)
			}
			if h > 1 {
				c.addSpring(i, c.Index(w, h-2), Bending)
			}
		}
	}
}

func (c *Cloth) addSpring(a, b int, kind SpringKind) {
	rest := c.points[a].Position.Sub(c.points[b].Position).Len()
	c.springs = append(c.springs, Spring{A: a, B: b, RestLength: rest, Kind: kind})
}

// Index maps a (column, row) grid coordinate to its arena index.
func (c *Cloth) Index(w, h int) int { return h*c.cols + w }

// PointMasses returns the live point-mass arena. The slice is owned by the
// cloth; its contents change on every Step.
func (c *Cloth) PointMasses() []PointMass { return c.points }

func (c *Cloth) Springs() []Spring { return c.springs }

// Mesh returns the render topology built at construction. It is never
// modified by Step or Reset.
func (c *Cloth) Mesh() *mesh.Mesh { return c.mesh }

func (c *Cloth) Resolution() (cols, rows int)  { return c.cols, c.rows }
func (c *Cloth) Size() (width, height float64) { return c.width, c.height }
func (c *Cloth) Thickness() float64            { return c.thickness }
func (c *Cloth) Orientation() Orientation      { return c.orientation }
func (c *Cloth) Steps() int                    { return c.steps }

// PointMassWeight is the uniform mass of every point mass at the given
// area density.
func (c *Cloth) PointMassWeight(density float64) float64 {
	return c.width * c.height * density / float64(c.cols) / float64(c.rows)
}

// Positions copies out the current position of every point mass.
func (c *Cloth) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(c.points))
	for i := range c.points {
		out[i] = c.points[i].Position
	}
	return out
}

// Reset returns every point mass to its rest pose. Springs and mesh are kept.
func (c *Cloth) Reset() {
	for i := range c.points {
		pm := &c.points[i]
		pm.Position = pm.StartPosition
		pm.LastPosition = pm.StartPosition
		pm.Forces = mgl64.Vec3{}
	}
	c.steps = 0
}
