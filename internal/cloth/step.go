package cloth

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// stepContext carries the values every phase of one step agrees on.
type stepContext struct {
	params       Params
	dt           float64
	substeps     int
	mass         float64
	acceleration mgl64.Vec3
	colliders    []Collider
}

type phase struct {
	name string
	run  func(c *Cloth, s *stepContext)
}

// pipeline is the fixed phase order of a step. Each phase completes for
// every point mass before the next begins.
var pipeline = []phase{
	{"forces", (*Cloth).accumulateForces},
	{"integrate", (*Cloth).integrate},
	{"self-collide", (*Cloth).selfCollide},
	{"collide", (*Cloth).collide},
	{"relax", (*Cloth).relax},
}

// PhaseNames lists the step phases in execution order.
func PhaseNames() []string {
	names := make([]string, len(pipeline))
	for i, p := range pipeline {
		names[i] = p.name
	}
	return names
}

// Step advances the cloth by one substep of 1/(fps*substeps) seconds.
// Preconditions are checked before any state changes; a non-finite result
// is reported as ErrUnstable wrapped in a StepError.
func (c *Cloth) Step(fps float64, substeps int, p Params, accelerations []mgl64.Vec3, colliders []Collider) error {
	if !(fps > 0) || math.IsInf(fps, 0) || substeps <= 0 {
		return fmt.Errorf("%w: fps=%g substeps=%d", ErrInvalidTimestep, fps, substeps)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	var total mgl64.Vec3
	for i, a := range accelerations {
		if !finite(a) {
			return fmt.Errorf("%w: acceleration %d is %v", ErrInvalidParams, i, a)
		}
		total = total.Add(a)
	}
	if !finite(total) {
		return fmt.Errorf("%w: accelerations overflow to %v", ErrInvalidParams, total)
	}

	s := &stepContext{
		params:       p,
		dt:           1 / (fps * float64(substeps)),
		substeps:     substeps,
		mass:         c.PointMassWeight(p.Density),
		acceleration: total,
		colliders:    colliders,
	}
	for _, ph := range pipeline {
		ph.run(c, s)
	}
	c.steps++

	for i := range c.points {
		if !finite(c.points[i].Position) {
			return &StepError{Step: c.steps, Wrapped: fmt.Errorf("%w: point mass %d", ErrUnstable, i)}
		}
	}
	return nil
}
