package cloth

import "github.com/go-gl/mathgl/mgl64"

// accumulateForces overwrites every Forces vector with the external field
// plus the Hookean contribution of each enabled spring.
//
// Reads Position; writes Forces.
func (c *Cloth) accumulateForces(s *stepContext) {
	external := s.acceleration.Mul(s.mass)

	k := chunks(len(c.springs), c.workers)
	if k == 1 {
		for i := range c.points {
			c.points[i].Forces = external
		}
		for _, sp := range c.springs {
			if f, ok := c.springForce(sp, s.params); ok {
				c.points[sp.A].Forces = c.points[sp.A].Forces.Add(f)
				c.points[sp.B].Forces = c.points[sp.B].Forces.Sub(f)
			}
		}
		return
	}

	// Each worker writes only its own buffer; buffers are reduced after the barrier.
	c.ensureForceBufs(k)
	parallelFor(len(c.springs), c.workers, func(w, start, end int) {
		buf := c.forceBufs[w]
		for i := range buf {
			buf[i] = mgl64.Vec3{}
		}
		for _, sp := range c.springs[start:end] {
			if f, ok := c.springForce(sp, s.params); ok {
				buf[sp.A] = buf[sp.A].Add(f)
				buf[sp.B] = buf[sp.B].Sub(f)
			}
		}
	})
	parallelFor(len(c.points), c.workers, func(_, start, end int) {
		for i := start; i < end; i++ {
			f := external
			for w := 0; w < k; w++ {
				f = f.Add(c.forceBufs[w][i])
			}
			c.points[i].Forces = f
		}
	})
}

// springForce returns the force applied to A (and negated on B), or false
// when the spring's kind is disabled.
func (c *Cloth) springForce(sp Spring, p Params) (mgl64.Vec3, bool) {
	if !p.Enabled(sp.Kind) {
		return mgl64.Vec3{}, false
	}
	d := c.points[sp.B].Position.Sub(c.points[sp.A].Position)
	mag := p.Ks * (d.Len() - sp.RestLength)
	if sp.Kind == Bending {
		mag *= bendingScale
	}
	return unit(d).Mul(mag), true
}

func (c *Cloth) ensureForceBufs(k int) {
	if len(c.forceBufs) >= k && len(c.forceBufs[0]) == len(c.points) {
		return
	}
	c.forceBufs = make([][]mgl64.Vec3, k)
	for w := range c.forceBufs {
		c.forceBufs[w] = make([]mgl64.Vec3, len(c.points))
	}
}

// integrate advances every free point mass with damped Verlet.
//
// Reads Forces, Position, LastPosition; writes Position, LastPosition.
func (c *Cloth) integrate(s *stepContext) {
	keep := 1 - s.params.Damping/100
	dt2 := s.dt * s.dt
	invMass := 1 / s.mass

	parallelFor(len(c.points), c.workers, func(_, start, end int) {
		for i := start; i < end; i++ {
			pm := &c.points[i]
			if pm.Pinned {
				continue
			}
			carried := pm.Position.Sub(pm.LastPosition).Mul(keep)
			accel := pm.Forces.Mul(invMass * dt2)
			next := pm.Position.Add(carried).Add(accel)
			pm.LastPosition = pm.Position
			pm.Position = next
		}
	})
}
