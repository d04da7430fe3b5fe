package cloth

// Collider is a rigid obstacle. Collide inspects the point mass's current
// and previous position and moves it out of the obstacle if it penetrates;
// otherwise it leaves the point mass untouched. It must not fail.
type Collider interface {
	Collide(pm *PointMass)
}

// ColliderFunc adapts a plain function to Collider.
type ColliderFunc func(pm *PointMass)

func (f ColliderFunc) Collide(pm *PointMass) { f(pm) }

// collide applies every collider to every point mass, after self-collision
// so rigid obstacles have the last word before relaxation.
//
// Reads Position, LastPosition; writes Position of unpinned point masses.
func (c *Cloth) collide(s *stepContext) {
	if len(s.colliders) == 0 {
		return
	}
	for i := range c.points {
		if c.points[i].Pinned {
			continue
		}
		for _, col := range s.colliders {
			col.Collide(&c.points[i])
		}
	}
}
