package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/cloth"
)

// SurfaceOffset keeps a corrected point mass strictly on the side it came
// from, so the next step does not register a crossing again.
const SurfaceOffset = 1e-4

// Plane is an infinite two-sided plane through Point.
type Plane struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Friction float64
}

// NewPlane normalizes normal.
func NewPlane(point, normal mgl64.Vec3, friction float64) (*Plane, error) {
	p := &Plane{Point: point, Normal: unit(normal), Friction: friction}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plane) Validate() error {
	if p.Normal.Len() == 0 {
		return ErrInvalidNormal
	}
	return checkFriction(p.Friction)
}

// Collide catches a point mass whose last step crossed the plane and puts
// it back just short of the surface, on the side it started from.
func (p *Plane) Collide(pm *cloth.PointMass) {
	n := unit(p.Normal)
	if n == (mgl64.Vec3{}) {
		return
	}
	last := pm.LastPosition.Sub(p.Point).Dot(n)
	cur := pm.Position.Sub(p.Point).Dot(n)
	if (last >= 0) == (cur >= 0) {
		return
	}

	side := 1.0
	if last < 0 {
		side = -1
	}
	tangent := pm.Position.Sub(n.Mul(cur))
	correction := tangent.Sub(pm.LastPosition).Add(n.Mul(SurfaceOffset * side))
	pm.Position = pm.LastPosition.Add(correction.Mul(1 - p.Friction))
}
