package collision

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/cloth"
)

type Sphere struct {
	Origin   mgl64.Vec3
	Radius   float64
	Friction float64
}

func NewSphere(origin mgl64.Vec3, radius, friction float64) (*Sphere, error) {
	s := &Sphere{Origin: origin, Radius: radius, Friction: friction}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sphere) Validate() error {
	if !(s.Radius > 0) {
		return fmt.Errorf("%w: got %g", ErrInvalidRadius, s.Radius)
	}
	return checkFriction(s.Friction)
}

// Collide pushes a point mass inside the sphere out to the nearest surface
// point.
func (s *Sphere) Collide(pm *cloth.PointMass) {
	d := pm.Position.Sub(s.Origin)
	if d.Len() > s.Radius {
		return
	}
	dir := unit(d)
	if dir == (mgl64.Vec3{}) {
		// at the centre: leave along the way it came in
		dir = unit(pm.LastPosition.Sub(s.Origin))
		if dir == (mgl64.Vec3{}) {
			return
		}
	}
	tangent := s.Origin.Add(dir.Mul(s.Radius))
	correction := tangent.Sub(pm.LastPosition)
	pm.Position = pm.LastPosition.Add(correction.Mul(1 - s.Friction))
}

func unit(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
