package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const near = 0.1

// Camera is an orbiting perspective camera around Target.
type Camera struct {
	Target           mgl64.Vec3
	Distance         float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

// NewCamera looks slightly down and across, so both horizontal and
// vertical sheets show depth.
func NewCamera() *Camera {
	return &Camera{Distance: 4, RotX: 0.35, RotY: -0.5, Zoom: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Frame centres the camera on points and scales them to fit.
func (c *Camera) Frame(points []mgl64.Vec3) {
	if len(points) == 0 {
		return
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	c.Target = lo.Add(hi).Mul(0.5)
	if extent := hi.Sub(lo).Len(); extent > 0 {
		c.Zoom = 1.5 / extent
	}
}

func (c *Camera) rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DX(c.RotX)).Mul3(mgl64.Rotate3DY(c.RotY))
}

// Project converts a world point to sub-pixel coordinates on a sw x sh
// surface. depth grows toward the camera. ok is false for points at or
// behind the near plane; points beside the surface still project and are
// left to the canvas to clip.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (x, y int, depth float64, ok bool) {
	rot := c.rotation().Mul3x1(p.Sub(c.Target)).Mul(c.Zoom)
	if rot.Z() >= c.Distance-near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z())
	pScale := math.Min(float64(sw), float64(sh)) / 2
	x = int(rot.X()*scale*pScale) + sw/2
	y = int(-rot.Y()*scale*pScale) + sh/2
	return x, y, rot.Z(), true
}
