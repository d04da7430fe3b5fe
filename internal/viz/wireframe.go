package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/collision"
)

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe               { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p mgl64.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }
func (w *Wireframe) Merge(o *Wireframe)      { w.Edges = append(w.Edges, o.Edges...) }

// ClothWireframe draws every spring of the given kinds, structural only
// when none are given, plus a point at each pinned point mass.
func ClothWireframe(c *cloth.Cloth, kinds ...cloth.SpringKind) *Wireframe {
	if len(kinds) == 0 {
		kinds = []cloth.SpringKind{cloth.Structural}
	}
	var want [3]bool
	for _, k := range kinds {
		if int(k) < len(want) {
			want[k] = true
		}
	}

	w := NewWireframe()
	pms := c.PointMasses()
	for _, sp := range c.Springs() {
		if want[sp.Kind] {
			w.AddEdge(pms[sp.A].Position, pms[sp.B].Position)
		}
	}
	for _, pm := range pms {
		if pm.Pinned {
			w.AddPoint(pm.Position)
		}
	}
	return w
}

const circleSegments = 24

// ColliderWireframe outlines spheres with three great circles and planes
// with a square patch of the given half-size around their point.
// Unknown collider types are skipped.
func ColliderWireframe(colliders []cloth.Collider, planeHalfSize float64) *Wireframe {
	w := NewWireframe()
	for _, col := range colliders {
		switch c := col.(type) {
		case *collision.Sphere:
			axes := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
			for k := 0; k < 3; k++ {
				addCircle(w, c.Origin, axes[k], axes[(k+1)%3], c.Radius)
			}
		case *collision.Plane:
			addPatch(w, c.Point, c.Normal, planeHalfSize)
		}
	}
	return w
}

func addCircle(w *Wireframe, center, u, v mgl64.Vec3, r float64) {
	prev := center.Add(u.Mul(r))
	for i := 1; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		next := center.Add(u.Mul(r * math.Cos(a))).Add(v.Mul(r * math.Sin(a)))
		w.AddEdge(prev, next)
		prev = next
	}
}

func addPatch(w *Wireframe, center, normal mgl64.Vec3, half float64) {
	n := normal.Normalize()
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.Dot(ref)) > 0.9 {
		ref = mgl64.Vec3{0, 0, 1}
	}
	a := n.Cross(ref).Normalize().Mul(half)
	b := n.Cross(a)

	const lines = 4
	for i := 0; i <= lines; i++ {
		f := 2*float64(i)/lines - 1
		w.AddEdge(center.Add(a.Mul(f)).Sub(b), center.Add(a.Mul(f)).Add(b))
		w.AddEdge(center.Add(b.Mul(f)).Sub(a), center.Add(b.Mul(f)).Add(a))
	}
}

// Render3D draws the wireframe through the canvas depth buffer. An edge
// with an endpoint at or behind the camera's near plane is dropped rather
// than projected through it.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Dots()
	for _, e := range w.Edges {
		x1, y1, d1, ok1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, ok2 := cam.Project(e.End, sw, sh)
		if !ok1 || !ok2 {
			continue
		}
		c.Line(x1, y1, d1, x2, y2, d2)
	}
}

// SceneWireframe is the cloth plus its colliders, with plane patches sized
// to the sheet.
func SceneWireframe(c *cloth.Cloth, colliders []cloth.Collider, kinds ...cloth.SpringKind) *Wireframe {
	w := ClothWireframe(c, kinds...)
	width, height := c.Size()
	w.Merge(ColliderWireframe(colliders, 0.75*max(width, height)))
	return w
}

// Snapshot renders the cloth and its colliders onto a fresh canvas framed
// around the cloth.
func Snapshot(c *cloth.Cloth, colliders []cloth.Collider, cam *Camera, width, height int) *Canvas {
	canvas := NewCanvas(width, height)
	if cam == nil {
		cam = NewCamera()
		cam.Frame(c.Positions())
	}
	Render3D(canvas, SceneWireframe(c, colliders), cam)
	return canvas
}
