package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/gomega"
)

func TestBuild_Counts(t *testing.T) {
	tests := []struct {
		cols, rows int
		triangles  int
	}{
		{1, 1, 0},
		{2, 1, 0},
		{2, 2, 2},
		{3, 2, 4},
		{4, 5, 24},
	}

	for _, tt := range tests {
		m := Build(tt.cols, tt.rows)
		if len(m.Triangles) != tt.triangles {
			t.Errorf("%dx%d: expected %d triangles, got %d", tt.cols, tt.rows, tt.triangles, len(m.Triangles))
		}
		if len(m.Halfedges) != 3*tt.triangles {
			t.Errorf("%dx%d: expected %d halfedges, got %d", tt.cols, tt.rows, 3*tt.triangles, len(m.Halfedges))
		}
	}
}

func TestBuild_TwinsAreSymmetric(t *testing.T) {
	g := NewWithT(t)
	m := Build(5, 4)

	boundary := 0
	for i, h := range m.Halfedges {
		if h.Twin == NoTwin {
			boundary++
			continue
		}
		twin := m.Halfedges[h.Twin]
		g.Expect(twin.Twin).To(Equal(i), "twin of twin")
		g.Expect(twin.Triangle).NotTo(Equal(h.Triangle))

		// a twin runs the same edge in the opposite direction
		g.Expect(twin.Vertex).To(Equal(m.Halfedges[h.Next].Vertex))
		g.Expect(m.Halfedges[twin.Next].Vertex).To(Equal(h.Vertex))
	}

	// perimeter of a 4x3 cell grid
	g.Expect(boundary).To(Equal(2 * (4 + 3)))
}

func TestBuild_NextCycles(t *testing.T) {
	g := NewWithT(t)
	m := Build(3, 3)

	for ti, tri := range m.Triangles {
		h := tri.Halfedge
		for k := 0; k < 3; k++ {
			g.Expect(m.Halfedges[h].Triangle).To(Equal(ti))
			g.Expect(m.Halfedges[h].Vertex).To(Equal(tri.Vertices[k]))
			h = m.Halfedges[h].Next
		}
		g.Expect(h).To(Equal(tri.Halfedge))
	}
}

func TestBuild_FirstCell(t *testing.T) {
	g := NewWithT(t)
	m := Build(3, 2)

	g.Expect(m.Triangles[0].Vertices).To(Equal([3]int{0, 3, 1}))
	g.Expect(m.Triangles[1].Vertices).To(Equal([3]int{1, 3, 4}))
	g.Expect(m.Triangles[0].UV[0]).To(Equal(mgl64.Vec2{0, 0}))
	g.Expect(m.Triangles[1].UV[2]).To(Equal(mgl64.Vec2{0.5, 1}))
}

func TestNormals_FlatSheetFacesUp(t *testing.T) {
	m := Build(2, 2)
	positions := []mgl64.Vec3{
		{0, 1, 0}, {1, 1, 0},
		{0, 1, 1}, {1, 1, 1},
	}

	for i, n := range m.Normals(positions) {
		if !n.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
			t.Errorf("triangle %d: expected +y normal, got %v", i, n)
		}
	}
	for i, n := range m.VertexNormals(positions) {
		if !n.ApproxEqual(mgl64.Vec3{0, 1, 0}) {
			t.Errorf("vertex %d: expected +y normal, got %v", i, n)
		}
	}
}

func TestNormals_Degenerate(t *testing.T) {
	m := Build(2, 2)
	positions := make([]mgl64.Vec3, 4)

	for _, n := range m.Normals(positions) {
		if n != (mgl64.Vec3{}) {
			t.Errorf("expected zero normal for collapsed triangle, got %v", n)
		}
	}
}
