// Package mesh builds the renderable triangle and half-edge topology of a
// regular cloth grid. It depends only on grid resolution, so a Mesh is built
// once and stays valid for the lifetime of the grid.
package mesh

import "github.com/go-gl/mathgl/mgl64"

// NoTwin marks a half-edge on the grid boundary.
const NoTwin = -1

// Triangle references three point masses by arena index, in
// counter-clockwise order, with matching texture coordinates.
type Triangle struct {
	Vertices [3]int
	UV       [3]mgl64.Vec2
	// Halfedge is the first of the triangle's three half-edges.
	Halfedge int
}

// Halfedge runs from Vertex to the Vertex of Next, inside Triangle.
type Halfedge struct {
	Vertex   int
	Next     int
	Twin     int
	Triangle int
}

// Mesh owns every triangle and half-edge of the grid. Indices are stable.
type Mesh struct {
	Cols, Rows int
	Triangles  []Triangle
	Halfedges  []Halfedge
}

// Build emits two triangles per grid cell in row-major cell order:
//
//	A ---- B
//	|    / |
//	|   /  |
//	|  /   |
//	C ---- D
//
// (A, C, B) first, then (B, C, D). Twins are paired by grid arithmetic.
func Build(cols, rows int) *Mesh {
	m := &Mesh{Cols: cols, Rows: rows}
	if cols < 2 || rows < 2 {
		return m
	}

	cw, ch := cols-1, rows-1
	m.Triangles = make([]Triangle, 0, 2*cw*ch)
	m.Halfedges = make([]Halfedge, 0, 6*cw*ch)

	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			a := y*cols + x
			b, c, d := a+1, a+cols, a+cols+1

			u0, u1 := float64(x)/float64(cw), float64(x+1)/float64(cw)
			v0, v1 := float64(y)/float64(ch), float64(y+1)/float64(ch)
			uvA, uvB := mgl64.Vec2{u0, v0}, mgl64.Vec2{u1, v0}
			uvC, uvD := mgl64.Vec2{u0, v1}, mgl64.Vec2{u1, v1}

			m.addTriangle([3]int{a, c, b}, [3]mgl64.Vec2{uvA, uvC, uvB})
			m.addTriangle([3]int{b, c, d}, [3]mgl64.Vec2{uvB, uvC, uvD})
		}
	}

	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			upper, lower := m.cellTriangles(x, y)

			// upper: 0 = left edge A->C, 1 = diagonal C->B, 2 = top edge B->A
			// lower: 0 = diagonal B->C, 1 = bottom edge C->D, 2 = right edge D->B
			m.Halfedges[3*upper+1].Twin = 3*lower + 0
			m.Halfedges[3*lower+0].Twin = 3*upper + 1

			if x > 0 {
				_, left := m.cellTriangles(x-1, y)
				m.Halfedges[3*upper+0].Twin = 3*left + 2
			}
			if y > 0 {
				_, above := m.cellTriangles(x, y-1)
				m.Halfedges[3*upper+2].Twin = 3*above + 1
			}
			if y < ch-1 {
				below, _ := m.cellTriangles(x, y+1)
				m.Halfedges[3*lower+1].Twin = 3*below + 2
			}
			if x < cw-1 {
				right, _ := m.cellTriangles(x+1, y)
				m.Halfedges[3*lower+2].Twin = 3*right + 0
			}
		}
	}
	return m
}

func (m *Mesh) addTriangle(v [3]int, uv [3]mgl64.Vec2) {
	t := len(m.Triangles)
	h := len(m.Halfedges)
	m.Triangles = append(m.Triangles, Triangle{Vertices: v, UV: uv, Halfedge: h})
	for k := 0; k < 3; k++ {
		m.Halfedges = append(m.Halfedges, Halfedge{
			Vertex:   v[k],
			Next:     h + (k+1)%3,
			Twin:     NoTwin,
			Triangle: t,
		})
	}
}

func (m *Mesh) cellTriangles(x, y int) (upper, lower int) {
	cell := y*(m.Cols-1) + x
	return 2 * cell, 2*cell + 1
}

// Normals returns the unit face normal of every triangle at the given
// vertex positions. Degenerate triangles get a zero normal.
func (m *Mesh) Normals(positions []mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(m.Triangles))
	for i, t := range m.Triangles {
		out[i] = faceNormal(positions[t.Vertices[0]], positions[t.Vertices[1]], positions[t.Vertices[2]])
	}
	return out
}

// VertexNormals averages the face normals around each vertex.
func (m *Mesh) VertexNormals(positions []mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(positions))
	for i, n := range m.Normals(positions) {
		for _, v := range m.Triangles[i].Vertices {
			out[v] = out[v].Add(n)
		}
	}
	for i, n := range out {
		if l := n.Len(); l > 0 {
			out[i] = n.Mul(1 / l)
		}
	}
	return out
}

func faceNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if l := n.Len(); l > 0 {
		return n.Mul(1 / l)
	}
	return mgl64.Vec3{}
}
