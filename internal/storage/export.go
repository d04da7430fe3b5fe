package storage

import (
	"encoding/json"
	"io"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/sim"
)

type ExportData struct {
	Scene    string               `json:"scene"`
	FPS      float64              `json:"fps"`
	Substeps int                  `json:"substeps"`
	Frames   int                  `json:"frames"`
	Times    []float64            `json:"times"`
	Series   map[string][]float64 `json:"series"`
	Metrics  map[string]float64   `json:"metrics"`
	Final    [][3]float64         `json:"final"`
}

// ExportJSON writes a whole run as one JSON document.
func ExportJSON(w io.Writer, scene *config.Scene, result *sim.Result) error {
	data := ExportData{
		Scene:    scene.Name,
		FPS:      scene.Sim.FPS,
		Substeps: scene.Sim.Substeps,
		Frames:   result.Frames,
		Times:    result.Times,
		Series:   result.Series,
		Metrics:  result.Metrics,
		Final:    make([][3]float64, len(result.Final)),
	}
	for i, p := range result.Final {
		data.Final[i] = p
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

type meshExport struct {
	Cols      int             `json:"cols"`
	Rows      int             `json:"rows"`
	Triangles []mesh.Triangle `json:"triangles"`
	Halfedges []mesh.Halfedge `json:"halfedges"`
	Positions [][3]float64    `json:"positions,omitempty"`
	Normals   [][3]float64    `json:"normals,omitempty"`
}

// ExportMesh writes the triangle and half-edge arenas of m. With positions,
// one per vertex, it also writes them and the
// averaged vertex normals.
func ExportMesh(w io.Writer, m *mesh.Mesh, positions []mgl64.Vec3) error {
	out := meshExport{
		Cols:      m.Cols,
		Rows:      m.Rows,
		Triangles: m.Triangles,
		Halfedges: m.Halfedges,
	}
	if len(positions) > 0 {
		out.Positions = make([][3]float64, len(positions))
		for i, p := range positions {
			out.Positions[i] = p
		}
		normals := m.VertexNormals(positions)
		out.Normals = make([][3]float64, len(normals))
		for i, n := range normals {
			out.Normals[i] = n
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
