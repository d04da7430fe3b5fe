package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Times: []float64{1.0 / 90, 2.0 / 90},
		Series: map[string][]float64{
			"sag":         {0.01, 0.025},
			"max_stretch": {1.02, 1.1},
		},
		Metrics: map[string]float64{"sag": 0.025, "max_stretch": 1.1},
		Frames:  2,
		Final:   []mgl64.Vec3{{0, 1, 0}, {0.5, 0.75, -0.001}},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	scene := config.GetPreset("sphere")
	runID, err := st.Save(scene, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "sphere" {
		t.Errorf("expected scene 'sphere', got '%s'", meta.Scene)
	}
	if meta.Frames != 2 || meta.Substeps != scene.Sim.Substeps {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Params != scene.Params {
		t.Errorf("params not preserved: %+v", meta.Params)
	}
	if meta.Metrics["sag"] != 0.025 {
		t.Errorf("expected sag 0.025, got %f", meta.Metrics["sag"])
	}

	times, series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(times) != 2 {
		t.Errorf("expected 2 times, got %d", len(times))
	}
	if got := series["max_stretch"]; len(got) != 2 || got[1] != 1.1 {
		t.Errorf("unexpected series %v", got)
	}

	pos, err := st.LoadPositions(runID)
	if err != nil {
		t.Fatalf("load positions failed: %v", err)
	}
	if len(pos) != 2 || pos[1] != (mgl64.Vec3{0.5, 0.75, -0.001}) {
		t.Errorf("unexpected positions %v", pos)
	}

	loaded, err := st.LoadScene(runID)
	if err != nil {
		t.Fatalf("load scene failed: %v", err)
	}
	if len(loaded.Colliders) != 1 || loaded.Colliders[0] != scene.Colliders[0] {
		t.Errorf("scene not preserved: %+v", loaded.Colliders)
	}
}

func TestStoreSave_UniqueIDs(t *testing.T) {
	st := New(t.TempDir())
	scene := config.DefaultScene()

	a, err := st.Save(scene, testResult())
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save(scene, testResult())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two saves share id %s", a)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(config.DefaultScene(), testResult()); err != nil {
		t.Fatal(err)
	}
	// stray directories without metadata are skipped
	os.MkdirAll(filepath.Join(dir, "junk"), 0755)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, config.DefaultScene(), testResult()); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Frames != 2 || len(got.Final) != 2 || got.Final[1][1] != 0.75 {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestExportMesh(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportMesh(&buf, mesh.Build(3, 3), nil); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Triangles []mesh.Triangle
		Halfedges []mesh.Halfedge
		Positions [][3]float64
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Triangles) != 8 || len(got.Halfedges) != 24 {
		t.Errorf("expected 8 triangles and 24 halfedges, got %d and %d", len(got.Triangles), len(got.Halfedges))
	}
	if got.Positions != nil {
		t.Error("expected no positions without a pose")
	}
}

func TestExportMesh_WithPose(t *testing.T) {
	// flat 2x2 sheet at y=1, wound so the normals face +y
	positions := []mgl64.Vec3{
		{0, 1, 0}, {1, 1, 0},
		{0, 1, 1}, {1, 1, 1},
	}
	var buf bytes.Buffer
	if err := ExportMesh(&buf, mesh.Build(2, 2), positions); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Positions [][3]float64
		Normals   [][3]float64
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Positions) != 4 || got.Positions[3] != [3]float64{1, 1, 1} {
		t.Errorf("unexpected positions %v", got.Positions)
	}
	if len(got.Normals) != 4 {
		t.Fatalf("expected 4 normals, got %d", len(got.Normals))
	}
	for i, n := range got.Normals {
		if !mgl64.Vec3(n).ApproxEqual(mgl64.Vec3{0, 1, 0}) {
			t.Errorf("vertex %d: expected +y normal, got %v", i, n)
		}
	}
}
