package cloth

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSpatialHash_Key(t *testing.T) {
	h := BuildSpatialHash(nil, 1, 2)

	tests := []struct {
		p    mgl64.Vec3
		want CellKey
	}{
		{mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{mgl64.Vec3{0.99, 1.99, 1.99}, CellKey{0, 0, 0}},
		{mgl64.Vec3{1, 2, 2}, CellKey{1, 1, 1}},
		// cells below zero are distinct from cell zero
		{mgl64.Vec3{-0.5, -0.5, -0.5}, CellKey{-1, -1, -1}},
		{mgl64.Vec3{1e9, -1e9, 3}, CellKey{1e9, -5e8, 1}},
	}

	for _, tt := range tests {
		if got := h.Key(tt.p); got != tt.want {
			t.Errorf("Key(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestSpatialHash_Buckets(t *testing.T) {
	points := []PointMass{
		{Position: mgl64.Vec3{0.1, 0.1, 0.1}},
		{Position: mgl64.Vec3{0.2, 0.3, 0.4}},
		{Position: mgl64.Vec3{1.5, 0.1, 0.1}},
	}
	h := BuildSpatialHash(points, 1, 1)

	if h.Len() != 2 {
		t.Fatalf("expected 2 occupied cells, got %d", h.Len())
	}
	if got := h.Bucket(CellKey{0, 0, 0}); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("unexpected bucket contents %v", got)
	}
	if got := h.Bucket(CellKey{5, 5, 5}); len(got) != 0 {
		t.Errorf("expected empty bucket, got %v", got)
	}
}

// closePair builds two point masses half a thickness apart in one cell.
func closePair(t *testing.T, pinned [][2]int) *Cloth {
	t.Helper()
	return newTestCloth(t, Options{
		Width: 0.02, Height: 1, NumWidthPoints: 2, NumHeightPoints: 1,
		Thickness: 0.02, Pinned: pinned,
	})
}

func TestSelfCollide_SeparatesPair(t *testing.T) {
	c := closePair(t, nil)
	pms := c.PointMasses()
	thickness := c.Thickness()

	before := pms[0].Position.Sub(pms[1].Position).Len()
	if before >= thickness {
		t.Fatalf("setup: expected pair closer than thickness, got %g", before)
	}
	cw, ch := c.CellSize()
	h := BuildSpatialHash(pms, cw, ch)
	if h.Key(pms[0].Position) != h.Key(pms[1].Position) {
		t.Fatal("setup: pair not in the same cell")
	}

	if err := c.SelfCollide(1); err != nil {
		t.Fatalf("self collide: %v", err)
	}

	after := pms[0].Position.Sub(pms[1].Position).Len()
	if !(after > before) {
		t.Errorf("separation did not grow: %g -> %g", before, after)
	}
	if after < 2*thickness-1e-12 {
		t.Errorf("separation %g below twice the thickness %g", after, 2*thickness)
	}
}

func TestSelfCollide_SubstepsScaleCorrection(t *testing.T) {
	one := closePair(t, nil)
	ten := closePair(t, nil)

	if err := one.SelfCollide(1); err != nil {
		t.Fatal(err)
	}
	if err := ten.SelfCollide(10); err != nil {
		t.Fatal(err)
	}

	d1 := one.PointMasses()[0].Position.Sub(one.PointMasses()[0].StartPosition).Len()
	d10 := ten.PointMasses()[0].Position.Sub(ten.PointMasses()[0].StartPosition).Len()
	if d1 == 0 || d10*10-d1 > 1e-12 || d1-d10*10 > 1e-12 {
		t.Errorf("expected correction to scale with 1/substeps: %g vs %g", d1, d10)
	}
}

func TestSelfCollide_PinnedNotCorrected(t *testing.T) {
	c := closePair(t, [][2]int{{0, 0}})
	pms := c.PointMasses()
	start := pms[0].Position

	if err := c.SelfCollide(1); err != nil {
		t.Fatal(err)
	}
	if pms[0].Position != start {
		t.Errorf("pinned point mass moved to %v", pms[0].Position)
	}
	// the free one is still pushed away by the pinned obstacle
	if pms[1].Position == pms[1].StartPosition {
		t.Error("free point mass was not pushed away from pinned neighbour")
	}
}

func TestSelfCollide_ReadsSnapshot(t *testing.T) {
	c := closePair(t, nil)
	if err := c.SelfCollide(1); err != nil {
		t.Fatal(err)
	}
	pms := c.PointMasses()
	d0 := pms[0].Position.Sub(pms[0].StartPosition).Len()
	d1 := pms[1].Position.Sub(pms[1].StartPosition).Len()
	if d0-d1 > 1e-15 || d1-d0 > 1e-15 {
		t.Errorf("corrections should be symmetric, got %g and %g", d0, d1)
	}
}

func TestSelfCollide_FarApartUntouched(t *testing.T) {
	c := newTestCloth(t, Options{Width: 1, Height: 1, NumWidthPoints: 4, NumHeightPoints: 4, Thickness: 0.01})
	if err := c.SelfCollide(1); err != nil {
		t.Fatal(err)
	}
	for i, pm := range c.PointMasses() {
		if pm.Position != pm.StartPosition {
			t.Errorf("point mass %d moved without a collision", i)
		}
	}
}

func TestSelfCollide_RejectsZeroSubsteps(t *testing.T) {
	c := closePair(t, nil)
	if err := c.SelfCollide(0); err == nil {
		t.Error("expected error for zero substeps")
	}
}
