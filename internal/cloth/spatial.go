package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CellKey identifies one axis-aligned cell of a SpatialHash.
type CellKey struct {
	X, Y, Z int64
}

// SpatialHash buckets point-mass indices by the cell containing them. It is
// rebuilt from scratch every step and never updated incrementally.
type SpatialHash struct {
	cell    mgl64.Vec3
	buckets map[CellKey][]int
}

// BuildSpatialHash buckets every point mass into cells of cellW x cellH,
// with depth max(cellW, cellH).
func BuildSpatialHash(points []PointMass, cellW, cellH float64) SpatialHash {
	h := SpatialHash{
		cell:    mgl64.Vec3{cellW, cellH, math.Max(cellW, cellH)},
		buckets: make(map[CellKey][]int, len(points)/4+1),
	}
	for i := range points {
		k := h.Key(points[i].Position)
		h.buckets[k] = append(h.buckets[k], i)
	}
	return h
}

func (h SpatialHash) Key(p mgl64.Vec3) CellKey {
	return CellKey{
		X: int64(math.Floor(p[0] / h.cell[0])),
		Y: int64(math.Floor(p[1] / h.cell[1])),
		Z: int64(math.Floor(p[2] / h.cell[2])),
	}
}

// Bucket returns the indices sharing the cell at key. Callers must not
// modify the returned slice.
func (h SpatialHash) Bucket(k CellKey) []int { return h.buckets[k] }

// Len is the number of occupied cells.
func (h SpatialHash) Len() int { return len(h.buckets) }

// CellSize returns the hash cell extent used by self-collision: three grid
// spacings in width and height, and the larger of those in depth.
func (c *Cloth) CellSize() (w, h float64) {
	return 3 * c.width / float64(c.cols), 3 * c.height / float64(c.rows)
}

// selfCollide pushes apart point masses closer than twice the thickness.
//
// Builds the hash and computes every correction from positions as they were
// at the start of the phase, then commits them after a barrier. Reads
// Position; writes Position of unpinned point masses.
func (c *Cloth) selfCollide(s *stepContext) {
	cw, ch := c.CellSize()
	hash := BuildSpatialHash(c.points, cw, ch)

	minDist := 2 * c.thickness
	scale := 1 / float64(s.substeps)

	parallelFor(len(c.points), c.workers, func(_, start, end int) {
		for i := start; i < end; i++ {
			c.corrections[i] = mgl64.Vec3{}
			pm := &c.points[i]
			if pm.Pinned {
				continue
			}
			var sum mgl64.Vec3
			n := 0
			for _, j := range hash.Bucket(hash.Key(pm.Position)) {
				if j == i {
					continue
				}
				d := pm.Position.Sub(c.points[j].Position)
				dist := d.Len()
				if dist < minDist {
					sum = sum.Add(unit(d).Mul(minDist - dist))
					n++
				}
			}
			if n > 0 {
				c.corrections[i] = sum.Mul(scale / float64(n))
			}
		}
	})

	for i := range c.points {
		c.points[i].Position = c.points[i].Position.Add(c.corrections[i])
	}
}

// SelfCollide runs only the self-collision phase, as Step would with the
// given substep count.
func (c *Cloth) SelfCollide(substeps int) error {
	if substeps <= 0 {
		return ErrInvalidTimestep
	}
	c.selfCollide(&stepContext{substeps: substeps})
	return nil
}
