package metrics

import "github.com/san-kum/clothsim/internal/cloth"

// Sag is the mean drop in y of the unpinned point masses below their rest
// pose. Pinned point masses never move, so they are left out of the mean.
type Sag struct {
	name  string
	value float64
}

func NewSag() *Sag {
	return &Sag{name: "sag"}
}

func (s *Sag) Name() string { return s.name }

func (s *Sag) Observe(c *cloth.Cloth, t float64) {
	sum := 0.0
	n := 0
	for _, pm := range c.PointMasses() {
		if pm.Pinned {
			continue
		}
		sum += pm.StartPosition.Y() - pm.Position.Y()
		n++
	}
	if n == 0 {
		s.value = 0
		return
	}
	s.value = sum / float64(n)
}

func (s *Sag) Value() float64 { return s.value }

func (s *Sag) Reset() { s.value = 0 }
