package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// MaxStretch tracks the largest length/rest ratio of any spring. After
// relaxation this stays at or below 1.1 unless pins hold a spring apart.
type MaxStretch struct {
	name    string
	current float64
	peak    float64
}

func NewMaxStretch() *MaxStretch {
	return &MaxStretch{name: "max_stretch"}
}

func (s *MaxStretch) Name() string { return s.name }

func (s *MaxStretch) Observe(c *cloth.Cloth, t float64) {
	pms := c.PointMasses()
	s.current = 0
	for _, sp := range c.Springs() {
		if sp.RestLength == 0 {
			continue
		}
		l := pms[sp.A].Position.Sub(pms[sp.B].Position).Len()
		s.current = math.Max(s.current, l/sp.RestLength)
	}
	s.peak = math.Max(s.peak, s.current)
}

func (s *MaxStretch) Value() float64 { return s.peak }

// Current is the ratio at the last observed frame.
func (s *MaxStretch) Current() float64 { return s.current }

func (s *MaxStretch) Reset() {
	s.current = 0
	s.peak = 0
}
