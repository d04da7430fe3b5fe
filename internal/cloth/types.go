package cloth

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PointMass is one vertex of the cloth lattice.
type PointMass struct {
	Position      mgl64.Vec3
	LastPosition  mgl64.Vec3
	StartPosition mgl64.Vec3
	Forces        mgl64.Vec3
	Pinned        bool
}

// Velocity returns the displacement-implied velocity over dt.
func (pm *PointMass) Velocity(dt float64) mgl64.Vec3 {
	return pm.Position.Sub(pm.LastPosition).Mul(1 / dt)
}

type SpringKind int

const (
	Structural SpringKind = iota
	Shearing
	Bending
)

func (k SpringKind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Shearing:
		return "shearing"
	case Bending:
		return "bending"
	}
	return fmt.Sprintf("SpringKind(%d)", int(k))
}

// Spring connects point masses A and B, both indices into the cloth arena.
type Spring struct {
	A, B       int
	RestLength float64
	Kind       SpringKind
}

// bendingScale softens bending springs relative to structural and shearing.
const bendingScale = 0.2

// Params are the per-step material parameters.
type Params struct {
	Ks      float64 `yaml:"ks" toml:"ks"`
	Density float64 `yaml:"density" toml:"density"`
	// Damping is a percentage: 0 is undamped, 100 removes all carried velocity.
	Damping float64 `yaml:"damping" toml:"damping"`

	EnableStructural bool `yaml:"enable_structural" toml:"enable_structural"`
	EnableShearing   bool `yaml:"enable_shearing" toml:"enable_shearing"`
	EnableBending    bool `yaml:"enable_bending" toml:"enable_bending"`
}

func DefaultParams() Params {
	return Params{
		Ks:               5000,
		Density:          15,
		Damping:          0.2,
		EnableStructural: true,
		EnableShearing:   true,
		EnableBending:    true,
	}
}

// Enabled reports whether springs of kind contribute force.
func (p Params) Enabled(kind SpringKind) bool {
	switch kind {
	case Structural:
		return p.EnableStructural
	case Shearing:
		return p.EnableShearing
	case Bending:
		return p.EnableBending
	}
	return false
}

func (p Params) Validate() error {
	if !(p.Density > 0) || math.IsInf(p.Density, 0) {
		return fmt.Errorf("%w: density must be positive, got %g", ErrInvalidParams, p.Density)
	}
	if p.Ks < 0 || math.IsNaN(p.Ks) || math.IsInf(p.Ks, 0) {
		return fmt.Errorf("%w: ks must be non-negative, got %g", ErrInvalidParams, p.Ks)
	}
	if !(p.Damping >= 0 && p.Damping <= 100) {
		return fmt.Errorf("%w: damping must be within [0, 100], got %g", ErrInvalidParams, p.Damping)
	}
	return nil
}

type Orientation int

const (
	// Horizontal lays the sheet flat in the x/z plane at y = 1.
	Horizontal Orientation = iota
	// Vertical hangs the sheet in the x/y plane with a small random z jitter.
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseOrientation accepts "horizontal" or "vertical".
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown orientation: %s", s)
}

// unit returns v normalised, or the zero vector when v has no length.
func unit(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

func finite(v mgl64.Vec3) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
