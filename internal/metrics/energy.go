package metrics

import "github.com/san-kum/clothsim/internal/cloth"

// KineticEnergy is the kinetic energy of the most recent frame, with each
// velocity taken as the last substep's displacement over dt.
type KineticEnergy struct {
	name    string
	density float64
	dt      float64
	energy  float64
	peak    float64
}

func NewKineticEnergy(density, dt float64) *KineticEnergy {
	return &KineticEnergy{
		name:    "kinetic_energy",
		density: density,
		dt:      dt,
	}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(c *cloth.Cloth, t float64) {
	m := c.PointMassWeight(k.density)
	sum := 0.0
	for i := range c.PointMasses() {
		v := c.PointMasses()[i].Velocity(k.dt)
		sum += v.Dot(v)
	}
	k.energy = 0.5 * m * sum
	if k.energy > k.peak {
		k.peak = k.energy
	}
}

func (k *KineticEnergy) Value() float64 { return k.energy }

// Peak is the largest energy seen since Reset.
func (k *KineticEnergy) Peak() float64 { return k.peak }

func (k *KineticEnergy) Reset() {
	k.energy = 0
	k.peak = 0
}
