// Package cloth simulates a rectangular sheet of cloth as a mass-spring network.
//
// The sheet is a fixed arena of [PointMass] values laid out row-major on a
// regular lattice, connected by three families of [Spring]:
//
//   - [Structural]: direct left and up neighbours, resisting stretch
//   - [Shearing]: diagonal neighbours, resisting shear
//   - [Bending]: neighbours two cells away, resisting folds
//
// Springs refer to point masses by arena index, so the arena may be copied or
// inspected freely without dangling references.
//
// # Stepping
//
// Each call to [Cloth.Step] advances one substep through a fixed pipeline:
//
//	forces -> integrate -> self-collide -> collide -> relax
//
// Forces are Hookean, integration is damped Verlet, self-collision uses a
// uniform spatial hash rebuilt every step, external [Collider] values are
// applied after self-collision, and finally every spring is clamped to 110%
// of its rest length.
//
// # Example
//
//	c, err := cloth.New(cloth.Options{
//	    Width: 1, Height: 1,
//	    NumWidthPoints: 32, NumHeightPoints: 32,
//	    Thickness:   0.01,
//	    Orientation: cloth.Vertical,
//	    Pinned:      [][2]int{{0, 31}, {31, 31}},
//	})
//	gravity := []mgl64.Vec3{{0, -9.8, 0}}
//	err = c.Step(90, 30, cloth.DefaultParams(), gravity, nil)
//
// # Thread Safety
//
// A Cloth is NOT safe for concurrent use. Setting [Options.Workers] above one
// parallelises the force, integration and self-collision phases internally,
// but Step itself must not be called concurrently.
package cloth
