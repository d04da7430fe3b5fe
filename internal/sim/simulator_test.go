package sim_test

import (
	"context"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
)

func smallScene() *config.Scene {
	s := config.DefaultScene()
	s.Cloth.NumWidthPoints = 6
	s.Cloth.NumHeightPoints = 6
	s.Cloth.Pinned = [][2]int{{0, 5}, {5, 5}}
	s.Sim.Substeps = 4
	s.Sim.Frames = 20
	return s
}

type countingMetric struct {
	observed int
	resets   int
}

func (m *countingMetric) Name() string                      { return "count" }
func (m *countingMetric) Observe(c *cloth.Cloth, t float64) { m.observed++ }
func (m *countingMetric) Value() float64                    { return float64(m.observed) }
func (m *countingMetric) Reset()                            { m.observed = 0; m.resets++ }

var _ = Describe("Simulator", func() {
	var (
		s   *sim.Simulator
		cfg sim.Config
	)

	BeforeEach(func() {
		var err error
		s, cfg, err = sim.FromScene(smallScene())
		Expect(err).NotTo(HaveOccurred())
	})

	It("runs substeps steps per frame", func() {
		res, err := s.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Frames).To(Equal(20))
		Expect(s.Cloth().Steps()).To(Equal(20 * 4))
		Expect(res.Times).To(HaveLen(20))
		Expect(res.Times[19]).To(BeNumerically("~", 20.0/90, 1e-12))
		Expect(res.Final).To(HaveLen(36))
	})

	It("records a series per metric and a final value", func() {
		m := &countingMetric{}
		s.AddMetric(m)
		s.AddMetric(metrics.NewSag())

		res, err := s.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.resets).To(Equal(1))
		Expect(res.Series["count"]).To(HaveLen(20))
		Expect(res.Series["count"][19]).To(Equal(20.0))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 20.0))
		Expect(res.Metrics["sag"]).To(BeNumerically(">", 0))
	})

	It("notifies observers once per frame", func() {
		var frames []int
		s.AddObserver(sim.ObserverFunc(func(c *cloth.Cloth, frame int, t float64) {
			frames = append(frames, frame)
		}))

		_, err := s.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(frames).To(HaveLen(20))
		Expect(frames[0]).To(Equal(0))
		Expect(frames[19]).To(Equal(19))
	})

	It("keeps pinned point masses fixed", func() {
		_, err := s.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		for _, pm := range s.Cloth().PointMasses() {
			if pm.Pinned {
				Expect(pm.Position).To(Equal(pm.StartPosition))
			}
		}
	})

	It("stops on cancellation with a partial result", func() {
		ctx, cancel := context.WithCancel(context.Background())
		s.AddObserver(sim.ObserverFunc(func(c *cloth.Cloth, frame int, t float64) {
			if frame == 4 {
				cancel()
			}
		}))

		res, err := s.Run(ctx, cfg)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Frames).To(Equal(5))
		Expect(res.Final).To(HaveLen(36))
	})

	DescribeTable("rejects invalid configs",
		func(mutate func(*sim.Config)) {
			c := cfg
			mutate(&c)
			_, err := s.Run(context.Background(), c)
			Expect(errors.Is(err, sim.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("zero fps", func(c *sim.Config) { c.FPS = 0 }),
		Entry("infinite fps", func(c *sim.Config) { c.FPS = math.Inf(1) }),
		Entry("zero substeps", func(c *sim.Config) { c.Substeps = 0 }),
		Entry("zero frames", func(c *sim.Config) { c.Frames = 0 }),
	)

	It("reports the failing frame when the cloth goes unstable", func() {
		c, err := cloth.New(cloth.Options{Width: 1, Height: 1, NumWidthPoints: 3, NumHeightPoints: 3, Thickness: 0.01})
		Expect(err).NotTo(HaveOccurred())
		blowUp := cloth.ColliderFunc(func(pm *cloth.PointMass) {
			pm.Position = mgl64.Vec3{math.NaN(), 0, 0}
		})
		s := sim.New(c, cloth.DefaultParams(), nil, []cloth.Collider{blowUp})

		res, err := s.Run(context.Background(), sim.Config{FPS: 90, Substeps: 2, Frames: 5})
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, cloth.ErrUnstable)).To(BeTrue())

		var fe *sim.FrameError
		Expect(errors.As(err, &fe)).To(BeTrue())
		Expect(fe.Frame).To(Equal(0))
		Expect(res.Frames).To(Equal(0))
	})
})

var _ = Describe("Sweep", func() {
	It("runs each scene independently and keeps input order", func() {
		stiffness := []float64{1000, 5000, 20000}
		scenes := make([]*config.Scene, len(stiffness))
		for i, ks := range stiffness {
			scenes[i] = smallScene()
			scenes[i].Params.Ks = ks
		}

		sweep := sim.NewSweep(scenes, func(sc *config.Scene) []sim.Metric {
			return []sim.Metric{metrics.NewSag()}
		})
		sweep.SetLimit(2)
		results, err := sweep.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))

		// stiffer cloth sags less
		Expect(results[0].Metrics["sag"]).To(BeNumerically(">", results[2].Metrics["sag"]))
	})

	It("fails fast on an invalid scene", func() {
		bad := smallScene()
		bad.Sim.Frames = 0
		_, err := sim.NewSweep([]*config.Scene{smallScene(), bad}, nil).Run(context.Background())
		Expect(err).To(HaveOccurred())
	})
})
