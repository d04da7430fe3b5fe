package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/clothsim/internal/config"
)

// Sweep runs independent scenes concurrently. Each scene gets its own
// cloth and, through newMetrics, its own metric instances.
type Sweep struct {
	scenes     []*config.Scene
	newMetrics func(*config.Scene) []Metric
	limit      int
}

func NewSweep(scenes []*config.Scene, newMetrics func(*config.Scene) []Metric) *Sweep {
	return &Sweep{scenes: scenes, newMetrics: newMetrics}
}

// SetLimit caps the number of scenes run at once. n <= 0 means no limit.
func (w *Sweep) SetLimit(n int) { w.limit = n }

// Run returns one result per scene, in input order. The first failure
// cancels the remaining runs.
func (w *Sweep) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(w.scenes))

	g, ctx := errgroup.WithContext(ctx)
	if w.limit > 0 {
		g.SetLimit(w.limit)
	}
	for i, scene := range w.scenes {
		g.Go(func() error {
			s, cfg, err := FromScene(scene)
			if err != nil {
				return err
			}
			if w.newMetrics != nil {
				for _, m := range w.newMetrics(scene) {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
