package cloth

import "golang.org/x/sync/errgroup"

// minChunk keeps tiny sheets on the calling goroutine.
const minChunk = 64

// chunks returns how many worker slices parallelFor will use for n items.
func chunks(n, workers int) int {
	if workers <= 1 || n <= minChunk {
		return 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// parallelFor runs fn over [0, n) split into contiguous ranges, one per
// worker, and returns once every range is done.
func parallelFor(n, workers int, fn func(worker, start, end int)) {
	k := chunks(n, workers)
	if k == 1 {
		fn(0, 0, n)
		return
	}

	size := (n + k - 1) / k
	var g errgroup.Group
	for w := 0; w < k; w++ {
		start := w * size
		if start >= n {
			break
		}
		end := min(start+size, n)
		g.Go(func() error {
			fn(w, start, end)
			return nil
		})
	}
	// fn has no error path, so Wait only serves as the barrier.
	_ = g.Wait()
}
