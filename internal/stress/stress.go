// Package stress drives concurrent acquire/release workloads against a
// semaphore.Semaphore, used by this module's own test suite to check the
// unit-conservation invariant (spec property P1) under real goroutine
// contention rather than only under single-goroutine sequencing.
package stress

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fiberflow/semaphore"
)

// Run spawns workers goroutines, each repeatedly acquiring n units from sem,
// calling work, and releasing them, iters times. It returns the first error
// encountered by any worker, if any.
func Run(ctx context.Context, sem *semaphore.Semaphore, workers, itersPerWorker int, n int64, work func()) error {
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < itersPerWorker; i++ {
				u, err := sem.Acquire(ctx, n)
				if err != nil {
					return err
				}
				if work != nil {
					work()
				}
				if err := u.Close(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
