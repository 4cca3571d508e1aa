// Package semaphore provides an asynchronous, cancellable counting semaphore
// for goroutine-based concurrency limiting.
//
// # Why This Package Exists
//
// A plain buffered channel makes a perfectly good semaphore until you need
// any of three things at once: a caller that can give up on a timeout or a
// context cancellation while it waits, a token that is returned automatically
// no matter how its holder exits, or a way to permanently shut the semaphore
// down and fail every waiter - current and future - with a single error. This
// package adds all three without giving up the FIFO fairness a channel-based
// semaphore already has.
//
// # FIFO and Head-of-Line Blocking
//
// Waiters are granted strictly in arrival order. A waiter requesting many
// units blocks every waiter behind it, even ones requesting fewer units than
// are currently available. This is deliberate: it prevents large requests
// from starving under a stream of small ones. See [Semaphore.Signal].
//
// # Units and Ownership
//
// Acquire returns a [Units] handle representing the units held. Units must be
// released exactly once, typically via a deferred [Units.Close]:
//
//	u, err := sem.Acquire(ctx, 3)
//	if err != nil {
//	    return err
//	}
//	defer u.Close()
//
// Units handles compose: [Units.Split] peels off a sub-handle, and
// [Units.Adopt] merges one handle's remaining units into another.
//
// # Broken Semaphores
//
// [Semaphore.Broken] permanently fails the semaphore: every queued waiter is
// resolved with the broken error, and all current and future Wait/Acquire
// calls fail immediately. This is useful for propagating a fatal error (a
// stopped worker pool, a closed resource) to every caller still waiting on
// it, rather than leaving them to time out one by one.
//
// # When NOT to Use This Package
//
//   - Fixed, uncancellable concurrency limits: a raw buffered channel is
//     simpler and sufficient.
//   - Weighted limits without FIFO head-of-line blocking or a Units handle:
//     see golang.org/x/sync/semaphore.
//   - Reentrant locking, priority scheduling, or work stealing between
//     semaphores: out of scope here; write a tailored primitive instead.
//
// # Relationship to Other Packages
//
// This package's own tests orchestrate many goroutines around a Semaphore
// using golang.org/x/sync/errgroup; see the internal/stress package.
package semaphore
