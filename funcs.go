package semaphore

import (
	"context"
	"time"
)

// Acquire is a thin wrapper over sem.Acquire, provided so call sites that
// pass a *Semaphore around (rather than holding a local variable) read
// naturally as package-level verbs alongside the Semaphore's own methods.
func Acquire(sem *Semaphore, ctx context.Context, n int64) (*Units, error) {
	return sem.Acquire(ctx, n)
}

// AcquireTimeout wraps sem.AcquireTimeout.
func AcquireTimeout(sem *Semaphore, ctx context.Context, n int64, d time.Duration) (*Units, error) {
	return sem.AcquireTimeout(ctx, n, d)
}

// TryAcquire attempts sem.TryWait(n) and, on success, wraps the n units in a
// Units handle. It reports ok == false without acquiring anything if the
// semaphore cannot satisfy the request immediately.
func TryAcquire(sem *Semaphore, n int64) (units *Units, ok bool) {
	if !sem.TryWait(n) {
		return nil, false
	}
	return newUnits(sem, n), true
}

// ConsumeInto charges n units against sem via Consume and returns a Units
// handle for them, letting a caller track and eventually release a debt the
// same way it would track a normal acquisition.
func ConsumeInto(sem *Semaphore, n int64) *Units {
	sem.Consume(n)
	return newUnits(sem, n)
}

// WithSemaphore acquires n units from sem, runs fn, and releases the units
// on every exit path - including a panic inside fn, which is re-panicked
// after the units are returned.
func WithSemaphore[R any](sem *Semaphore, ctx context.Context, n int64, fn func() (R, error)) (R, error) {
	u, err := sem.Acquire(ctx, n)
	if err != nil {
		var zero R
		return zero, err
	}
	defer u.Close()
	return fn()
}
