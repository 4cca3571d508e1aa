package semaphore

import (
	"fmt"
	"sync"
)

// Units is an RAII-style handle representing units held from a [Semaphore].
// It is returned by [Semaphore.Acquire] and the free functions built on it.
//
// A Units handle must be disposed of exactly once, normally via a deferred
// [Units.Close]. A Units that still holds units when it is garbage collected
// without being closed leaks them permanently - the Semaphore has no way to
// notice a handle was dropped on the floor.
//
// Units is safe for concurrent use, mirroring the Semaphore it is issued by.
type Units struct {
	mu     sync.Mutex
	sem    *Semaphore
	n      int64
	closed bool
}

func newUnits(sem *Semaphore, n int64) *Units {
	return &Units{sem: sem, n: n}
}

// Count returns the number of units currently held by this handle.
func (u *Units) Count() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.n
}

// IsEngaged reports whether this handle still holds any units.
func (u *Units) IsEngaged() bool {
	return u.Count() > 0
}

// ReturnUnits gives k units back to the semaphore, reducing the handle's
// held count by k. It fails with [ErrInvalidArgument] if k exceeds the
// handle's current count. It returns the number of units still held after
// the return.
func (u *Units) ReturnUnits(k int64) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if k > u.n {
		return u.n, fmt.Errorf("return %d units: only %d held: %w", k, u.n, ErrInvalidArgument)
	}
	u.n -= k
	u.sem.Signal(k)
	return u.n, nil
}

// ReturnAll returns every unit this handle holds and reports how many were
// returned. On a broken semaphore this still zeroes the handle, but the
// underlying Signal is a silent no-op - the units are simply discarded.
func (u *Units) ReturnAll() int64 {
	u.mu.Lock()
	n := u.n
	u.n = 0
	u.mu.Unlock()
	if n > 0 {
		u.sem.Signal(n)
	}
	return n
}

// Release transfers ownership of all held units to the caller without
// signalling the semaphore, zeroing the handle. The caller becomes
// responsible for eventually calling Signal on the semaphore with the
// returned count.
func (u *Units) Release() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := u.n
	u.n = 0
	return n
}

// Split carves k units off this handle into a new, independent Units bound
// to the same semaphore. It fails with [ErrInvalidArgument] if k exceeds the
// handle's current count.
func (u *Units) Split(k int64) (*Units, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if k > u.n {
		return nil, fmt.Errorf("split %d units: only %d held: %w", k, u.n, ErrInvalidArgument)
	}
	u.n -= k
	return newUnits(u.sem, k), nil
}

// Adopt merges other's remaining units into u, leaving other empty. Adopting
// across two different semaphores is a programmer error, not a recoverable
// condition - it is caught by assertion, not returned as an error.
func (u *Units) Adopt(other *Units) {
	if other.sem != u.sem {
		panic("semaphore: Adopt across different semaphores")
	}
	taken := other.Release()
	u.mu.Lock()
	u.n += taken
	u.mu.Unlock()
}

// GetException returns the semaphore's stored broken error if the
// semaphore backing this handle has been broken, or nil otherwise. This
// lets a caller distinguish "units silently discarded because the semaphore
// is broken" from a normal return, without requiring it.
func (u *Units) GetException() error {
	return u.sem.brokenErr()
}

// Close returns any units still held back to the semaphore. It is safe to
// call more than once; calls after the first are no-ops. Close never
// returns a non-nil error - it exists to satisfy io.Closer and to give
// callers a conventional defer target.
func (u *Units) Close() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil
	}
	u.closed = true
	n := u.n
	u.n = 0
	u.mu.Unlock()
	if n > 0 {
		u.sem.Signal(n)
	}
	return nil
}
