package semaphore

import "time"

// Clock provides the current time to a Semaphore's deadline-based waits.
//
// A Semaphore built by [New] uses a real wall-clock Clock unless another is
// supplied via [WithClock]. The Clock is read when a deadline-bound wait
// starts: to fail an already-expired deadline at once, and to compute how
// long a queued wait may last. The queued wait itself is timed by a real
// timer, so advancing a custom Clock does not expire a wait already queued.
type Clock interface {
	Now() time.Time
}

// realClock is the default Clock, backed by time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
