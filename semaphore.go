package semaphore

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// MaxCounter is the largest value Semaphore's internal counter can hold.
// Callers are responsible for never constructing or signalling a semaphore
// past this bound.
const MaxCounter = math.MaxInt64

// Semaphore is a FIFO, cancellable, closeable counting semaphore.
//
// The zero value is not ready to use; construct one with [New]. A Semaphore
// must never be copied after first use - only ever referred to by pointer.
//
// Semaphore is safe for concurrent use by multiple goroutines.
type Semaphore struct {
	_ noCopy

	mu      sync.Mutex
	count   int64
	err     error
	waiters waitList
	free    []*waiter

	broken  atomic.Bool
	factory Factory
	clock   Clock
	logger  *zap.Logger
	name    string
}

// noCopy helps `go vet`'s copylocks check flag accidental Semaphore copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Option configures a Semaphore constructed via [New].
type Option func(*Semaphore)

// WithFactory supplies the Factory used to build this semaphore's timeout,
// broken, and aborted failures. The default is a Factory returning
// [ErrTimedOut], [ErrBroken], and [ErrAborted].
func WithFactory(f Factory) Option {
	return func(s *Semaphore) { s.factory = f }
}

// WithClock overrides the Clock used for deadline-based waits. The Clock
// decides whether a deadline has already passed when a wait starts and how
// long a queued wait may last; a queued wait is still timed by a real timer.
func WithClock(c Clock) Option {
	return func(s *Semaphore) { s.clock = c }
}

// WithLogger attaches a structured logger. Broken/timeout/abort transitions
// are logged at Debug or Warn; the default is a no-op logger, so a Semaphore
// never forces output on a caller who didn't ask for it.
func WithLogger(l *zap.Logger) Option {
	return func(s *Semaphore) { s.logger = l }
}

// WithName labels this semaphore's log lines, useful when a process holds
// several semaphores at once. It is independent of [NamedFactory], which
// labels the error values themselves rather than just the logs.
func WithName(name string) Option {
	return func(s *Semaphore) { s.name = name }
}

// New creates a Semaphore with the given initial count. count must be
// non-negative and must not exceed [MaxCounter]; New panics otherwise.
func New(count int64, opts ...Option) *Semaphore {
	if count < 0 {
		panic("semaphore: negative initial count")
	}
	if count > MaxCounter {
		panic("semaphore: initial count exceeds MaxCounter")
	}
	s := &Semaphore{
		count:   count,
		factory: defaultFactory{},
		clock:   realClock{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// String implements fmt.Stringer, showing broken state and queue depth.
func (s *Semaphore) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return fmt.Sprintf("Semaphore(%s broken: %v)", s.label(), s.err)
	}
	return fmt.Sprintf("Semaphore(%s count=%d waiters=%d)", s.label(), s.count, s.waiters.len)
}

func (s *Semaphore) label() string {
	if s.name == "" {
		return "unnamed"
	}
	return s.name
}

// TryWait attempts to decrement the counter by n without blocking. It
// succeeds - and decrements count - only if count >= n AND the wait list is
// empty (a request for zero units needs only the empty wait list, even when
// count is negative); a non-empty wait list means other callers are already queued and
// TryWait must not let a new caller barge ahead of them.
func (s *Semaphore) TryWait(n int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false
	}
	if s.waiters.empty() && (n == 0 || s.count >= n) {
		s.count -= n
		return true
	}
	return false
}

// Wait blocks until n units are available or ctx is done, without returning
// a Units handle - the caller is responsible for eventually calling Signal
// to give the units back. Most callers want [Semaphore.Acquire] instead.
func (s *Semaphore) Wait(ctx context.Context, n int64) error {
	return s.acquireCore(ctx, n, nil)
}

// WaitDeadline is like Wait, but additionally fails with the factory's
// timeout error if deadline passes before n units become available. ctx may
// be context.Background() if only the deadline matters.
func (s *Semaphore) WaitDeadline(ctx context.Context, n int64, deadline time.Time) error {
	return s.acquireCore(ctx, n, &deadline)
}

// WaitTimeout is a convenience wrapper computing a deadline d from now.
func (s *Semaphore) WaitTimeout(ctx context.Context, n int64, d time.Duration) error {
	return s.WaitDeadline(ctx, n, s.clock.Now().Add(d))
}

// Acquire blocks until n units are available or ctx is done, then returns a
// [Units] handle owning them. The handle must eventually be released, most
// often via a deferred [Units.Close].
func (s *Semaphore) Acquire(ctx context.Context, n int64) (*Units, error) {
	if err := s.acquireCore(ctx, n, nil); err != nil {
		return nil, err
	}
	return newUnits(s, n), nil
}

// AcquireDeadline is like Acquire, but additionally fails with the factory's
// timeout error if deadline passes before n units become available.
func (s *Semaphore) AcquireDeadline(ctx context.Context, n int64, deadline time.Time) (*Units, error) {
	if err := s.acquireCore(ctx, n, &deadline); err != nil {
		return nil, err
	}
	return newUnits(s, n), nil
}

// AcquireTimeout is a convenience wrapper computing a deadline d from now.
func (s *Semaphore) AcquireTimeout(ctx context.Context, n int64, d time.Duration) (*Units, error) {
	return s.AcquireDeadline(ctx, n, s.clock.Now().Add(d))
}

// acquireCore implements the shared fast-path/enqueue/cancel machinery for
// every Wait/Acquire overload. deadline is nil when only ctx cancellation
// (or no cancellation at all) applies.
func (s *Semaphore) acquireCore(ctx context.Context, n int64, deadline *time.Time) error {
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return err
	}
	if s.waiters.empty() && (n == 0 || s.count >= n) {
		s.count -= n
		s.mu.Unlock()
		return nil
	}
	// The fast path did not apply - check for pre-armed cancellation before
	// paying for a queue slot: an already-expired deadline or an
	// already-cancelled context resolves ready-failed without enqueueing.
	if ctx != nil && ctx.Err() != nil {
		s.mu.Unlock()
		return s.abortedError(ctx)
	}
	if deadline != nil && !s.clock.Now().Before(*deadline) {
		s.mu.Unlock()
		return buildTimeout(s.factory)
	}

	w := s.getWaiter(n)
	s.waiters.pushBack(w)
	s.mu.Unlock()

	var timerC <-chan time.Time
	if deadline != nil {
		d := deadline.Sub(s.clock.Now())
		if d < 0 {
			d = 0
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		timerC = timer.C
	}
	var ctxDone <-chan struct{}
	if ctx != nil {
		ctxDone = ctx.Done()
	}

	select {
	case err := <-w.done:
		s.putWaiter(w)
		return err
	case <-timerC:
		return s.cancelWaiter(w, func() error { return buildTimeout(s.factory) })
	case <-ctxDone:
		return s.cancelWaiter(w, func() error { return s.abortedError(ctx) })
	}
}

// cancelWaiter implements the "first to act wins" tie-break: only the
// caller that actually finds w still linked gets to resolve it with a
// cancellation error. If another path (Signal or Broken) already won the
// race, the real resolution is read off the already-written done channel.
func (s *Semaphore) cancelWaiter(w *waiter, makeErr func() error) error {
	s.mu.Lock()
	if w.inList {
		s.waiters.remove(w)
		s.mu.Unlock()
		err := makeErr()
		s.logger.Debug("semaphore: wait cancelled",
			zap.String("name", s.label()), zap.Int64("n", w.n), zap.Error(err))
		s.putWaiter(w)
		return err
	}
	s.mu.Unlock()
	err := <-w.done
	s.putWaiter(w)
	return err
}

// abortedError builds the failure for a context-cancelled wait: the
// context's own error takes precedence as the "payload", joined with the
// factory's generic aborted failure so callers can still match on
// errors.Is(err, ErrAborted) (or a custom Factory's Aborted() sentinel).
func (s *Semaphore) abortedError(ctx context.Context) error {
	return fmt.Errorf("%w: %w", buildAborted(s.factory), ctx.Err())
}

// Signal increments the counter by n, then grants it to queued waiters in
// strict FIFO order for as long as the waiter at the head of the queue can
// be satisfied. A waiter requesting more than the post-increment counter
// provides blocks every waiter behind it, even ones requesting fewer units -
// this head-of-line blocking is deliberate, preventing large requests from
// starving under a stream of small ones.
//
// Signal is a no-op on a broken semaphore.
func (s *Semaphore) Signal(n int64) {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return
	}
	s.count += n
	for {
		w := s.waiters.front()
		if w == nil || (w.n > 0 && s.count < w.n) {
			break
		}
		s.waiters.remove(w)
		s.count -= w.n
		w.done <- nil
	}
	granted := s.count
	waiting := s.waiters.len
	s.mu.Unlock()
	s.logger.Debug("semaphore: signal",
		zap.String("name", s.label()), zap.Int64("n", n), zap.Int64("count", granted), zap.Int("waiters", waiting))
}

// Consume decrements the counter by n without waking any waiters and
// without regard for the result going negative. It is meant for accounting
// debts (for example, units already spent on work that hasn't been charged
// yet) rather than for ordinary acquisition. Consume is a no-op on a broken
// semaphore.
func (s *Semaphore) Consume(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	s.count -= n
}

// Broken permanently breaks the semaphore using the factory's broken error.
// It is equivalent to BrokenWith(nil).
func (s *Semaphore) Broken() {
	s.BrokenWith(nil)
}

// BrokenWith permanently breaks the semaphore with err (or the factory's
// broken error, if err is nil). The counter is zeroed and every currently
// queued waiter is failed with err, in FIFO order. After this call, Signal
// and Consume are no-ops, TryWait always returns false, and every
// Wait/Acquire call fails immediately with a copy of err.
func (s *Semaphore) BrokenWith(err error) {
	s.mu.Lock()
	if s.err != nil {
		s.mu.Unlock()
		return
	}
	if err == nil {
		err = buildBroken(s.factory)
	}
	s.err = err
	s.count = 0
	s.broken.Store(true)
	waiting := s.waiters.len
	for {
		w := s.waiters.front()
		if w == nil {
			break
		}
		s.waiters.remove(w)
		w.done <- err
	}
	s.mu.Unlock()
	s.logger.Warn("semaphore: broken",
		zap.String("name", s.label()), zap.Error(err), zap.Int("waiters_failed", waiting))
}

// IsBroken reports whether the semaphore has been permanently broken.
func (s *Semaphore) IsBroken() bool {
	return s.broken.Load()
}

// EnsureSpaceForWaiters preallocates storage so that up to n subsequent
// Wait/Acquire calls that need to queue will not allocate a new waiter node.
func (s *Semaphore) EnsureSpaceForWaiters(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.free = append(s.free, newWaiter(0))
	}
}

// Current returns max(count, 0): the number of units currently available to
// a synchronous TryWait.
func (s *Semaphore) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count < 0 {
		return 0
	}
	return s.count
}

// AvailableUnits returns the raw counter, which may be negative after a
// Consume call charged more units than were available.
func (s *Semaphore) AvailableUnits() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Waiters returns the current depth of the FIFO wait queue.
func (s *Semaphore) Waiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters.len
}

// brokenErr returns the stored broken error, or nil if the semaphore is
// live. Used by Units.GetException.
func (s *Semaphore) brokenErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// getWaiter pops a preallocated node from the freelist if EnsureSpaceForWaiters
// has been used, keeping the hot enqueue path allocation-free; otherwise it
// allocates a fresh node. Must be called with s.mu held.
func (s *Semaphore) getWaiter(n int64) *waiter {
	if l := len(s.free); l > 0 {
		w := s.free[l-1]
		s.free = s.free[:l-1]
		w.n = n
		return w
	}
	return newWaiter(n)
}

// putWaiter returns a resolved waiter to the freelist for reuse. Must be
// called without s.mu held; it takes the lock itself.
func (s *Semaphore) putWaiter(w *waiter) {
	w.prev, w.next, w.inList = nil, nil, false
	s.mu.Lock()
	s.free = append(s.free, w)
	s.mu.Unlock()
}
