package semaphore

// waiter is one entry in a Semaphore's FIFO wait list: one suspended
// Wait/Acquire call for n units. It is an intrusive doubly-linked list node -
// the list lives entirely in the prev/next pointers, so granting the head or
// cancelling an arbitrary mid-queue waiter are both O(1); the link runs both
// ways so a waiter can unlink itself from anywhere in the queue, not just the
// head.
//
// A waiter's only contract: it is resolved exactly once, by whichever path
// unlinks it first - Signal or Broken (which write to done) or a timeout or
// abort (which unlink it without writing to done). A path that finds
// inList == false does not resolve it again. While a waiter is linked, its
// linkage is changed and its done channel written only with the owning
// Semaphore's mutex held; the waiting goroutine receives from done without
// the mutex.
type waiter struct {
	prev, next *waiter

	// n is the number of units this waiter is requesting.
	n int64

	// done is written to at most once: nil for a grant by Signal, or the
	// broken error from Broken. A timeout or abort unlinks the waiter without
	// writing to done. It is buffered so the resolving side never blocks on a
	// goroutine that stopped listening.
	done chan error

	// inList is true while the waiter is linked into its Semaphore's wait
	// list. Checking it before resolving implements the "first to act wins"
	// tie-break from a concurrent Signal/timeout/abort/broken race.
	inList bool
}

func newWaiter(n int64) *waiter {
	return &waiter{n: n, done: make(chan error, 1)}
}

// waitList is the FIFO queue of waiters owned by a Semaphore. The zero value
// is an empty list.
type waitList struct {
	head, tail *waiter
	len        int
}

// pushBack enqueues w at the tail, preserving arrival order.
func (l *waitList) pushBack(w *waiter) {
	w.inList = true
	w.prev, w.next = l.tail, nil
	if l.tail != nil {
		l.tail.next = w
	} else {
		l.head = w
	}
	l.tail = w
	l.len++
}

// remove unlinks w from the list. It is a no-op if w is not currently linked,
// which is what makes the cancellation tie-break safe: only the first caller
// to observe inList == true actually mutates the list.
func (l *waitList) remove(w *waiter) {
	if !w.inList {
		return
	}
	if w.prev != nil {
		w.prev.next = w.next
	} else {
		l.head = w.next
	}
	if w.next != nil {
		w.next.prev = w.prev
	} else {
		l.tail = w.prev
	}
	w.prev, w.next = nil, nil
	w.inList = false
	l.len--
}

func (l *waitList) front() *waiter {
	return l.head
}

func (l *waitList) empty() bool {
	return l.head == nil
}
