package semaphore

import "errors"

// ErrBroken is returned (or wrapped, by [NamedFactory]) by every Wait and
// Acquire call on a semaphore that has been permanently broken via
// [Semaphore.Broken] with the default factory. [Semaphore.BrokenWith] with a
// non-nil error returns that error instead.
var ErrBroken = errors.New("semaphore: broken")

// ErrTimedOut is returned when a deadline-bound wait expires before enough
// units become available.
var ErrTimedOut = errors.New("semaphore: timed out")

// ErrAborted is returned when a wait is cancelled via its context before
// enough units become available.
var ErrAborted = errors.New("semaphore: aborted")

// ErrInvalidArgument is returned by Units operations given an out-of-range
// argument, such as returning more units than a handle currently holds.
var ErrInvalidArgument = errors.New("semaphore: invalid argument")
