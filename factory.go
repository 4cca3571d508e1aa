package semaphore

import "fmt"

// Factory builds the failure values a Semaphore returns for its three
// terminal conditions. A minimal Factory only needs to implement Timeout and
// Broken; Aborted is detected separately via [abortedFactory] and falls back
// to [ErrAborted] when absent, so a caller that doesn't need a distinct
// abort error never has to implement one.
type Factory interface {
	// Timeout builds the error returned when a deadline-bound wait expires.
	Timeout() error
	// Broken builds the error returned by a semaphore broken via Broken().
	Broken() error
}

// abortedFactory is implemented by a Factory that wants to customize the
// error returned when a wait is cancelled via its context. Factories that do
// not implement it get [ErrAborted].
type abortedFactory interface {
	Aborted() error
}

// defaultFactory is the Factory New installs when no [WithFactory] option is
// supplied.
type defaultFactory struct{}

func (defaultFactory) Timeout() error { return ErrTimedOut }
func (defaultFactory) Broken() error  { return ErrBroken }
func (defaultFactory) Aborted() error { return ErrAborted }

// NamedFactory wraps a label into every failure's message, useful when a
// process holds several semaphores and wants to tell their failures apart in
// logs without threading a correlation id through every caller.
type NamedFactory struct {
	// Name identifies the semaphore in failure messages.
	Name string
}

func (f NamedFactory) Timeout() error {
	return fmt.Errorf("semaphore %q: %w", f.Name, ErrTimedOut)
}

func (f NamedFactory) Broken() error {
	return fmt.Errorf("semaphore %q: %w", f.Name, ErrBroken)
}

func (f NamedFactory) Aborted() error {
	return fmt.Errorf("semaphore %q: %w", f.Name, ErrAborted)
}

// buildTimeout invokes factory.Timeout, falling back to ErrTimedOut if the
// factory itself panics or returns a nil error. Factory construction is not
// expected to panic, but the original specification's error handling design
// (ERROR HANDLING DESIGN, "Failures produced by the factory that themselves
// throw during construction are caught") is preserved defensively here.
func buildTimeout(f Factory) (err error) {
	defer func() {
		if recover() != nil || err == nil {
			err = ErrTimedOut
		}
	}()
	return f.Timeout()
}

func buildBroken(f Factory) (err error) {
	defer func() {
		if recover() != nil || err == nil {
			err = ErrBroken
		}
	}()
	return f.Broken()
}

func buildAborted(f Factory) (err error) {
	defer func() {
		if recover() != nil || err == nil {
			err = ErrAborted
		}
	}()
	af, ok := f.(abortedFactory)
	if !ok {
		return ErrAborted
	}
	return af.Aborted()
}
