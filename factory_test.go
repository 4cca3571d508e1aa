package semaphore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberflow/semaphore"
)

func TestNamedFactoryLabelsFailures(t *testing.T) {
	sem := semaphore.New(0, semaphore.WithFactory(semaphore.NamedFactory{Name: "db-pool"}))

	sem.Broken()

	err := sem.Wait(context.Background(), 1)
	assert.ErrorIs(t, err, semaphore.ErrBroken)
	assert.Contains(t, err.Error(), "db-pool")
}

// minimalFactory implements only Timeout and Broken, exercising the
// "aborted() is optional" fallback in the Factory contract.
type minimalFactory struct{}

func (minimalFactory) Timeout() error { return errors.New("minimal: timeout") }
func (minimalFactory) Broken() error  { return errors.New("minimal: broken") }

func TestFactoryWithoutAbortedFallsBackToDefault(t *testing.T) {
	sem := semaphore.New(0, semaphore.WithFactory(minimalFactory{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sem.Wait(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, semaphore.ErrAborted)
}

func TestFactoryWithAbortedIsUsed(t *testing.T) {
	sem := semaphore.New(0, semaphore.WithFactory(semaphore.NamedFactory{Name: "rpc"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sem.Wait(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc")
}
