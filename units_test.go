package semaphore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiberflow/semaphore"
)

func TestUnitsSplitRejectsOverdraw(t *testing.T) {
	sem := semaphore.New(4)
	u, err := sem.Acquire(context.Background(), 2)
	require.NoError(t, err)
	defer u.Close()

	_, err = u.Split(3)
	assert.ErrorIs(t, err, semaphore.ErrInvalidArgument)
	assert.EqualValues(t, 2, u.Count(), "a failed split must not mutate the handle")
}

func TestUnitsAdoptPanicsOnMismatchedSemaphore(t *testing.T) {
	semA := semaphore.New(4)
	semB := semaphore.New(4)

	u, err := semA.Acquire(context.Background(), 2)
	require.NoError(t, err)
	defer u.Close()
	v, err := semB.Acquire(context.Background(), 2)
	require.NoError(t, err)
	defer v.Close()

	assert.Panics(t, func() { u.Adopt(v) })
	assert.EqualValues(t, 2, v.Count(), "a rejected adopt must leave the donor handle untouched")
}

func TestUnitsRelease(t *testing.T) {
	sem := semaphore.New(4)
	u, err := sem.Acquire(context.Background(), 3)
	require.NoError(t, err)

	n := u.Release()
	assert.EqualValues(t, 3, n)
	assert.Zero(t, u.Count())
	assert.False(t, u.IsEngaged())
	// Current is still down 3: Release transfers the debt to the caller
	// without signalling.
	assert.EqualValues(t, 1, sem.Current())

	sem.Signal(n)
	assert.EqualValues(t, 4, sem.Current())
}

func TestUnitsReturnUnitsPartial(t *testing.T) {
	sem := semaphore.New(0)
	u, err := sem.Acquire(context.Background(), 5)
	require.NoError(t, err)

	remaining, err := u.ReturnUnits(2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, remaining)
	assert.EqualValues(t, 2, sem.Current())

	require.NoError(t, u.Close())
	assert.EqualValues(t, 5, sem.Current())
}
