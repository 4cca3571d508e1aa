package semaphore_test

import (
	"context"
	"fmt"

	"github.com/fiberflow/semaphore"
)

// Example demonstrates a two-unit semaphore: acquire one unit, try-acquire
// the second, see a third try-acquire fail, then release both, inspecting
// state along the way.
func Example() {
	sem := semaphore.New(2, semaphore.WithName("demo"))
	fmt.Println("Created:", sem)

	u1, _ := sem.Acquire(context.Background(), 1)
	printSemaphore(sem, "After acquiring first unit")

	u2, ok := semaphore.TryAcquire(sem, 1)
	if ok {
		printSemaphore(sem, "After acquiring second unit")
	}

	if _, ok := semaphore.TryAcquire(sem, 1); !ok {
		fmt.Println("TryAcquire failed - semaphore full")
	}

	u2.Close()
	printSemaphore(sem, "After releasing second unit")

	u1.Close()
	printSemaphore(sem, "Final state - all units released")

	// Output:
	// Created: Semaphore(demo count=2 waiters=0)
	// After acquiring first unit
	//   Semaphore: count=1, waiters=0
	// After acquiring second unit
	//   Semaphore: count=0, waiters=0
	// TryAcquire failed - semaphore full
	// After releasing second unit
	//   Semaphore: count=1, waiters=0
	// Final state - all units released
	//   Semaphore: count=2, waiters=0
}

func printSemaphore(s *semaphore.Semaphore, msg string) {
	fmt.Printf("%v\n  Semaphore: count=%v, waiters=%v\n", msg, s.Current(), s.Waiters())
}

// Example_broken demonstrates the broken-cascade scenario: once a semaphore
// is broken, every future wait fails immediately with the same error.
func Example_broken() {
	sem := semaphore.New(0)

	sem.BrokenWith(fmt.Errorf("worker pool shut down"))

	_, err := sem.Acquire(context.Background(), 1)
	fmt.Println("Acquire after broken:", err)

	// Output:
	// Acquire after broken: worker pool shut down
}
