// Command semdemo is a small worker-pool bootstrap demonstrating the
// semaphore package: bounded concurrency via Acquire/Units and a deliberate
// shutdown via BrokenWith.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fiberflow/semaphore"
)

var (
	concurrency int
	jobs        int
	breakAfter  int
)

var rootCmd = &cobra.Command{
	Use:   "semdemo",
	Short: "Demonstrates the fiberflow/semaphore package against a toy worker pool",
	RunE:  runDemo,
}

func init() {
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 3, "maximum concurrent jobs")
	rootCmd.Flags().IntVar(&jobs, "jobs", 10, "total jobs to submit")
	rootCmd.Flags().IntVar(&breakAfter, "break-after", 0, "break the pool after this many jobs complete (0 disables)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pool := semaphore.New(int64(concurrency),
		semaphore.WithName("semdemo-pool"),
		semaphore.WithLogger(logger),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	completed := 0
	for i := 0; i < jobs; i++ {
		jobID := uuid.New().String()

		u, err := pool.Acquire(ctx, 1)
		if err != nil {
			logger.Warn("job rejected", zap.String("job_id", jobID), zap.Error(err))
			continue
		}

		func() {
			defer u.Close()
			logger.Info("job started", zap.String("job_id", jobID))
			time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
			logger.Info("job finished", zap.String("job_id", jobID))
		}()

		completed++
		if breakAfter > 0 && completed == breakAfter {
			logger.Warn("breaking pool after reaching configured job count", zap.Int("completed", completed))
			pool.BrokenWith(fmt.Errorf("semdemo: pool retired after %d jobs", completed))
		}
	}

	fmt.Printf("completed %d/%d jobs; pool broken=%v\n", completed, jobs, pool.IsBroken())
	return nil
}
