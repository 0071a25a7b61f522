package reconcile

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"rewatch/internal/services"
)

// Task is one independent lookup keyed by entry id.
type Task struct {
	ID  string
	Run func(ctx context.Context) EntryResult
}

// BatchRunner executes tasks in sequential batches. Within a batch at most
// Concurrency tasks run at once; results flow through a channel to a single
// collector so the collect callback never runs concurrently.
type BatchRunner struct {
	Concurrency int
	BatchSize   int
	Pause       time.Duration
}

// NewBatchRunner applies defaults to non-positive settings.
func NewBatchRunner(concurrency, batchSize int, pause time.Duration) *BatchRunner {
	if concurrency <= 0 {
		concurrency = 10
	}
	if batchSize <= 0 {
		batchSize = 20
	}
	if pause < 0 {
		pause = 0
	}
	return &BatchRunner{Concurrency: concurrency, BatchSize: batchSize, Pause: pause}
}

// Run processes tasks and hands every result to collect. It stops early
// only when ctx is cancelled; individual task failures are carried in the
// results.
func (b *BatchRunner) Run(ctx context.Context, tasks []Task, collect func(EntryResult)) error {
	concurrency := max(b.Concurrency, 1)
	size := b.BatchSize
	if size <= 0 {
		size = len(tasks)
	}

	for start := 0; start < len(tasks); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+size, len(tasks))
		b.runBatch(ctx, tasks[start:end], concurrency, collect)

		if end < len(tasks) && b.Pause > 0 {
			if err := services.Sleep(ctx, b.Pause); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *BatchRunner) runBatch(ctx context.Context, batch []Task, concurrency int, collect func(EntryResult)) {
	results := make(chan EntryResult, len(batch))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range results {
			collect(result)
		}
	}()

	var group errgroup.Group
	group.SetLimit(concurrency)
	for _, task := range batch {
		group.Go(func() error {
			result := task.Run(ctx)
			if result.EntryID == "" {
				result.EntryID = task.ID
			}
			results <- result
			return nil
		})
	}
	_ = group.Wait()
	close(results)
	<-done
}
