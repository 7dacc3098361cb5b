package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/anime-shed/design-inspector-go/internal/logger"
)

var (
	// ErrPoolClosed is returned when submitting to a closed pool
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrJobPanicked wraps a panic recovered from a job run through Run
	ErrJobPanicked = errors.New("worker job panicked")
)

// Stats is a snapshot of pool counters
type Stats struct {
	Workers       int   `json:"workers"`
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	ActiveWorkers int32 `json:"active_workers"`
}

// WorkerPool bounds how many analyses hold decoded pixel buffers at once
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	once     sync.Once

	mu     sync.RWMutex
	closed bool

	totalJobs     atomic.Int64
	completedJobs atomic.Int64
	activeWorkers atomic.Int32
}

// New creates a new worker pool with the specified number of workers
func New(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

// worker processes jobs from the job queue
func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		wp.execute(job)
	}
}

func (wp *WorkerPool) execute(job func()) {
	wp.activeWorkers.Add(1)
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Worker job panicked")
		}
		wp.activeWorkers.Add(-1)
		wp.completedJobs.Add(1)
		wp.wg.Done()
	}()
	job()
}

// Submit adds a job to the queue, blocking while it is full.
// It returns false if the pool has been closed.
func (wp *WorkerPool) Submit(job func()) bool {
	return wp.SubmitContext(context.Background(), job) == nil
}

// SubmitContext adds a job to the queue unless ctx is done first
func (wp *WorkerPool) SubmitContext(ctx context.Context, job func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}

	wp.wg.Add(1)
	select {
	case wp.jobQueue <- job:
		wp.totalJobs.Add(1)
		return nil
	case <-ctx.Done():
		wp.wg.Done()
		return ctx.Err()
	}
}

// Run executes fn on a pool worker and waits for its result or for ctx to
// end. fn receives the same ctx and should stop early when it is cancelled.
func (wp *WorkerPool) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	result := make(chan error, 1)

	err := wp.SubmitContext(ctx, func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("%w: %v", ErrJobPanicked, r)
			}
		}()
		result <- fn(ctx)
	})
	if err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait waits for all submitted jobs to complete
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// GetStats returns a snapshot of the pool counters
func (wp *WorkerPool) GetStats() Stats {
	return Stats{
		Workers:       wp.workers,
		TotalJobs:     wp.totalJobs.Load(),
		CompletedJobs: wp.completedJobs.Load(),
		ActiveWorkers: wp.activeWorkers.Load(),
	}
}

// Close stops accepting jobs; queued jobs still run. Safe to call more than once.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.closed {
		return
	}
	wp.closed = true
	close(wp.jobQueue)
}
