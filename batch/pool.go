package batch

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
)

// Runner executes a single job to its terminal Result.
type Runner interface {
	Run(ctx context.Context, job Job) Result
}

// Pool runs jobs with bounded parallelism. It is a synchronous batch
// barrier: ExecuteAll does not return until every job has a Result, and
// results are indexed by submission order regardless of completion order.
type Pool struct {
	runner Runner

	// MaxParallel caps concurrently executing jobs. Zero or negative means
	// one job per available CPU.
	MaxParallel int
}

// NewPool creates a pool that runs jobs through runner.
func NewPool(runner Runner, maxParallel int) *Pool {
	return &Pool{runner: runner, MaxParallel: maxParallel}
}

// EffectiveParallelism resolves the configured limit against the host.
func (p *Pool) EffectiveParallelism() int {
	if p.MaxParallel > 0 {
		return p.MaxParallel
	}
	return runtime.NumCPU()
}

// ExecuteAll runs all jobs with at most EffectiveParallelism in flight and
// returns one Result per job, where results[i] always describes jobs[i].
// A job's failure (or panic) never affects its siblings: each worker writes
// only its own pre-allocated slot.
func (p *Pool) ExecuteAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := p.EffectiveParallelism()
	log.Printf("batch: running %d jobs with %d workers", len(jobs), workers)

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		// Acquire a slot before launching so the next job dispatches the
		// moment a running one returns.
		sem <- struct{}{}
		wg.Add(1)

		go func(i int, job Job) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				// The executor recovers its own panics; this is the pool's
				// last line of defense so one job can never sink the batch.
				if r := recover(); r != nil {
					results[i] = Result{
						JobID:  job.ID,
						URL:    job.URL,
						Status: StatusFailure,
						Err:    fmt.Sprintf("panic: %v", r),
					}
				}
			}()

			results[i] = p.runner.Run(ctx, job)
		}(i, job)
	}

	wg.Wait()
	return results
}
