package batch

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runnerFunc adapts a function to the Runner interface.
type runnerFunc func(ctx context.Context, job Job) Result

func (f runnerFunc) Run(ctx context.Context, job Job) Result {
	return f(ctx, job)
}

func makeJobs(n int) []Job {
	jobs := make([]Job, n)
	for i := range jobs {
		jobs[i] = Job{ID: i + 1, URL: fmt.Sprintf("https://youtu.be/video%06d", i)}
	}
	return jobs
}

func TestPool_ResultsAlignWithSubmissionOrder(t *testing.T) {
	// Job 1 finishes last; its result must still land in slot 0.
	runner := runnerFunc(func(ctx context.Context, job Job) Result {
		if job.ID == 1 {
			time.Sleep(50 * time.Millisecond)
		}
		return Result{JobID: job.ID, URL: job.URL, Status: StatusSuccess}
	})

	jobs := makeJobs(4)
	results := NewPool(runner, 4).ExecuteAll(context.Background(), jobs)

	require.Len(t, results, len(jobs))
	for i, r := range results {
		assert.Equal(t, jobs[i].ID, r.JobID, "slot %d", i)
		assert.Equal(t, jobs[i].URL, r.URL, "slot %d", i)
	}
}

func TestPool_BoundedParallelism(t *testing.T) {
	const limit = 3

	var inFlight, peak int64
	runner := runnerFunc(func(ctx context.Context, job Job) Result {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return Result{JobID: job.ID, Status: StatusSuccess}
	})

	NewPool(runner, limit).ExecuteAll(context.Background(), makeJobs(12))

	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(limit))
	assert.Greater(t, atomic.LoadInt64(&peak), int64(0))
}

func TestPool_PanicIsolation(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, job Job) Result {
		if job.ID == 2 {
			panic("worker exploded")
		}
		return Result{JobID: job.ID, Status: StatusSuccess}
	})

	results := NewPool(runner, 2).ExecuteAll(context.Background(), makeJobs(3))

	require.Len(t, results, 3)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusFailure, results[1].Status)
	assert.Contains(t, results[1].Err, "worker exploded")
	assert.Equal(t, StatusSuccess, results[2].Status)
}

func TestPool_FailureDoesNotAffectSiblings(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, job Job) Result {
		if job.ID%2 == 0 {
			return Result{JobID: job.ID, Status: StatusFailure, Err: "boom"}
		}
		return Result{JobID: job.ID, Status: StatusSuccess}
	})

	results := NewPool(runner, 2).ExecuteAll(context.Background(), makeJobs(6))

	for i, r := range results {
		if (i+1)%2 == 0 {
			assert.Equal(t, StatusFailure, r.Status, "job %d", i+1)
		} else {
			assert.Equal(t, StatusSuccess, r.Status, "job %d", i+1)
		}
	}
}

func TestPool_EmptyBatch(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, job Job) Result {
		t.Error("runner called for empty batch")
		return Result{}
	})

	results := NewPool(runner, 2).ExecuteAll(context.Background(), nil)
	assert.Empty(t, results)
}

func TestPool_EffectiveParallelism(t *testing.T) {
	assert.Equal(t, 4, NewPool(nil, 4).EffectiveParallelism())
	assert.Greater(t, NewPool(nil, 0).EffectiveParallelism(), 0)
	assert.Greater(t, NewPool(nil, -1).EffectiveParallelism(), 0)
}
