package execution

import (
	"context"
	"sort"
	"sync"
	"time"

	"ath/internal/config"
	"ath/internal/domain"
	"ath/internal/registry"
)

var _ Executor = (*WorkerPool)(nil)

// Progress receives updates as test cases complete
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}

// WorkerPool manages a pool of workers for parallel test execution
type WorkerPool struct {
	config    *config.Config
	runner    *Runner
	scheduler Scheduler
	progress  Progress
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner *Runner, scheduler Scheduler) *WorkerPool {
	return &WorkerPool{
		config:    cfg,
		runner:    runner,
		scheduler: scheduler,
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

type indexedResult struct {
	index  int
	result domain.TestResult
}

// tally tracks completion counts shared between workers
type tally struct {
	mu        sync.Mutex
	completed int
	passed    int
	failed    int
	progress  Progress
}

func (t *tally) record(result domain.TestResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	if result.Success {
		t.passed++
	} else {
		t.failed++
	}
	if t.progress != nil {
		t.progress.Update(t.completed, t.passed, t.failed)
	}
}

// Execute executes tests in parallel using worker pool (no fail-fast).
func (wp *WorkerPool) Execute(ctx context.Context, tests []registry.TestCase) ([]domain.TestResult, time.Duration, error) {
	return wp.ExecuteWithOptions(ctx, tests, false)
}

// ExecuteWithOptions executes tests with optional fail-fast (stop on first failure).
// Results are returned in the order of tests; cases that never started are reported as not-run.
func (wp *WorkerPool) ExecuteWithOptions(ctx context.Context, tests []registry.TestCase, failFast bool) ([]domain.TestResult, time.Duration, error) {
	if len(tests) == 0 {
		return nil, 0, nil
	}

	startTime := time.Now()
	var collected []indexedResult
	if failFast {
		collected = wp.executeFailFast(ctx, tests)
	} else {
		collected = wp.executeAll(ctx, tests)
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}

	return assemble(tests, collected), time.Since(startTime), ctx.Err()
}

func (wp *WorkerPool) workerCount() int {
	if wp.config == nil || wp.config.Processors <= 0 {
		return 1
	}
	return wp.config.Processors
}

// executeAll gives each worker its scheduled share of the tests.
func (wp *WorkerPool) executeAll(ctx context.Context, tests []registry.TestCase) []indexedResult {
	index := make(map[string]int, len(tests))
	for i, tc := range tests {
		index[tc.Name] = i
	}

	results := make(chan indexedResult, len(tests))
	counts := &tally{progress: wp.progress}

	var wg sync.WaitGroup
	for i, share := range wp.scheduler.Schedule(tests, wp.workerCount()) {
		wg.Add(1)
		go func(workerID int, share []registry.TestCase) {
			defer wg.Done()
			for _, tc := range share {
				if ctx.Err() != nil {
					return
				}
				result := wp.runner.Run(ctx, tc, workerID)
				results <- indexedResult{index: index[tc.Name], result: result}
				counts.record(result)
			}
		}(i+1, share)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var all []indexedResult
	for r := range results {
		all = append(all, r)
	}
	return all
}

// executeFailFast runs tests and stops handing out new ones after the first failure.
func (wp *WorkerPool) executeFailFast(ctx context.Context, tests []registry.TestCase) []indexedResult {
	dispatch, stop := context.WithCancel(ctx)
	defer stop()

	queue := make(chan int)
	results := make(chan indexedResult, len(tests))
	counts := &tally{progress: wp.progress}

	go func() {
		defer close(queue)
		for i := range tests {
			select {
			case <-dispatch.Done():
				return
			case queue <- i:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 1; i <= wp.workerCount(); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range queue {
				if dispatch.Err() != nil {
					continue
				}
				// In-flight cases finish against ctx, not dispatch, so they are not failed by the stop.
				result := wp.runner.Run(ctx, tests[idx], workerID)
				results <- indexedResult{index: idx, result: result}
				counts.record(result)
				if !result.Success {
					stop()
				}
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var all []indexedResult
	for r := range results {
		all = append(all, r)
	}
	return all
}

// assemble orders results like tests and fills in not-run entries for cases that never started.
func assemble(tests []registry.TestCase, collected []indexedResult) []domain.TestResult {
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	out := make([]domain.TestResult, 0, len(tests))
	next := 0
	for i, tc := range tests {
		if next < len(collected) && collected[next].index == i {
			out = append(out, collected[next].result)
			next++
			continue
		}
		out = append(out, domain.TestResult{
			Name:   tc.Name,
			Suite:  tc.Suite,
			Groups: tc.Groups,
			Status: domain.StatusNotRun,
		})
	}
	return out
}
