package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// StepExecutor exposes the saga operations required by the retrier.
type StepExecutor interface {
	Retryable(ctx context.Context, limit int) ([]model.OrderStep, error)
	Run(ctx context.Context, step model.OrderStep) model.OrderStep
}

// StepRetrier periodically re-applies failed saga steps concurrently.
type StepRetrier struct {
	steps        StepExecutor
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.OrderStep
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewStepRetrier constructs the step retry worker pool.
func NewStepRetrier(steps StepExecutor, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *StepRetrier {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &StepRetrier{
		steps:        steps,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
	}
}

// Start launches background processing. Calling Start twice is a no-op.
func (r *StepRetrier) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.jobs = make(chan model.OrderStep, r.batchSize*r.workers)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx, r.jobs)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx, r.jobs)
}

// Stop cancels processing and waits for all workers to finish.
func (r *StepRetrier) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *StepRetrier) dispatch(ctx context.Context, jobs chan<- model.OrderStep) {
	defer r.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx, jobs)
		}
	}
}

func (r *StepRetrier) fetchAndDispatch(ctx context.Context, jobs chan<- model.OrderStep) {
	steps, err := r.steps.Retryable(ctx, r.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("fetch retryable steps failed", slog.String("error", err.Error()))
		}
		return
	}
	for _, step := range steps {
		select {
		case <-ctx.Done():
			return
		case jobs <- step:
		}
	}
}

func (r *StepRetrier) worker(ctx context.Context, jobs <-chan model.OrderStep) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case step, ok := <-jobs:
			if !ok {
				return
			}
			r.handleStep(ctx, step)
		}
	}
}

func (r *StepRetrier) handleStep(ctx context.Context, step model.OrderStep) {
	result := r.steps.Run(ctx, step)
	if result.Status == model.StepDone {
		r.logger.Info("saga step recovered",
			slog.Int64("order_id", step.OrderID),
			slog.String("step", step.Step),
			slog.Int("attempt", step.Attempts+1))
	}
}
