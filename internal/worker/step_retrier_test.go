package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/polkiloo/bakehouse/internal/domain/model"
	testhelpers "github.com/polkiloo/bakehouse/internal/test"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.After(timeout)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for condition")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func stepStatus(t *testing.T, repo *testhelpers.StepRepositoryStub, orderID int64) []model.StepStatus {
	t.Helper()
	steps, err := repo.ListByOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("list steps: %v", err)
	}
	out := make([]model.StepStatus, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Status)
	}
	return out
}

func TestNewStepRetrierDefaults(t *testing.T) {
	r := NewStepRetrier(nil, time.Second, 0, 0, discardLogger())
	if r.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", r.batchSize)
	}
	if r.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", r.workers)
	}
}

func TestStepRetrierRecoversFailedSteps(t *testing.T) {
	catalog := testhelpers.NewCatalogStub()
	catalog.PutProduct(model.Product{ID: 1, Name: "Bolo", Stock: 5})
	repo := testhelpers.NewStepRepositoryStub(catalog)
	_, err := repo.Record(context.Background(), model.OrderStep{
		OrderID: 9, Step: model.DecrementStockStep(1), Status: model.StepFailed, ProductID: 1, Quantity: 2, Attempts: 1,
	})
	if err != nil {
		t.Fatalf("record step: %v", err)
	}

	runner := usecase.NewStepRunner(repo, discardLogger(), nil, usecase.Settings{StepMaxAttempts: 3})
	retrier := NewStepRetrier(runner, 5*time.Millisecond, 4, 2, discardLogger())
	retrier.Start(context.Background())
	defer retrier.Stop()

	waitFor(t, time.Second, func() bool {
		return stepStatus(t, repo, 9)[0] == model.StepDone
	})
	if got := catalog.Stock(1); got != 3 {
		t.Fatalf("expected stock 3 after retry, got %d", got)
	}
}

func TestStepRetrierAbandonsAfterMaxAttempts(t *testing.T) {
	catalog := testhelpers.NewCatalogStub()
	repo := testhelpers.NewStepRepositoryStub(catalog)
	repo.FailApply[model.StepConsumeCoupon] = errors.New("coupon table locked")
	_, err := repo.Record(context.Background(), model.OrderStep{
		OrderID: 4, Step: model.StepConsumeCoupon, Status: model.StepFailed, CouponCode: "DOCE5", Attempts: 1,
	})
	if err != nil {
		t.Fatalf("record step: %v", err)
	}

	runner := usecase.NewStepRunner(repo, discardLogger(), nil, usecase.Settings{StepMaxAttempts: 3})
	retrier := NewStepRetrier(runner, 5*time.Millisecond, 1, 1, discardLogger())
	retrier.Start(context.Background())

	waitFor(t, time.Second, func() bool {
		return stepStatus(t, repo, 4)[0] == model.StepAbandoned
	})
	retrier.Stop()

	steps, _ := repo.ListByOrder(context.Background(), 4)
	if steps[0].Attempts < 3 {
		t.Fatalf("expected at least 3 attempts, got %d", steps[0].Attempts)
	}
}

type failingExecutor struct {
	mu    sync.Mutex
	calls int
}

func (f *failingExecutor) Retryable(ctx context.Context, limit int) ([]model.OrderStep, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return nil, errors.New("db down")
}

func (f *failingExecutor) Run(ctx context.Context, step model.OrderStep) model.OrderStep {
	panic("must not run")
}

func TestStepRetrierSurvivesFetchErrors(t *testing.T) {
	exec := &failingExecutor{}
	retrier := NewStepRetrier(exec, 2*time.Millisecond, 1, 1, discardLogger())
	retrier.Start(context.Background())
	retrier.Start(context.Background())

	waitFor(t, time.Second, func() bool {
		exec.mu.Lock()
		defer exec.mu.Unlock()
		return exec.calls >= 3
	})
	retrier.Stop()
	retrier.Stop()
}
