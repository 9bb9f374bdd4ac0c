package usecase

import (
	"context"
	"log/slog"

	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
)

// StepRunner records and applies the steps that follow an order insert:
// one stock decrement per product and the coupon consumption.
type StepRunner struct {
	steps    repository.StepRepository
	logger   *slog.Logger
	recorder Recorder
	settings Settings
}

// NewStepRunner constructs StepRunner.
func NewStepRunner(steps repository.StepRepository, logger *slog.Logger, recorder Recorder, settings Settings) *StepRunner {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &StepRunner{steps: steps, logger: logger, recorder: recorder, settings: settings}
}

// Start logs the saga of a freshly inserted order and runs its steps.
// Failed steps stay in the log for the retrier.
func (r *StepRunner) Start(ctx context.Context, order *model.Order, lines []model.CartLine, coupon *model.Coupon) []model.OrderStep {
	planned := []model.OrderStep{{OrderID: order.ID, Step: model.StepInsertOrder, Status: model.StepDone}}
	for _, q := range aggregateQuantities(lines) {
		planned = append(planned, model.OrderStep{
			OrderID:   order.ID,
			Step:      model.DecrementStockStep(q.productID),
			Status:    model.StepPending,
			ProductID: q.productID,
			Quantity:  q.quantity,
		})
	}
	if coupon != nil {
		planned = append(planned, model.OrderStep{
			OrderID:    order.ID,
			Step:       model.StepConsumeCoupon,
			Status:     model.StepPending,
			CouponCode: coupon.Code,
		})
	}

	out := make([]model.OrderStep, 0, len(planned))
	for _, step := range planned {
		recorded, err := r.steps.Record(ctx, step)
		if err != nil {
			r.recorder.StepFailed(step.Step)
			r.logger.Error("saga step not recorded",
				slog.Int64("order_id", order.ID),
				slog.String("step", step.Step),
				slog.String("error", err.Error()),
			)
			step.Status = model.StepFailed
			step.LastError = err.Error()
			out = append(out, step)
			continue
		}
		if recorded.Status == model.StepPending {
			*recorded = r.Run(ctx, *recorded)
		}
		out = append(out, *recorded)
	}
	return out
}

// Run applies one step once. A failure is counted against the step's attempts.
func (r *StepRunner) Run(ctx context.Context, step model.OrderStep) model.OrderStep {
	err := r.steps.Apply(ctx, step.ID)
	if err == nil {
		step.Status = model.StepDone
		step.LastError = ""
		return step
	}

	r.recorder.StepFailed(step.Step)
	status, markErr := r.steps.MarkFailed(ctx, step.ID, err.Error(), r.settings.maxAttempts())
	if markErr != nil {
		r.logger.Error("saga step failure not recorded",
			slog.Int64("order_id", step.OrderID),
			slog.String("step", step.Step),
			slog.String("error", markErr.Error()),
		)
		status = model.StepFailed
	}

	step.Attempts++
	step.Status = status
	step.LastError = err.Error()

	attrs := []any{
		slog.Int64("order_id", step.OrderID),
		slog.String("step", step.Step),
		slog.Int("attempt", step.Attempts),
		slog.String("error", err.Error()),
	}
	if status == model.StepAbandoned {
		r.logger.Error("saga step abandoned", attrs...)
	} else {
		r.logger.Warn("saga step failed", attrs...)
	}
	return step
}

// Retryable returns failed steps waiting for another attempt.
func (r *StepRunner) Retryable(ctx context.Context, limit int) ([]model.OrderStep, error) {
	return r.steps.ListRetryable(ctx, limit)
}

// Steps returns the saga log of an order.
func (r *StepRunner) Steps(ctx context.Context, orderID int64) ([]model.OrderStep, error) {
	return r.steps.ListByOrder(ctx, orderID)
}

type productQuantity struct {
	productID int64
	quantity  int
}

// aggregateQuantities sums quantities per product in order of first appearance.
func aggregateQuantities(lines []model.CartLine) []productQuantity {
	var out []productQuantity
	index := make(map[int64]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.Product.ID]; ok {
			out[i].quantity += l.Quantity
			continue
		}
		index[l.Product.ID] = len(out)
		out = append(out, productQuantity{productID: l.Product.ID, quantity: l.Quantity})
	}
	return out
}

// PartialFailure reports whether any step did not complete.
func PartialFailure(steps []model.OrderStep) bool {
	for _, s := range steps {
		if s.Status != model.StepDone {
			return true
		}
	}
	return false
}
