package test

import (
	"context"

	"go.uber.org/fx"
)

// LifecycleRecorder captures lifecycle hooks appended during tests.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

// Append stores hook for later invocation.
func (l *LifecycleRecorder) Append(h fx.Hook) {
	l.Hooks = append(l.Hooks, h)
}

// ShutdownerStub records shutdown invocations.
type ShutdownerStub struct {
	Called chan struct{}
}

// Shutdown notifies tests about graceful termination.
func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	if s.Called != nil {
		select {
		case s.Called <- struct{}{}:
		default:
		}
	}
	return nil
}

// RunnerStub blocks in Run until the context is cancelled.
type RunnerStub struct {
	Started chan struct{}
	Err     error
}

// Run signals Started and waits for ctx.
func (r *RunnerStub) Run(ctx context.Context) error {
	if r.Started != nil {
		close(r.Started)
	}
	<-ctx.Done()
	return r.Err
}

// RelayStub counts Start and Stop calls.
type RelayStub struct {
	StartErr error
	Starts   int
	Stops    int
}

// Start records the call.
func (r *RelayStub) Start() error {
	r.Starts++
	return r.StartErr
}

// Stop records the call.
func (r *RelayStub) Stop() error {
	r.Stops++
	return nil
}
