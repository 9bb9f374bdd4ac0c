package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

type appStub struct {
	startErr, stopErr error
	done              chan os.Signal
	stopped           bool
}

func (a *appStub) Start(context.Context) error { return a.startErr }

func (a *appStub) Stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("stop without deadline")
	}
	a.stopped = true
	return a.stopErr
}

func (a *appStub) Done() <-chan os.Signal { return a.done }

func (a *appStub) StopTimeout() time.Duration { return time.Second }

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app := &appStub{done: make(chan os.Signal)}
	if code := run(ctx, app); code != 0 || !app.stopped {
		t.Fatalf("expected clean stop, got code %d stopped=%v", code, app.stopped)
	}
}

func TestRunStopsOnShutdownRequest(t *testing.T) {
	app := &appStub{done: make(chan os.Signal, 1)}
	app.done <- os.Interrupt
	if code := run(context.Background(), app); code != 0 || !app.stopped {
		t.Fatalf("expected clean stop, got code %d", code)
	}
}

func TestRunReportsFailures(t *testing.T) {
	app := &appStub{startErr: errors.New("db down"), done: make(chan os.Signal)}
	if code := run(context.Background(), app); code != 1 || app.stopped {
		t.Fatalf("expected start failure, got code %d", code)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app = &appStub{stopErr: errors.New("timeout"), done: make(chan os.Signal)}
	if code := run(ctx, app); code != 1 {
		t.Fatalf("expected stop failure, got code %d", code)
	}
}
