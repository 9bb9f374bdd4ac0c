package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/bakehouse/internal/config"
	"github.com/polkiloo/bakehouse/internal/metrics"
	"github.com/polkiloo/bakehouse/internal/realtime"
	"github.com/polkiloo/bakehouse/internal/storage/postgres"
	"github.com/polkiloo/bakehouse/internal/usecase"
	"github.com/polkiloo/bakehouse/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewBakeryFacade,
		newHTTPServer,
		newStepRetrier,
		func(m *metrics.Metrics) usecase.Recorder { return m },
		func(s *postgres.Storage) HealthChecker { return s },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

type workerParams struct {
	fx.In

	Runner *usecase.StepRunner
	Config *config.Config
	Logger *slog.Logger
}

func newStepRetrier(p workerParams) *worker.StepRetrier {
	return worker.NewStepRetrier(
		p.Runner,
		p.Config.StepRetryInterval,
		p.Config.StepRetryBatch,
		p.Config.StepRetryWorkers,
		p.Logger,
	)
}

// Runner is a background loop that blocks until ctx is done.
type Runner interface {
	Run(ctx context.Context) error
}

// Relay forwards order changes to an external broker.
type Relay interface {
	Start() error
	Stop() error
}

type lifecycleParams struct {
	fx.In

	Ctx        context.Context
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.StepRetrier
	Listener   *realtime.Listener
	Relay      *realtime.Relay
	Hub        *realtime.Hub
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	registerHooks(hookParams{
		ctx:        p.Ctx,
		lifecycle:  p.Lifecycle,
		shutdowner: p.Shutdowner,
		logger:     p.Logger,
		server:     p.Server,
		worker:     p.Worker,
		listener:   p.Listener,
		relay:      p.Relay,
		hub:        p.Hub,
		timeout:    p.Config.ShutdownTimeout,
	})
}

type hookParams struct {
	ctx        context.Context
	lifecycle  fx.Lifecycle
	shutdowner fx.Shutdowner
	logger     *slog.Logger
	server     *http.Server
	worker     *worker.StepRetrier
	listener   Runner
	relay      Relay
	hub        *realtime.Hub
	timeout    time.Duration
}

func registerHooks(p hookParams) {
	// background loops outlive the OnStart context
	runCtx, cancel := context.WithCancel(p.ctx)
	listenerDone := make(chan struct{})
	// Shutdown ends open SSE streams first; other requests drain untouched.
	streamsCtx, stopStreams := context.WithCancel(p.ctx)
	p.server.RegisterOnShutdown(stopStreams)
	p.server.BaseContext = func(net.Listener) context.Context {
		return realtime.WithShutdown(p.ctx, streamsCtx)
	}

	p.lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.logger.Info("starting bakehouse", slog.String("addr", p.server.Addr))
			if err := p.relay.Start(); err != nil {
				cancel()
				stopStreams()
				return err
			}
			go func() {
				defer close(listenerDone)
				if err := p.listener.Run(runCtx); err != nil {
					p.logger.Error("notification listener stopped", slog.String("error", err.Error()))
				}
			}()
			p.worker.Start(runCtx)
			go func() {
				if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			stopTimeout := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, stopTimeout = context.WithTimeout(ctx, p.timeout)
			}
			defer stopTimeout()

			serverErr := p.server.Shutdown(shutdownCtx)
			stopStreams()
			cancel()

			p.worker.Stop()
			select {
			case <-listenerDone:
			case <-shutdownCtx.Done():
			}
			if err := p.relay.Stop(); err != nil {
				p.logger.Warn("relay stop failed", slog.String("error", err.Error()))
			}
			p.hub.Close()

			if serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
				return serverErr
			}
			p.logger.Info("bakehouse stopped")
			return nil
		},
	})
}
