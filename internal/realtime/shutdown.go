package realtime

import "context"

type shutdownKey struct{}

// WithShutdown attaches the server shutdown signal to a base request context.
// Only streams watch it; ordinary requests keep running while the server drains.
func WithShutdown(ctx, shutdown context.Context) context.Context {
	return context.WithValue(ctx, shutdownKey{}, shutdown)
}

// StreamContext derives the context of a long-lived stream. It is done when
// the request ends or when the shutdown signal attached by WithShutdown fires.
func StreamContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	shutdown, ok := ctx.Value(shutdownKey{}).(context.Context)
	if !ok {
		return ctx, cancel
	}
	stop := context.AfterFunc(shutdown, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
