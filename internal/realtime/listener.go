package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

// NotifyChannel is the Postgres channel the orders trigger notifies on.
const NotifyChannel = "order_changes"

const (
	reconnectBase = 200 * time.Millisecond
	reconnectCap  = 30 * time.Second
)

// notificationConn is the subset of *pgx.Conn used for LISTEN.
type notificationConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var connectListener = func(ctx context.Context, dsn string) (notificationConn, error) {
	return pgx.Connect(ctx, dsn)
}

// Publisher receives decoded events.
type Publisher interface {
	Publish(Event)
}

// Listener holds a dedicated LISTEN connection and feeds the hub. A dropped
// connection is re-established with capped exponential backoff, after which a
// resync event is published because notifications sent meanwhile are lost.
type Listener struct {
	dsn     string
	hub     Publisher
	logger  *slog.Logger
	backoff func() retry.Backoff
}

// NewListener constructs Listener.
func NewListener(dsn string, hub Publisher, logger *slog.Logger) *Listener {
	return &Listener{
		dsn:    dsn,
		hub:    hub,
		logger: logger,
		backoff: func() retry.Backoff {
			return retry.WithCappedDuration(reconnectCap, retry.WithJitterPercent(10, retry.NewExponential(reconnectBase)))
		},
	}
}

// Run listens until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	connected := false
	for {
		conn, err := l.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if connected {
			l.logger.Info("notification listener reconnected")
			l.hub.Publish(Event{Type: EventResync, Table: OrdersTable})
		}
		connected = true

		err = l.consume(ctx, conn)
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = conn.Close(closeCtx)
		cancel()
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("notification channel dropped", slog.String("error", err.Error()))
	}
}

func (l *Listener) connect(ctx context.Context) (notificationConn, error) {
	return retry.DoValue(ctx, l.backoff(), func(ctx context.Context) (notificationConn, error) {
		conn, err := connectListener(ctx, l.dsn)
		if err != nil {
			l.logger.Warn("notification listener connect failed", slog.String("error", err.Error()))
			return nil, retry.RetryableError(err)
		}
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
			_ = conn.Close(ctx)
			l.logger.Warn("notification listen failed", slog.String("error", err.Error()))
			return nil, retry.RetryableError(err)
		}
		return conn, nil
	})
}

func (l *Listener) consume(ctx context.Context, conn notificationConn) error {
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		if n.Channel != NotifyChannel {
			continue
		}
		e, err := DecodeNotification(n.Payload)
		if err != nil {
			l.logger.Error("skip malformed notification", slog.String("error", err.Error()))
			continue
		}
		l.hub.Publish(e)
	}
}
