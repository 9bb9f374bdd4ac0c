package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu            sync.Mutex
	notifications chan *pgconn.Notification
	execs         []string
	closed        bool
}

func newFakeConn(payloads ...string) *fakeConn {
	c := &fakeConn{notifications: make(chan *pgconn.Notification, len(payloads)+1)}
	for _, p := range payloads {
		c.notifications <- &pgconn.Notification{Channel: NotifyChannel, Payload: p}
	}
	return c
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, sql)
	return pgconn.NewCommandTag("LISTEN"), nil
}

func (c *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case n, ok := <-c.notifications:
		if !ok {
			return nil, errors.New("connection lost")
		}
		return n, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type recordingPublisher struct {
	events chan Event
}

func (p *recordingPublisher) Publish(e Event) { p.events <- e }

func stubConnect(t *testing.T, fn func(ctx context.Context, dsn string) (notificationConn, error)) {
	t.Helper()
	original := connectListener
	t.Cleanup(func() { connectListener = original })
	connectListener = fn
}

func fastBackoff() retry.Backoff {
	return retry.NewConstant(time.Millisecond)
}

func TestListenerPublishesDecodedNotifications(t *testing.T) {
	conn := newFakeConn(
		`{"op":"insert","table":"orders","id":1,"status":"novo"}`,
		`not json`,
		`{"op":"update","table":"orders","id":1,"status":"preparando","old_status":"novo"}`,
	)
	conn.notifications <- &pgconn.Notification{Channel: "other", Payload: `{"op":"insert","id":2}`}
	stubConnect(t, func(context.Context, string) (notificationConn, error) { return conn, nil })

	pub := &recordingPublisher{events: make(chan Event, 8)}
	l := NewListener("postgres://stub", pub, discardLogger())
	l.backoff = fastBackoff

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Equal(t, EventInsert, recv(t, pub.events).Type)
	require.Equal(t, EventUpdate, recv(t, pub.events).Type)
	cancel()
	require.NoError(t, recv(t, done))

	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.Equal(t, []string{`LISTEN "order_changes"`}, conn.execs)
	require.True(t, conn.closed)
	require.Len(t, pub.events, 0, "malformed and foreign notifications are skipped")
}

func TestListenerReconnectsAndRequestsResync(t *testing.T) {
	first := newFakeConn(`{"op":"insert","table":"orders","id":1,"status":"novo"}`)
	close(first.notifications)
	second := newFakeConn(`{"op":"insert","table":"orders","id":2,"status":"novo"}`)

	var mu sync.Mutex
	attempts := 0
	stubConnect(t, func(context.Context, string) (notificationConn, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		switch attempts {
		case 1:
			return first, nil
		case 2:
			return nil, errors.New("db restarting")
		default:
			return second, nil
		}
	})

	pub := &recordingPublisher{events: make(chan Event, 8)}
	l := NewListener("postgres://stub", pub, discardLogger())
	l.backoff = fastBackoff

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Equal(t, int64(1), recv(t, pub.events).OrderID())
	require.Equal(t, EventResync, recv(t, pub.events).Type)
	require.Equal(t, int64(2), recv(t, pub.events).OrderID())
	cancel()
	require.NoError(t, recv(t, done))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 3, attempts)
}

func TestListenerStopsWhileConnecting(t *testing.T) {
	stubConnect(t, func(context.Context, string) (notificationConn, error) {
		return nil, errors.New("refused")
	})
	l := NewListener("postgres://stub", &recordingPublisher{events: make(chan Event, 1)}, discardLogger())
	l.backoff = fastBackoff

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, l.Run(ctx))
}
