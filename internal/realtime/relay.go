package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// amqpChannel is the subset of *amqp.Channel used by the relay.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var dialAMQP = func(url string) (amqpChannel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn.Close, nil
}

// OrderMessage is the body published for every order change.
type OrderMessage struct {
	Type            EventType `json:"type"`
	OrderID         int64     `json:"order_id"`
	CustomerID      int64     `json:"customer_id"`
	Status          string    `json:"status,omitempty"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	StatusChangedAt time.Time `json:"status_changed_at"`
}

func newOrderMessage(e Event) OrderMessage {
	msg := OrderMessage{Type: e.Type, OrderID: e.OrderID()}
	if e.New != nil {
		msg.CustomerID = e.New.CustomerID
		msg.Status = string(e.New.Status)
		msg.StatusChangedAt = e.New.StatusChangedAt
	}
	if e.Old != nil {
		msg.CustomerID = e.Old.CustomerID
		msg.PreviousStatus = string(e.Old.Status)
		if e.New == nil {
			msg.StatusChangedAt = e.Old.StatusChangedAt
		}
	}
	return msg
}

// Relay republishes order changes to a RabbitMQ fanout exchange for
// out-of-process consumers. It is disabled when no URL is configured.
type Relay struct {
	url      string
	exchange string
	hub      Subscriber
	logger   *slog.Logger

	mu     sync.Mutex
	ch     amqpChannel
	close  func() error
	subID  string
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRelay constructs Relay.
func NewRelay(url, exchange string, hub Subscriber, logger *slog.Logger) *Relay {
	return &Relay{url: url, exchange: exchange, hub: hub, logger: logger}
}

// Enabled reports whether a broker is configured.
func (r *Relay) Enabled() bool {
	return r.url != ""
}

// Start connects to the broker, declares the exchange and subscribes to the hub.
func (r *Relay) Start() error {
	if !r.Enabled() {
		r.logger.Info("order relay disabled")
		return nil
	}
	ch, closeConn, err := dialAMQP(r.url)
	if err != nil {
		return fmt.Errorf("connect broker: %w", err)
	}
	if err := ch.ExchangeDeclare(r.exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = closeConn()
		return fmt.Errorf("declare exchange %s: %w", r.exchange, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ch = ch
	r.close = closeConn
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.subID = r.hub.Subscribe(OrdersTable, Filter{Types: []EventType{EventInsert, EventUpdate, EventDelete}}, r.forward)
	r.logger.Info("order relay started", slog.String("exchange", r.exchange))
	return nil
}

// Stop unsubscribes and closes the broker connection.
func (r *Relay) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil {
		return nil
	}
	r.hub.Unsubscribe(r.subID)
	r.cancel()
	chErr := r.ch.Close()
	connErr := r.close()
	r.ch = nil
	if chErr != nil {
		return chErr
	}
	return connErr
}

func (r *Relay) forward(e Event) {
	if e.Type == EventResync {
		return
	}
	r.mu.Lock()
	ch, ctx := r.ch, r.ctx
	r.mu.Unlock()
	if ch == nil {
		return
	}
	if err := r.publish(ctx, ch, e); err != nil {
		r.logger.Error("relay order event failed",
			slog.Int64("order_id", e.OrderID()),
			slog.String("type", string(e.Type)),
			slog.String("error", err.Error()))
	}
}

func (r *Relay) publish(ctx context.Context, ch amqpChannel, e Event) error {
	body, err := json.Marshal(newOrderMessage(e))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return ch.PublishWithContext(ctx, r.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Type:         "order." + string(e.Type),
		Body:         body,
	})
}
