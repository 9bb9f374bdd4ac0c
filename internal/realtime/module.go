package realtime

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/bakehouse/internal/config"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
	"github.com/polkiloo/bakehouse/internal/metrics"
	"github.com/polkiloo/bakehouse/internal/session"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

// Module wires the hub, the LISTEN connection, the relay and the two views.
var Module = fx.Options(
	fx.Provide(
		newHub,
		newListener,
		newRelay,
		newTracker,
		newDashboard,
	),
)

func newHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return NewHub(logger, m)
}

func newListener(cfg *config.Config, hub *Hub, logger *slog.Logger) *Listener {
	return NewListener(cfg.DatabaseURI, hub, logger)
}

func newRelay(cfg *config.Config, hub *Hub, logger *slog.Logger) *Relay {
	return NewRelay(cfg.RabbitMQURL, cfg.OrderExchange, hub, logger)
}

type trackerParams struct {
	fx.In

	Config   *config.Config
	Orders   repository.OrderRepository
	Sessions *session.Manager
	History  *usecase.HistoryUseCase
	Hub      *Hub
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func newTracker(p trackerParams) *Tracker {
	t := NewTracker(p.Orders, p.Sessions, p.History, p.Hub, p.Logger, TrackerOptions{
		GracePeriod:    p.Config.TrackGracePeriod,
		ResyncInterval: p.Config.ResyncInterval,
		HistoryLimit:   p.Config.HistoryLimit,
	})
	p.Metrics.TrackedCustomers(t.Active)
	return t
}

func newDashboard(cfg *config.Config, orders repository.OrderRepository, hub *Hub, logger *slog.Logger) *Dashboard {
	return NewDashboard(orders, hub, logger, cfg.ResyncInterval)
}
