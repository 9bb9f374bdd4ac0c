package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/polkiloo/bakehouse/internal/app"
	"github.com/polkiloo/bakehouse/internal/config"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
	"github.com/polkiloo/bakehouse/internal/realtime"
	"github.com/polkiloo/bakehouse/internal/storage/postgres"
	"github.com/polkiloo/bakehouse/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:         ":0",
		DatabaseURI:        "postgres://stub",
		JWTSecret:          "secret",
		TokenTTL:           time.Hour,
		ShutdownTimeout:    time.Millisecond,
		DefaultDeliveryFee: decimal.RequireFromString("5"),
		TrackGracePeriod:   time.Second,
		ResyncInterval:     time.Second,
		HistoryLimit:       5,
		StepRetryInterval:  time.Second,
		StepRetryBatch:     1,
		StepRetryWorkers:   1,
		StepMaxAttempts:    3,
		OrderExchange:      "bakehouse.orders",
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	catalog := test.NewCatalogStub()

	var (
		facade   *app.BakeryFacade
		engine   *gin.Engine
		tracker  *realtime.Tracker
		listener *realtime.Listener
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.CustomerRepository(test.NewCustomerRepositoryStub())),
			fx.Replace(repository.ProductRepository(catalog)),
			fx.Replace(repository.CouponRepository(catalog)),
			fx.Replace(repository.DeliveryFeeRepository(catalog)),
			fx.Replace(repository.OrderRepository(test.NewOrderRepositoryStub())),
			fx.Replace(repository.StepRepository(test.NewStepRepositoryStub(catalog))),
			fx.Replace(repository.SessionRepository(test.NewSessionRepositoryStub())),
		),
		fx.Populate(&facade, &engine, &tracker, &listener),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	if facade == nil || engine == nil || tracker == nil || listener == nil {
		t.Fatal("expected bakehouse graph to be populated")
	}
}
