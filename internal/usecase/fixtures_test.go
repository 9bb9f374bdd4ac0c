package usecase

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/session"
	testhelpers "github.com/polkiloo/bakehouse/internal/test"
)

const customerID int64 = 1

// recorderStub counts observations by "operation/outcome" and step.
type recorderStub struct {
	mu    sync.Mutex
	ops   map[string]int
	steps map[string]int
}

func newRecorderStub() *recorderStub {
	return &recorderStub{ops: map[string]int{}, steps: map[string]int{}}
}

func (r *recorderStub) OrderOperation(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[operation+"/"+outcome]++
}

func (r *recorderStub) StepFailed(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps[step]++
}

func (r *recorderStub) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ops[key]
}

type fixture struct {
	customers *testhelpers.CustomerRepositoryStub
	catalog   *testhelpers.CatalogStub
	orders    *testhelpers.OrderRepositoryStub
	store     *testhelpers.SessionRepositoryStub
	stepRepo  *testhelpers.StepRepositoryStub
	recorder  *recorderStub
	settings  Settings

	sessions *session.Manager
	quoter   *Quoter
	cart     *CartUseCase
	runner   *StepRunner
	checkout *CheckoutUseCase
	orderUC  *OrderUseCase
	history  *HistoryUseCase
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newFixture() *fixture {
	f := &fixture{
		customers: testhelpers.NewCustomerRepositoryStub(),
		catalog:   testhelpers.NewCatalogStub(),
		orders:    testhelpers.NewOrderRepositoryStub(),
		store:     testhelpers.NewSessionRepositoryStub(),
		recorder:  newRecorderStub(),
		settings: Settings{
			DefaultDeliveryFee: dec("8.00"),
			PickupLocation:     "Retirada no balcão",
			HistoryLimit:       5,
			StepMaxAttempts:    3,
		},
	}
	f.stepRepo = testhelpers.NewStepRepositoryStub(f.catalog)

	f.customers.Put(model.Customer{
		ID:      customerID,
		Login:   "maria",
		Name:    "Maria",
		Phone:   "81 99999-0000",
		Address: model.Address{Street: "Rua das Flores", Number: "10", District: "Centro", City: "Recife"},
		Role:    model.RoleCustomer,
	})
	f.catalog.PutProduct(model.Product{
		ID:    1,
		Name:  "Bolo de cenoura",
		Price: dec("25.00"),
		Stock: 10,
		Options: []model.Option{
			{ID: 11, Group: "Cobertura", Name: "Chocolate", PriceDelta: dec("3.00")},
			{ID: 12, Group: "Cobertura", Name: "Doce de leite", PriceDelta: dec("4.00")},
			{ID: 13, Group: "Tamanho", Name: "Grande", PriceDelta: dec("10.00")},
		},
		Addons: []model.Addon{{ID: 21, Name: "Vela", PriceDelta: dec("1.50")}},
	})
	f.catalog.PutProduct(model.Product{ID: 2, Name: "Pão de queijo", Price: dec("2.50"), Stock: 3})
	f.catalog.Fees[model.NewFeeKey("Centro", "Recife")] = dec("5.00")
	f.catalog.PutCoupon(model.Coupon{Code: "BOLO10", Kind: model.DiscountPercentage, Magnitude: dec("10"), Active: true})

	f.sessions = session.NewManager(f.store)
	f.quoter = NewQuoter(f.catalog, f.settings)
	f.cart = NewCartUseCase(f.sessions, f.catalog, f.catalog, f.customers, f.quoter)
	f.runner = NewStepRunner(f.stepRepo, discardLogger(), f.recorder, f.settings)
	f.checkout = NewCheckoutUseCase(f.sessions, f.customers, f.catalog, f.orders, f.runner, f.quoter, f.settings, discardLogger(), f.recorder)
	f.orderUC = NewOrderUseCase(f.orders, f.recorder)
	f.history = NewHistoryUseCase(f.orders, f.catalog, f.sessions, f.settings)
	return f
}

func ptrInt(v int) *int {
	return &v
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
