package test

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// CustomerRepositoryStub stores customers in-memory for tests.
type CustomerRepositoryStub struct {
	mu      sync.Mutex
	ByLogin map[string]*model.Customer
	ByID    map[int64]*model.Customer
	Next    int64
	Err     error
}

// NewCustomerRepositoryStub constructs stub repository with initialized maps.
func NewCustomerRepositoryStub() *CustomerRepositoryStub {
	return &CustomerRepositoryStub{
		ByLogin: make(map[string]*model.Customer),
		ByID:    make(map[int64]*model.Customer),
		Next:    1,
	}
}

// Create registers customer unless the login is taken or stub has explicit error.
func (s *CustomerRepositoryStub) Create(ctx context.Context, c model.Customer) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if _, exists := s.ByLogin[c.Login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	c.ID = s.Next
	s.Next++
	if c.Role == "" {
		c.Role = model.RoleCustomer
	}
	stored := c
	s.ByLogin[c.Login] = &stored
	s.ByID[c.ID] = &stored
	return &c, nil
}

// Put seeds a customer directly.
func (s *CustomerRepositoryStub) Put(c model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := c
	s.ByLogin[c.Login] = &stored
	s.ByID[c.ID] = &stored
}

// GetByLogin fetches customer by login or returns not found.
func (s *CustomerRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if c, ok := s.ByLogin[login]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches customer by identifier or returns not found.
func (s *CustomerRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if c, ok := s.ByID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// UpdateProfile replaces the profile fields of a stored customer.
func (s *CustomerRepositoryStub) UpdateProfile(ctx context.Context, id int64, name, phone string, address model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	c, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	c.Name = name
	c.Phone = phone
	c.Address = address
	return nil
}

// CatalogStub serves products, coupons, fee overrides and stock in memory.
type CatalogStub struct {
	mu        sync.Mutex
	Products  map[int64]*model.Product
	Coupons   map[string]*model.Coupon
	Fees      map[model.FeeKey]decimal.Decimal
	Err       error
	CouponErr error
}

// NewCatalogStub constructs an empty catalog.
func NewCatalogStub() *CatalogStub {
	return &CatalogStub{
		Products: make(map[int64]*model.Product),
		Coupons:  make(map[string]*model.Coupon),
		Fees:     make(map[model.FeeKey]decimal.Decimal),
	}
}

// PutProduct seeds a product.
func (s *CatalogStub) PutProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.Products[p.ID] = &cp
}

// PutCoupon seeds a coupon.
func (s *CatalogStub) PutCoupon(c model.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := c
	s.Coupons[model.NormalizeCouponCode(c.Code)] = &cp
}

// Stock returns the current stock of a product.
func (s *CatalogStub) Stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Products[id]; ok {
		return p.Stock
	}
	return 0
}

// CouponUses returns the usage counter of a coupon.
func (s *CatalogStub) CouponUses(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.Coupons[model.NormalizeCouponCode(code)]; ok {
		return c.Uses
	}
	return 0
}

// List returns products ordered by id.
func (s *CatalogStub) List(ctx context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Product, 0, len(s.Products))
	for _, p := range s.Products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID fetches a product.
func (s *CatalogStub) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if p, ok := s.Products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByCode fetches a coupon by case-insensitive code.
func (s *CatalogStub) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CouponErr != nil {
		return nil, s.CouponErr
	}
	if c, ok := s.Coupons[model.NormalizeCouponCode(code)]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Overrides returns the fee override table.
func (s *CatalogStub) Overrides(ctx context.Context) (map[model.FeeKey]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[model.FeeKey]decimal.Decimal, len(s.Fees))
	for k, v := range s.Fees {
		out[k] = v
	}
	return out, nil
}

// DecrementStock lowers the stock of a product, never below zero.
func (s *CatalogStub) DecrementStock(id int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Products[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	return nil
}

// ConsumeCoupon increments the usage counter while uses remain.
func (s *CatalogStub) ConsumeCoupon(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Coupons[model.NormalizeCouponCode(code)]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if c.MaxUses != nil && c.Uses >= *c.MaxUses {
		return nil
	}
	c.Uses++
	return nil
}

// OrderRepositoryStub keeps orders in memory with a guarded status update.
type OrderRepositoryStub struct {
	mu        sync.Mutex
	Orders    map[int64]*model.Order
	Next      int64
	CreateErr error
	GetErr    error
	UpdateErr error
	Now       func() time.Time
}

// NewOrderRepositoryStub constructs an empty order store.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[int64]*model.Order), Next: 1}
}

func (s *OrderRepositoryStub) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Put seeds an order directly.
func (s *OrderRepositoryStub) Put(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := o
	s.Orders[o.ID] = &cp
	if o.ID >= s.Next {
		s.Next = o.ID + 1
	}
}

// Delete removes an order.
func (s *OrderRepositoryStub) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Orders, id)
}

// Create inserts the order honoring the idempotency key.
func (s *OrderRepositoryStub) Create(ctx context.Context, o model.Order) (*model.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, false, s.CreateErr
	}
	if o.IdempotencyKey != "" {
		for _, existing := range s.Orders {
			if existing.CustomerID == o.CustomerID && existing.IdempotencyKey == o.IdempotencyKey {
				cp := *existing
				return &cp, false, nil
			}
		}
	}
	if s.Next == 0 {
		s.Next = 1
	}
	o.ID = s.Next
	s.Next++
	now := s.now()
	o.CreatedAt = now
	o.StatusChangedAt = now
	stored := o
	s.Orders[o.ID] = &stored
	return &o, true, nil
}

// GetByIdempotencyKey finds an order by its owner and key.
func (s *OrderRepositoryStub) GetByIdempotencyKey(ctx context.Context, customerID int64, key string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	for _, o := range s.Orders {
		if o.CustomerID == customerID && o.IdempotencyKey == key {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches an order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	if o, ok := s.Orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByCustomer returns the newest orders of a customer first.
func (s *OrderRepositoryStub) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	var out []model.Order
	for _, o := range s.Orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListWindow returns orders created within [from, to).
func (s *OrderRepositoryStub) ListWindow(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	var out []model.Order
	for _, o := range s.Orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateStatusIf applies the transition only while the stored status equals from.
func (s *OrderRepositoryStub) UpdateStatusIf(ctx context.Context, id int64, from, to model.OrderStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return 0, s.UpdateErr
	}
	o, ok := s.Orders[id]
	if !ok || o.Status != from {
		return 0, nil
	}
	o.Status = to
	o.StatusChangedAt = s.now()
	return 1, nil
}

// SessionRepositoryStub stores serialized sessions in memory.
type SessionRepositoryStub struct {
	mu      sync.Mutex
	States  map[int64]model.SessionState
	SaveErr error
	LoadErr error
	Saves   int
}

// NewSessionRepositoryStub constructs an empty session store.
func NewSessionRepositoryStub() *SessionRepositoryStub {
	return &SessionRepositoryStub{States: make(map[int64]model.SessionState)}
}

// Load returns the stored session or not found.
func (s *SessionRepositoryStub) Load(ctx context.Context, customerID int64) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	st, ok := s.States[customerID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cp := st
	cp.Cart = append(json.RawMessage(nil), st.Cart...)
	return &cp, nil
}

// Save stores a copy of the session.
func (s *SessionRepositoryStub) Save(ctx context.Context, state model.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	state.Cart = append(json.RawMessage(nil), state.Cart...)
	s.States[state.CustomerID] = state
	s.Saves++
	return nil
}

// Delete removes a session.
func (s *SessionRepositoryStub) Delete(ctx context.Context, customerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.States[customerID]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.States, customerID)
	return nil
}

// StepRepositoryStub records saga steps and applies them against a CatalogStub.
type StepRepositoryStub struct {
	mu      sync.Mutex
	Catalog *CatalogStub
	Steps   map[int64]*model.OrderStep
	Next    int64
	// FailApply makes Apply fail for the named steps.
	FailApply map[string]error
}

// NewStepRepositoryStub constructs a step log bound to catalog.
func NewStepRepositoryStub(catalog *CatalogStub) *StepRepositoryStub {
	return &StepRepositoryStub{Catalog: catalog, Steps: make(map[int64]*model.OrderStep), Next: 1, FailApply: map[string]error{}}
}

// Record stores a new step.
func (s *StepRepositoryStub) Record(ctx context.Context, step model.OrderStep) (*model.OrderStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step.ID = s.Next
	s.Next++
	cp := step
	s.Steps[step.ID] = &cp
	return &step, nil
}

// Apply runs the step side effect once.
func (s *StepRepositoryStub) Apply(ctx context.Context, stepID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.Steps[stepID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if step.Status == model.StepDone {
		return nil
	}
	if err := s.FailApply[step.Step]; err != nil {
		return err
	}
	switch {
	case model.IsDecrementStock(step.Step):
		if err := s.Catalog.DecrementStock(step.ProductID, step.Quantity); err != nil {
			return err
		}
	case step.Step == model.StepConsumeCoupon:
		if err := s.Catalog.ConsumeCoupon(step.CouponCode); err != nil {
			return err
		}
	}
	step.Status = model.StepDone
	return nil
}

// MarkFailed records a failed attempt.
func (s *StepRepositoryStub) MarkFailed(ctx context.Context, stepID int64, cause string, maxAttempts int) (model.StepStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step, ok := s.Steps[stepID]
	if !ok {
		return "", domainErrors.ErrNotFound
	}
	step.Attempts++
	step.LastError = cause
	step.Status = model.StepFailed
	if step.Attempts >= maxAttempts {
		step.Status = model.StepAbandoned
	}
	return step.Status, nil
}

// ListRetryable returns failed steps.
func (s *StepRepositoryStub) ListRetryable(ctx context.Context, limit int) ([]model.OrderStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.OrderStep
	for _, st := range s.Steps {
		if st.Status == model.StepFailed {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListByOrder returns the steps of an order in insertion order.
func (s *StepRepositoryStub) ListByOrder(ctx context.Context, orderID int64) ([]model.OrderStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.OrderStep
	for _, st := range s.Steps {
		if st.OrderID == orderID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
