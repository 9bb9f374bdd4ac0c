// Package session owns the per-customer session: cart, applied coupon and the
// single order the customer is tracking.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/polkiloo/bakehouse/internal/cart"
	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
)

// Session is the explicit session context handed to every component.
type Session struct {
	CustomerID     int64
	Cart           *cart.Cart
	TrackedOrderID *int64
	UpdatedAt      time.Time
}

// Manager loads, mutates and persists sessions. Mutations of one customer are serialized.
type Manager struct {
	store repository.SessionRepository
	now   func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewManager constructs Manager.
func NewManager(store repository.SessionRepository) *Manager {
	return &Manager{store: store, now: time.Now, locks: make(map[int64]*sync.Mutex)}
}

// Get returns the current session, creating an empty one when none is stored.
func (m *Manager) Get(ctx context.Context, customerID int64) (*Session, error) {
	lock := m.lockFor(customerID)
	lock.Lock()
	defer lock.Unlock()
	return m.load(ctx, customerID)
}

// Update applies fn to the session and persists it only when fn succeeds,
// so a rejected mutation leaves the stored cart untouched.
func (m *Manager) Update(ctx context.Context, customerID int64, fn func(*Session) error) (*Session, error) {
	lock := m.lockFor(customerID)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// TrackOrder makes orderID the tracked order of the session.
func (m *Manager) TrackOrder(ctx context.Context, customerID, orderID int64) error {
	_, err := m.Update(ctx, customerID, func(s *Session) error {
		s.TrackedOrderID = &orderID
		return nil
	})
	return err
}

// ClearTrackedOrder drops the tracked order handle if it still points at orderID.
func (m *Manager) ClearTrackedOrder(ctx context.Context, customerID, orderID int64) error {
	_, err := m.Update(ctx, customerID, func(s *Session) error {
		if s.TrackedOrderID != nil && *s.TrackedOrderID == orderID {
			s.TrackedOrderID = nil
		}
		return nil
	})
	return err
}

// Destroy tears the session down on logout.
func (m *Manager) Destroy(ctx context.Context, customerID int64) error {
	lock := m.lockFor(customerID)
	lock.Lock()
	defer lock.Unlock()
	if err := m.store.Delete(ctx, customerID); err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return err
	}
	return nil
}

func (m *Manager) load(ctx context.Context, customerID int64) (*Session, error) {
	state, err := m.store.Load(ctx, customerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return &Session{CustomerID: customerID, Cart: &cart.Cart{}}, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	c, err := cart.Unmarshal(state.Cart)
	if err != nil {
		return nil, err
	}
	return &Session{
		CustomerID:     customerID,
		Cart:           c,
		TrackedOrderID: state.TrackedOrderID,
		UpdatedAt:      state.UpdatedAt,
	}, nil
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	data, err := s.Cart.Marshal()
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	s.UpdatedAt = m.now()
	state := model.SessionState{
		CustomerID:     s.CustomerID,
		Cart:           data,
		TrackedOrderID: s.TrackedOrderID,
		UpdatedAt:      s.UpdatedAt,
	}
	if err := m.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *Manager) lockFor(customerID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[customerID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[customerID] = l
	}
	return l
}
