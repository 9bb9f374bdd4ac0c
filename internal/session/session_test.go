package session

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/bakehouse/internal/domain/model"
	testhelpers "github.com/polkiloo/bakehouse/internal/test"
)

func bolo() model.Product {
	return model.Product{ID: 1, Name: "Bolo", Price: decimal.RequireFromString("25.00"), Stock: 3}
}

func TestGetReturnsEmptySessionWhenMissing(t *testing.T) {
	m := NewManager(testhelpers.NewSessionRepositoryStub())
	s, err := m.Get(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CustomerID != 9 || !s.Cart.IsEmpty() || s.TrackedOrderID != nil {
		t.Fatalf("expected empty session, got %+v", s)
	}
}

func TestUpdatePersistsOnlySuccessfulMutations(t *testing.T) {
	store := testhelpers.NewSessionRepositoryStub()
	m := NewManager(store)
	ctx := context.Background()

	if _, err := m.Update(ctx, 1, func(s *Session) error {
		return s.Cart.AddItem(bolo(), model.Customization{})
	}); err != nil {
		t.Fatalf("add item: %v", err)
	}

	boom := errors.New("rejected")
	if _, err := m.Update(ctx, 1, func(s *Session) error {
		s.Cart.Clear()
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected mutation error, got %v", err)
	}

	s, err := m.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Cart.ItemCount() != 1 {
		t.Fatalf("expected rejected mutation to leave cart intact, got %d items", s.Cart.ItemCount())
	}
	if store.Saves != 1 {
		t.Fatalf("expected one save, got %d", store.Saves)
	}
}

func TestTrackedOrderHandle(t *testing.T) {
	m := NewManager(testhelpers.NewSessionRepositoryStub())
	ctx := context.Background()

	if err := m.TrackOrder(ctx, 1, 42); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := m.ClearTrackedOrder(ctx, 1, 41); err != nil {
		t.Fatalf("clear other: %v", err)
	}
	s, _ := m.Get(ctx, 1)
	if s.TrackedOrderID == nil || *s.TrackedOrderID != 42 {
		t.Fatalf("clearing a different order must keep the handle, got %v", s.TrackedOrderID)
	}

	if err := m.ClearTrackedOrder(ctx, 1, 42); err != nil {
		t.Fatalf("clear: %v", err)
	}
	s, _ = m.Get(ctx, 1)
	if s.TrackedOrderID != nil {
		t.Fatalf("expected handle cleared, got %v", *s.TrackedOrderID)
	}
}

func TestDestroyRemovesSession(t *testing.T) {
	store := testhelpers.NewSessionRepositoryStub()
	m := NewManager(store)
	ctx := context.Background()
	if err := m.TrackOrder(ctx, 3, 1); err != nil {
		t.Fatalf("track: %v", err)
	}
	if err := m.Destroy(ctx, 3); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := m.Destroy(ctx, 3); err != nil {
		t.Fatalf("destroying a missing session must succeed, got %v", err)
	}
	if _, ok := store.States[3]; ok {
		t.Fatal("expected session removed")
	}
}

func TestLoadErrorIsWrapped(t *testing.T) {
	store := testhelpers.NewSessionRepositoryStub()
	store.LoadErr = errors.New("db down")
	m := NewManager(store)
	if _, err := m.Get(context.Background(), 1); err == nil || !errors.Is(err, store.LoadErr) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
}
