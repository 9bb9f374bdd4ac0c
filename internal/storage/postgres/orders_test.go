package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

var orderColumnNames = []string{"id", "customer_id", "customer_name", "customer_phone", "address", "mode", "payment_method",
	"change_for", "total", "description", "lines", "status", "idempotency_key", "created_at", "status_changed_at"}

const linesJSON = `[{"product_id":1,"product_name":"Bolo","quantity":2,"unit_price":"25"}]`

func orderRow(rows *pgxmockv3.Rows, id int64, status model.OrderStatus, at time.Time) *pgxmockv3.Rows {
	return rows.AddRow(id, int64(1), "Maria", "8199", "Rua das Flores, 10 - Centro - Recife",
		model.DeliveryModeDeliver, model.PaymentCash, "100.00", "55.00", "2x Bolo", []byte(linesJSON),
		string(status), "key-1", at, at)
}

func sampleOrder() model.Order {
	return model.Order{
		CustomerID:     1,
		CustomerName:   "Maria",
		CustomerPhone:  "8199",
		Address:        "Rua das Flores, 10 - Centro - Recife",
		Mode:           model.DeliveryModeDeliver,
		PaymentMethod:  model.PaymentCash,
		ChangeFor:      decimal.RequireFromString("100"),
		Total:          decimal.RequireFromString("55"),
		Description:    "2x Bolo",
		Lines:          []model.OrderLine{{ProductID: 1, ProductName: "Bolo", Quantity: 2, UnitPrice: decimal.RequireFromString("25")}},
		IdempotencyKey: "key-1",
	}
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()
	now := time.Now()

	insertArgs := []any{int64(1), "Maria", "8199", "Rua das Flores, 10 - Centro - Recife", "deliver", "cash",
		"100.00", "55.00", "2x Bolo", linesJSON, "novo", "key-1"}

	t.Run("created", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs...).
			WillReturnRows(pgxmockv3.NewRows([]string{"id", "status", "created_at", "status_changed_at"}).
				AddRow(int64(7), model.OrderStatusNew, now, now))
		order, created, err := repo.Create(ctx, sampleOrder())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created || order.ID != 7 || order.Status != model.OrderStatusNew {
			t.Fatalf("unexpected result %+v created=%v", order, created)
		}
	})

	t.Run("duplicate idempotency key", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs...).WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("FROM orders WHERE customer_id=\\$1 AND idempotency_key").WithArgs(int64(1), "key-1").
			WillReturnRows(orderRow(pgxmockv3.NewRows(orderColumnNames), 7, model.OrderStatusPreparing, now))
		order, created, err := repo.Create(ctx, sampleOrder())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created || order.ID != 7 || order.Status != model.OrderStatusPreparing {
			t.Fatalf("expected existing order, got %+v created=%v", order, created)
		}
		if len(order.Lines) != 1 || order.Lines[0].Quantity != 2 {
			t.Fatalf("expected decoded lines, got %+v", order.Lines)
		}
	})

	t.Run("same key from another customer", func(t *testing.T) {
		other := sampleOrder()
		other.CustomerID = 2
		args := append([]any{int64(2)}, insertArgs[1:]...)
		mock.ExpectQuery(`ON CONFLICT \(customer_id, idempotency_key\)`).WithArgs(args...).
			WillReturnRows(pgxmockv3.NewRows([]string{"id", "status", "created_at", "status_changed_at"}).
				AddRow(int64(8), model.OrderStatusNew, now, now))
		order, created, err := repo.Create(ctx, other)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created || order.ID != 8 || order.CustomerID != 2 {
			t.Fatalf("expected a new order for customer 2, got %+v created=%v", order, created)
		}
	})

	t.Run("insert error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO orders").WithArgs(insertArgs...).WillReturnError(errors.New("boom"))
		if _, _, err := repo.Create(ctx, sampleOrder()); err == nil {
			t.Fatal("expected error")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetAndList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE id").WithArgs(int64(7)).
		WillReturnRows(orderRow(pgxmockv3.NewRows(orderColumnNames), 7, model.OrderStatusReady, now))
	order, err := repo.GetByID(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Total.StringFixed(2) != "55.00" || order.ChangeFor.StringFixed(2) != "100.00" || order.Mode != model.DeliveryModeDeliver {
		t.Fatalf("unexpected order %+v", order)
	}

	mock.ExpectQuery("FROM orders WHERE id").WithArgs(int64(8)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(ctx, 8); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	rows := pgxmockv3.NewRows(orderColumnNames)
	orderRow(rows, 9, model.OrderStatusNew, now)
	orderRow(rows, 7, model.OrderStatusDelivered, now.Add(-time.Hour))
	mock.ExpectQuery("FROM orders WHERE customer_id").WithArgs(int64(1), 5).WillReturnRows(rows)
	list, err := repo.ListByCustomer(ctx, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != 9 {
		t.Fatalf("unexpected list %+v", list)
	}

	from, to := now.Add(-24*time.Hour), now
	mock.ExpectQuery("FROM orders WHERE created_at").WithArgs(from, to).
		WillReturnRows(pgxmockv3.NewRows(orderColumnNames))
	window, err := repo.ListWindow(ctx, from, to)
	if err != nil || len(window) != 0 {
		t.Fatalf("expected empty window, got %v, %v", window, err)
	}

	mock.ExpectQuery("FROM orders WHERE customer_id").WithArgs(int64(1), 5).WillReturnError(errors.New("boom"))
	if _, err := repo.ListByCustomer(ctx, 1, 5); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows")}}}
	if _, err := storage.Orders().ListWindow(context.Background(), time.Now(), time.Now()); err == nil {
		t.Fatal("expected rows error")
	}
}

func TestOrderRepositoryUpdateStatusIf(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()

	mock.ExpectExec("UPDATE orders SET status").WithArgs(int64(7), "novo", "preparando").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	n, err := repo.UpdateStatusIf(ctx, 7, model.OrderStatusNew, model.OrderStatusPreparing)
	if err != nil || n != 1 {
		t.Fatalf("expected one affected row, got %d, %v", n, err)
	}

	mock.ExpectExec("UPDATE orders SET status").WithArgs(int64(7), "novo", "cancelado").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	n, err = repo.UpdateStatusIf(ctx, 7, model.OrderStatusNew, model.OrderStatusCancelled)
	if err != nil || n != 0 {
		t.Fatalf("expected lost race to affect no rows, got %d, %v", n, err)
	}

	mock.ExpectExec("UPDATE orders SET status").WithArgs(int64(7), "pronto", "entregue").
		WillReturnError(errors.New("boom"))
	if _, err := repo.UpdateStatusIf(ctx, 7, model.OrderStatusReady, model.OrderStatusDelivered); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetByIdempotencyKey(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("FROM orders WHERE customer_id=\\$1 AND idempotency_key").WithArgs(int64(1), "key-1").
		WillReturnRows(orderRow(pgxmockv3.NewRows(orderColumnNames), 7, model.OrderStatusNew, now))
	order, err := repo.GetByIdempotencyKey(ctx, 1, "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != 7 || order.IdempotencyKey != "key-1" {
		t.Fatalf("unexpected order %+v", order)
	}

	mock.ExpectQuery("FROM orders WHERE customer_id=\\$1 AND idempotency_key").WithArgs(int64(2), "key-1").
		WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByIdempotencyKey(ctx, 2, "key-1"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for another customer, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryRejectsUnknownStatus(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()

	mock.ExpectQuery("FROM orders WHERE id").WithArgs(int64(7)).
		WillReturnRows(orderRow(pgxmockv3.NewRows(orderColumnNames), 7, model.OrderStatus("extraviado"), time.Now()))
	if _, err := storage.Orders().GetByID(context.Background(), 7); err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
