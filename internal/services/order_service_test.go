package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopcrew/go-shop-bots/internal/domain"
	"github.com/shopcrew/go-shop-bots/internal/repo"
)

// newTestDB opens a uniquely named shared-cache in-memory SQLite database so
// parallel tests never collide, and applies the schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newOrderService(t *testing.T) *OrderService {
	t.Helper()
	return &OrderService{
		DB:  newTestDB(t),
		Now: func() time.Time { return time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC) },
	}
}

func TestPlaceOrder(t *testing.T) {
	svc := newOrderService(t)
	ctx := context.Background()

	o, err := svc.Place(ctx, -100, 1, "jdoe", "2 coffees, 1 croissant")
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if o.ID == "" {
		t.Fatal("order id not assigned")
	}
	if o.Status != domain.OrderNew {
		t.Fatalf("status = %q, want new", o.Status)
	}
	if !o.Total.Equal(decimal.Zero) {
		t.Fatalf("total = %s, want 0", o.Total)
	}

	got, err := repo.GetOrder(ctx, svc.DB, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Items != "2 coffees, 1 croissant" || got.Username != "jdoe" {
		t.Fatalf("unexpected stored order: %+v", got)
	}
}

func TestPlaceOrder_Empty(t *testing.T) {
	svc := newOrderService(t)
	if _, err := svc.Place(context.Background(), -100, 1, "jdoe", "   "); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("got %v, want ErrEmptyOrder", err)
	}
}

func TestOrderLifecycle(t *testing.T) {
	svc := newOrderService(t)
	ctx := context.Background()

	o, _ := svc.Place(ctx, -100, 1, "jdoe", "tea")

	if got, err := svc.Confirm(ctx, o.ID); err != nil || got.Status != domain.OrderConfirmed {
		t.Fatalf("Confirm: %v, status %q", err, got.Status)
	}
	if err := svc.SetTotal(ctx, o.ID, decimal.RequireFromString("12.50")); err != nil {
		t.Fatalf("SetTotal: %v", err)
	}
	if got, err := svc.Complete(ctx, o.ID); err != nil || got.Status != domain.OrderDone {
		t.Fatalf("Complete: %v, status %q", err, got.Status)
	}

	got, err := repo.GetOrder(ctx, svc.DB, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if !got.Total.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("total = %s, want 12.50", got.Total)
	}
}

func TestOrderClosedStaysClosed(t *testing.T) {
	svc := newOrderService(t)
	ctx := context.Background()

	o, _ := svc.Place(ctx, -100, 1, "jdoe", "tea")
	if _, err := svc.Cancel(ctx, o.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := svc.Confirm(ctx, o.ID); !errors.Is(err, ErrOrderClosed) {
		t.Fatalf("Confirm after cancel: got %v, want ErrOrderClosed", err)
	}
	if err := svc.SetTotal(ctx, o.ID, decimal.RequireFromString("5")); !errors.Is(err, ErrOrderClosed) {
		t.Fatalf("SetTotal after cancel: got %v, want ErrOrderClosed", err)
	}
}

func TestOrderNotFound(t *testing.T) {
	svc := newOrderService(t)
	ctx := context.Background()

	if _, err := svc.Confirm(ctx, uuid.NewString()); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("got %v, want ErrOrderNotFound", err)
	}
	if err := svc.SetTotal(ctx, uuid.NewString(), decimal.Zero); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("got %v, want ErrOrderNotFound", err)
	}
}

func TestOpenOrders(t *testing.T) {
	svc := newOrderService(t)
	ctx := context.Background()

	first, _ := svc.Place(ctx, -100, 1, "jdoe", "tea")
	second, _ := svc.Place(ctx, -100, 2, "asmith", "coffee")
	third, _ := svc.Place(ctx, -100, 3, "bjones", "cake")

	if _, err := svc.Confirm(ctx, second.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := svc.Cancel(ctx, third.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	open, err := svc.Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("got %d open orders, want 2", len(open))
	}
	// Oldest first; the cancelled order is gone.
	if open[0].ID != first.ID || open[1].ID != second.ID {
		t.Fatalf("unexpected listing: %s, %s", open[0].ID, open[1].ID)
	}
}
