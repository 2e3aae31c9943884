// Package services – OrderService
//
// This file implements order intake for the shop bot. Orders carry the raw
// text the customer typed; staff later confirm, price, complete, or cancel
// them. Status changes mirror the holiday state machine: one path forward,
// closed orders stay closed.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcrew/go-shop-bots/internal/domain"
	"github.com/shopcrew/go-shop-bots/internal/repo"
)

// OrderService implements the use-cases around customer orders.
type OrderService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Place records a new order. Returns ErrEmptyOrder when items is blank.
func (s *OrderService) Place(ctx context.Context, chatID, userID int64, username, items string) (*domain.Order, error) {
	items = strings.TrimSpace(items)
	if items == "" {
		return nil, ErrEmptyOrder
	}

	o := &domain.Order{
		ID:       uuid.NewString(),
		ChatID:   chatID,
		UserID:   userID,
		Username: username,
		Items:    items,
		Total:    decimal.Zero,
		Status:   domain.OrderNew,
	}
	if err := repo.CreateOrder(ctx, s.DB, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Confirm moves a new order to confirmed.
func (s *OrderService) Confirm(ctx context.Context, id string) (*domain.Order, error) {
	return s.advance(ctx, id, domain.OrderConfirmed)
}

// Complete moves an order to done.
func (s *OrderService) Complete(ctx context.Context, id string) (*domain.Order, error) {
	return s.advance(ctx, id, domain.OrderDone)
}

// Cancel moves an open order to cancelled.
func (s *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	return s.advance(ctx, id, domain.OrderCancelled)
}

// advance applies a status change inside a transaction so the closed-state
// check and the update are atomic.
func (s *OrderService) advance(ctx context.Context, id, status string) (*domain.Order, error) {
	var out *domain.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := repo.GetOrder(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if o.Status == domain.OrderDone || o.Status == domain.OrderCancelled {
			return ErrOrderClosed
		}
		if err := repo.UpdateOrderStatus(ctx, tx, id, status); err != nil {
			return err
		}
		o.Status = status
		out = o
		return nil
	})
	return out, err
}

// SetTotal prices an open order.
func (s *OrderService) SetTotal(ctx context.Context, id string, total decimal.Decimal) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := repo.GetOrder(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if o.Status == domain.OrderDone || o.Status == domain.OrderCancelled {
			return ErrOrderClosed
		}
		return repo.SetOrderTotal(ctx, tx, id, total)
	})
}

// Open lists orders still needing attention, oldest first.
func (s *OrderService) Open(ctx context.Context) ([]domain.Order, error) {
	return repo.ListOpenOrders(ctx, s.DB)
}
