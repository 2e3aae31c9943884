package repo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcrew/go-shop-bots/internal/domain"
)

// ErrNotFound is the repo-level sentinel for a missing record. Services map
// it to their own error vocabulary.
var ErrNotFound = errors.New("record not found")

// CreateOrder inserts a new order row.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	return db.WithContext(ctx).Create(o).Error
}

// GetOrder loads an order by id.
func GetOrder(ctx context.Context, db *gorm.DB, id string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrderStatus sets the status of an order.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetOrderTotal records the priced amount for an order.
func SetOrderTotal(ctx context.Context, db *gorm.DB, id string, total decimal.Decimal) error {
	res := db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("total", total)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOpenOrders returns orders that still need attention (new or confirmed),
// oldest first.
func ListOpenOrders(ctx context.Context, db *gorm.DB) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Where("status IN ?", []string{domain.OrderNew, domain.OrderConfirmed}).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
