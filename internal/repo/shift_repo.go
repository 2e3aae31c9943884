package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shopcrew/go-shop-bots/internal/domain"
)

// CreateShift inserts a new shift row.
func CreateShift(ctx context.Context, db *gorm.DB, s *domain.Shift) error {
	return db.WithContext(ctx).Create(s).Error
}

// GetOpenShift returns the user's currently open shift, if any.
func GetOpenShift(ctx context.Context, db *gorm.DB, userID int64) (*domain.Shift, error) {
	var s domain.Shift
	err := db.WithContext(ctx).
		Where("user_id = ? AND closed_at IS NULL", userID).
		Order("opened_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CloseShift stamps the shift closed.
func CloseShift(ctx context.Context, db *gorm.DB, id uint, at time.Time) error {
	res := db.WithContext(ctx).Model(&domain.Shift{}).Where("id = ?", id).Update("closed_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListShiftsForDay returns all shifts opened on the given calendar day,
// earliest first.
func ListShiftsForDay(ctx context.Context, db *gorm.DB, day time.Time) ([]domain.Shift, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var out []domain.Shift
	err := db.WithContext(ctx).
		Where("opened_at >= ? AND opened_at < ?", start, end).
		Order("opened_at ASC").
		Find(&out).Error
	return out, err
}
