// Package services – ShiftService
//
// Staff shift tracking: a user opens a shift when they start work and closes
// it when they leave. One open shift per user; the daily report lists who
// worked when.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shopcrew/go-shop-bots/internal/domain"
	"github.com/shopcrew/go-shop-bots/internal/repo"
)

// ShiftService implements the use-cases around staff shifts.
type ShiftService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s *ShiftService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Open starts a shift for the user. Returns ErrShiftAlreadyOpen when one is
// already running.
func (s *ShiftService) Open(ctx context.Context, userID int64, name string) (*domain.Shift, error) {
	var out *domain.Shift
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetOpenShift(ctx, tx, userID); err == nil {
			return ErrShiftAlreadyOpen
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		sh := &domain.Shift{
			UserID:   userID,
			Name:     name,
			OpenedAt: s.now(),
		}
		if err := repo.CreateShift(ctx, tx, sh); err != nil {
			return err
		}
		out = sh
		return nil
	})
	return out, err
}

// Close ends the user's open shift. Returns ErrNoOpenShift when nothing is
// running.
func (s *ShiftService) Close(ctx context.Context, userID int64) (*domain.Shift, error) {
	var out *domain.Shift
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sh, err := repo.GetOpenShift(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrNoOpenShift
			}
			return err
		}

		at := s.now()
		if err := repo.CloseShift(ctx, tx, sh.ID, at); err != nil {
			return err
		}
		sh.ClosedAt = &at
		out = sh
		return nil
	})
	return out, err
}

// Report lists the shifts opened on the given day, earliest first.
func (s *ShiftService) Report(ctx context.Context, day time.Time) ([]domain.Shift, error) {
	return repo.ListShiftsForDay(ctx, s.DB, day)
}
