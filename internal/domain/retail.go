package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order lifecycle states. An order moves new -> confirmed -> done; new and
// confirmed orders can still be cancelled. done and cancelled are terminal.
const (
	OrderNew       = "new"
	OrderConfirmed = "confirmed"
	OrderDone      = "done"
	OrderCancelled = "cancelled"
)

// Order is a customer order taken through the shop bot.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - ChatID / UserID / Username: where and from whom the order came.
//   - Items: the raw order text as the customer typed it.
//   - Total: optional amount filled in by staff once priced.
//   - Status: new | confirmed | done | cancelled (enforced by DB constraint).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for history).
type Order struct {
	ID        string          `json:"id"         gorm:"type:char(36);primaryKey"`
	ChatID    int64           `json:"chat_id"    gorm:"not null;index"`
	UserID    int64           `json:"user_id"    gorm:"not null;index:idx_user_orders"`
	Username  string          `json:"username"   gorm:"type:varchar(64)"`
	Items     string          `json:"items"      gorm:"type:text;not null"`
	Total     decimal.Decimal `json:"total"      gorm:"type:numeric;not null;default:0"`
	Status    string          `json:"status"     gorm:"type:varchar(16);not null;default:'new';check:status IN ('new','confirmed','done','cancelled')"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// Shift records one staff member's working stretch. ClosedAt is nil while the
// shift is open; a user has at most one open shift at a time.
type Shift struct {
	ID        uint           `json:"id"        gorm:"primaryKey"`
	UserID    int64          `json:"user_id"   gorm:"not null;index"`
	Name      string         `json:"name"      gorm:"type:varchar(128)"`
	OpenedAt  time.Time      `json:"opened_at" gorm:"not null;index"`
	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

// TableName returns the database table name for Shift.
func (Shift) TableName() string { return "shifts" }
