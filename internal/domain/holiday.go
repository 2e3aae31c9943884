// Package domain defines the entities shared across the bots: the holiday
// workflow records persisted as a JSON document, and the GORM-mapped retail
// entities (orders, shifts).
package domain

// HolidayStatus is the lifecycle state of a holiday request.
// Transitions are pending -> approved or pending -> rejected, exactly once.
type HolidayStatus string

const (
	HolidayPending  HolidayStatus = "pending"
	HolidayApproved HolidayStatus = "approved"
	HolidayRejected HolidayStatus = "rejected"
)

// Valid reports whether s is one of the known lifecycle states.
func (s HolidayStatus) Valid() bool {
	switch s {
	case HolidayPending, HolidayApproved, HolidayRejected:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transition.
func (s HolidayStatus) Terminal() bool {
	return s == HolidayApproved || s == HolidayRejected
}

// HolidayRequest is a single day-off submission. It is stored in the holiday
// document under requests["<id>"]; the numeric id itself lives in the map key
// and is filled in by the store when records are read back.
//
// Fields:
//   - UserID: Telegram id of the requester.
//   - Date: the requested day, ISO "2006-01-02", no time component.
//   - Reason: free text, non-empty.
//   - Status: pending | approved | rejected.
//   - CreatedAt: RFC3339 submission timestamp.
//   - ProcessedBy / ProcessedAt: set together when the request leaves
//     pending; zero while pending.
type HolidayRequest struct {
	ID          int           `json:"-"`
	UserID      int64         `json:"user_id"`
	Date        string        `json:"date"`
	Reason      string        `json:"reason"`
	Status      HolidayStatus `json:"status"`
	CreatedAt   string        `json:"created_at"`
	ProcessedBy int64         `json:"processed_by,omitempty"`
	ProcessedAt string        `json:"processed_at,omitempty"`
}

// UserProfile is an opportunistic record of everyone who has interacted with
// the holiday workflow, keyed by user id in the document. Purely
// informational; most recent write wins, entries are never deleted.
type UserProfile struct {
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	LastUpdate string `json:"last_update"`
}

// DisplayName returns the best human-readable label for the profile.
func (u UserProfile) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	}
	return ""
}
