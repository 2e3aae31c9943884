package services

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopcrew/go-shop-bots/internal/domain"
	"github.com/shopcrew/go-shop-bots/internal/store"
)

// Wednesday 2025-01-15.
var holidayNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

const adminID int64 = 99

func newHolidayService(t *testing.T) *HolidayService {
	t.Helper()
	return &HolidayService{
		Store:    store.Open(filepath.Join(t.TempDir(), "holidays.json")),
		AdminIDs: []int64{adminID},
		Now:      func() time.Time { return holidayNow },
	}
}

func submitter(id int64) Submitter {
	return Submitter{ID: id, Username: "jdoe", FirstName: "John", LastName: "Doe"}
}

func TestSubmit_Success(t *testing.T) {
	svc := newHolidayService(t)

	req, err := svc.Submit(submitter(1), "20.02 family visit")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if req.ID != 1 {
		t.Fatalf("id = %d, want 1", req.ID)
	}
	if req.Date != "2025-02-20" || req.Reason != "family visit" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Status != domain.HolidayPending {
		t.Fatalf("status = %q, want pending", req.Status)
	}
	if req.ProcessedBy != 0 || req.ProcessedAt != "" {
		t.Fatalf("processed fields must be unset while pending: %+v", req)
	}

	// Profile recorded opportunistically.
	if u, ok := svc.Store.User(1); !ok || u.Username != "jdoe" {
		t.Fatalf("profile not stored: %+v", u)
	}
}

func TestSubmit_SpacedDateWithReason(t *testing.T) {
	svc := newHolidayService(t)

	req, err := svc.Submit(submitter(1), "25 12 2025 moving house")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if req.Date != "2025-12-25" || req.Reason != "moving house" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestSubmit_Errors(t *testing.T) {
	svc := newHolidayService(t)

	cases := []struct {
		raw  string
		want error
	}{
		{"", ErrBadFormat},
		{"justonetoken", ErrBadFormat},
		{"31.02 vacation", ErrBadDate},
		{"abc vacation", ErrBadDate},
		{"15.01.2025 today", ErrPastDate}, // today is not strictly future
		{"02.01.2025 past", ErrPastDate},
	}
	for _, tc := range cases {
		if _, err := svc.Submit(submitter(1), tc.raw); !errors.Is(err, tc.want) {
			t.Errorf("Submit(%q): got %v, want %v", tc.raw, err, tc.want)
		}
	}

	// Day+month that passed this year rolls to next year and is accepted.
	req, err := svc.Submit(submitter(1), "14.01 rolled forward")
	if err != nil {
		t.Fatalf("Submit rolled date: %v", err)
	}
	if req.Date != "2026-01-14" {
		t.Fatalf("date = %q, want 2026-01-14", req.Date)
	}
}

func TestSubmit_ConflictOnlyWithApproved(t *testing.T) {
	svc := newHolidayService(t)

	first, err := svc.Submit(submitter(1), "20.02 dentist")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// A second pending request for the same date is allowed.
	if _, err := svc.Submit(submitter(2), "20.02 also dentist"); err != nil {
		t.Fatalf("pending requests must not conflict: %v", err)
	}

	if _, err := svc.Resolve(first.ID, true, adminID); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Now the date is occupied for everyone.
	if _, err := svc.Submit(submitter(3), "20.02 me too"); !errors.Is(err, ErrDateTaken) {
		t.Fatalf("got %v, want ErrDateTaken", err)
	}
}

func TestResolve_Approve(t *testing.T) {
	svc := newHolidayService(t)

	req, _ := svc.Submit(submitter(1), "20.02 trip")
	got, err := svc.Resolve(req.ID, true, adminID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Status != domain.HolidayApproved {
		t.Fatalf("status = %q", got.Status)
	}
	if got.ProcessedBy != adminID || got.ProcessedAt == "" {
		t.Fatalf("processed fields not set together: %+v", got)
	}
}

func TestResolve_Reject(t *testing.T) {
	svc := newHolidayService(t)

	req, _ := svc.Submit(submitter(1), "20.02 trip")
	got, err := svc.Resolve(req.ID, false, adminID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Status != domain.HolidayRejected {
		t.Fatalf("status = %q", got.Status)
	}
}

func TestResolve_NotAdmin(t *testing.T) {
	svc := newHolidayService(t)

	req, _ := svc.Submit(submitter(1), "20.02 trip")
	if _, err := svc.Resolve(req.ID, true, 12345); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("got %v, want ErrNotAdmin", err)
	}
	// No state change.
	if got, _ := svc.Store.Request(req.ID); got.Status != domain.HolidayPending {
		t.Fatalf("status changed by unauthorized resolve: %q", got.Status)
	}
}

func TestResolve_UnknownID(t *testing.T) {
	svc := newHolidayService(t)
	if _, err := svc.Resolve(777, true, adminID); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("got %v, want ErrRequestNotFound", err)
	}
}

func TestResolve_AlreadyProcessedIsIdempotent(t *testing.T) {
	svc := newHolidayService(t)

	req, _ := svc.Submit(submitter(1), "20.02 trip")
	if _, err := svc.Resolve(req.ID, true, adminID); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	// Double-click: the second attempt is a no-op, state untouched.
	got, err := svc.Resolve(req.ID, false, adminID)
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("got %v, want ErrAlreadyProcessed", err)
	}
	if got.Status != domain.HolidayApproved {
		t.Fatalf("second resolve changed state: %q", got.Status)
	}
}

func TestFreeDatesDefaults(t *testing.T) {
	svc := newHolidayService(t)

	got := svc.FreeDates()
	if len(got) != 5 {
		t.Fatalf("got %d dates, want default 5", len(got))
	}
}
