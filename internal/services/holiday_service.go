// Package services – HolidayService
//
// This file implements the holiday request workflow: parsing and validating
// submissions, applying the approve/reject state machine with authorization
// checks, and exposing the read-only projections the bot commands render.
// State lives in the JSON-backed store; this layer owns the rules the store
// deliberately does not enforce (future-date validation, the only-from-
// pending transition guard, the approved-date conflict check).
package services

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shopcrew/go-shop-bots/internal/dateutil"
	"github.com/shopcrew/go-shop-bots/internal/domain"
	"github.com/shopcrew/go-shop-bots/internal/store"
	"github.com/shopcrew/go-shop-bots/internal/sysutil"
)

// Submitter carries the identity fields of the user making a submission, so
// the profile can be refreshed opportunistically alongside the request.
type Submitter struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// HolidayService coordinates the holiday request lifecycle.
//
// AdminIDs is the fixed, configuration-supplied list of user ids allowed to
// resolve requests. Now is a clock seam for tests; nil means time.Now.
type HolidayService struct {
	Store    *store.Holidays
	AdminIDs []int64

	// Free-date suggestions
	FreeDateCount int // how many dates FreeDates returns
	ScanHorizon   int // max days scanned forward

	Now func() time.Time
}

func (s *HolidayService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IsAdmin reports whether id may resolve requests.
func (s *HolidayService) IsAdmin(id int64) bool {
	return sysutil.ContainsID(s.AdminIDs, id)
}

// Submit validates raw command text of the form "<date> <reason>" and creates
// a pending request.
//
// Validation order:
//  1. ErrBadFormat – text does not split into a date token and a reason.
//  2. ErrBadDate   – the date token is unparseable or impossible.
//  3. ErrPastDate  – the resolved day is not strictly after today.
//  4. ErrDateTaken – an approved request (any user) already holds the date;
//     pending requests do not block submission.
//
// The date may itself contain spaces ("25 12 2025 moving house"), so the
// longest leading token run that still leaves a non-empty reason and parses
// as a date wins.
func (s *HolidayService) Submit(user Submitter, raw string) (domain.HolidayRequest, error) {
	now := s.now()

	date, reason, err := splitSubmission(raw, now)
	if err != nil {
		return domain.HolidayRequest{}, err
	}
	if !date.After(dateutil.Midnight(now)) {
		return domain.HolidayRequest{}, ErrPastDate
	}
	if !s.Store.IsDateAvailable(date) {
		return domain.HolidayRequest{}, ErrDateTaken
	}

	s.Store.UpsertUser(user.ID, user.Username, user.FirstName, user.LastName, now)
	id := s.Store.CreateRequest(user.ID, date, reason, now)

	req, _ := s.Store.Request(id)
	log.Info().Int("request_id", id).Int64("user_id", user.ID).Str("date", req.Date).Msg("holiday request submitted")
	return req, nil
}

// splitSubmission separates the date token(s) from the reason. Up to three
// leading whitespace-separated tokens may form the date; candidates are tried
// longest first.
func splitSubmission(raw string, now time.Time) (time.Time, string, error) {
	tokens := strings.Fields(raw)
	if len(tokens) < 2 {
		return time.Time{}, "", ErrBadFormat
	}

	maxDate := 3
	if len(tokens)-1 < maxDate {
		maxDate = len(tokens) - 1
	}
	for k := maxDate; k >= 1; k-- {
		date, err := dateutil.ParseFlexibleDate(strings.Join(tokens[:k], " "), now)
		if err != nil {
			continue
		}
		return date, strings.Join(tokens[k:], " "), nil
	}
	return time.Time{}, "", ErrBadDate
}

// Resolve applies an admin decision to a pending request.
//
// Errors: ErrNotAdmin when adminID is not configured as an admin,
// ErrRequestNotFound for an unknown id, and ErrAlreadyProcessed when the
// request has already left pending (idempotent no-op). A failed persist after
// the in-memory transition is logged but not rolled back; the decision
// stands until restart.
func (s *HolidayService) Resolve(id int, approve bool, adminID int64) (domain.HolidayRequest, error) {
	if !s.IsAdmin(adminID) {
		return domain.HolidayRequest{}, ErrNotAdmin
	}

	req, ok := s.Store.Request(id)
	if !ok {
		return domain.HolidayRequest{}, ErrRequestNotFound
	}
	if req.Status != domain.HolidayPending {
		return req, ErrAlreadyProcessed
	}

	status := domain.HolidayRejected
	if approve {
		status = domain.HolidayApproved
	}
	if !s.Store.UpdateRequestStatus(id, status, adminID, s.now()) {
		log.Warn().Int("request_id", id).Msg("holiday decision not persisted, kept in memory")
	}

	req, _ = s.Store.Request(id)
	log.Info().Int("request_id", id).Int64("admin_id", adminID).Str("status", string(req.Status)).Msg("holiday request resolved")
	return req, nil
}

// FutureApproved lists the user's approved requests from today on, soonest
// first.
func (s *HolidayService) FutureApproved(userID int64) []domain.HolidayRequest {
	return s.Store.FutureApproved(userID, s.now())
}

// AllApproved lists every approved request of the user, latest first.
func (s *HolidayService) AllApproved(userID int64) []domain.HolidayRequest {
	return s.Store.AllApproved(userID)
}

// UserRequests lists the user's requests newest first, optionally narrowed by
// status ("" = all).
func (s *HolidayService) UserRequests(userID int64, status domain.HolidayStatus) []domain.HolidayRequest {
	return s.Store.UserRequests(userID, status)
}

// FreeDates suggests upcoming weekdays with no approved request.
func (s *HolidayService) FreeDates() []time.Time {
	n := s.FreeDateCount
	if n <= 0 {
		n = 5
	}
	horizon := s.ScanHorizon
	if horizon <= 0 {
		horizon = 365
	}
	return s.Store.FreeDates(n, s.now(), horizon)
}
