// Package services defines the business logic for the holiday workflow,
// order intake, and shift tracking. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing bot replies is performed at the handler layer.
package services

import "errors"

// Holiday workflow errors.
var (
	// ErrBadFormat is returned when a submission cannot be split into a
	// date token and a free-text reason.
	ErrBadFormat = errors.New("expected a date followed by a reason")

	// ErrBadDate is returned when the date token is unparseable or names an
	// impossible calendar date.
	ErrBadDate = errors.New("not a recognizable date")

	// ErrPastDate is returned when the requested day is not strictly in the
	// future.
	ErrPastDate = errors.New("date must be in the future")

	// ErrDateTaken is returned when an approved request already occupies the
	// requested date.
	ErrDateTaken = errors.New("date already has an approved request")

	// ErrNotAdmin is returned when a non-admin tries to resolve a request.
	ErrNotAdmin = errors.New("not allowed to resolve requests")

	// ErrRequestNotFound indicates that the referenced request id does not
	// exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrAlreadyProcessed is returned when resolving a request that has
	// already left pending. Protects against double-click races; the stored
	// record is left untouched.
	ErrAlreadyProcessed = errors.New("request already processed")
)

// Order errors.
var (
	// ErrEmptyOrder is returned when an order is placed with no items text.
	ErrEmptyOrder = errors.New("order is empty")

	// ErrOrderNotFound indicates that the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderClosed is returned when a status change targets an order that
	// is already done or cancelled.
	ErrOrderClosed = errors.New("order already closed")
)

// Shift errors.
var (
	// ErrShiftAlreadyOpen is returned when a user tries to open a second
	// concurrent shift.
	ErrShiftAlreadyOpen = errors.New("shift already open")

	// ErrNoOpenShift is returned when closing while no shift is open.
	ErrNoOpenShift = errors.New("no open shift")
)
