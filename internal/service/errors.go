// Package service contains the checkout orchestration and payment
// reconciliation logic.  Business-rule rejections carry human-readable
// reasons for the caller; infrastructure failures are wrapped so handlers
// can log the detail server-side and show the customer only a generic
// retry message.
package service

import "errors"

// ValidationError reports missing or malformed input the customer can
// correct.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ErrPastDate rejects bookings for dates before the start of the current
// venue-local day.
var ErrPastDate = errors.New("cannot book a past date")

// ErrClosedDay rejects bookings for days the park is closed.
var ErrClosedDay = errors.New("the farm is closed on this date")

// PersistenceError wraps a store failure.  Retryable; never shown to the
// customer in detail.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persistence failure: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// PaymentSessionError wraps a payment provider failure during session
// creation.  The pending record already exists and stays inert; it can never
// be confirmed because no session references it.
type PaymentSessionError struct {
	Err error
}

func (e *PaymentSessionError) Error() string { return "payment session failure: " + e.Err.Error() }
func (e *PaymentSessionError) Unwrap() error { return e.Err }
