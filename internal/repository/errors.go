// Package repository implements raw-SQL persistence for the park's
// collections.  Sentinel errors defined here let handlers and services
// distinguish "not found" and conflict cases from infrastructure failures
// without inspecting driver errors.
package repository

import "errors"

// ErrBookingNotFound is returned when a booking lookup matches no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrOrderNotFound is returned when an order lookup matches no row.
var ErrOrderNotFound = errors.New("order not found")

// ErrSettingNotFound is returned when a settings key has no stored value.
// Callers fall back to their documented defaults.
var ErrSettingNotFound = errors.New("setting not found")
