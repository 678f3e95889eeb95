package repository

import (
	"context"
	"database/sql"
	"strconv"
)

// Setting names used by the service.  Settings are the Go equivalent of the
// CMS globals: single values edited in the back office.
const (
	SettingBookingCapacity       = "booking_capacity"
	SettingShippingStandardRate  = "shipping_standard_rate"
	SettingShippingFreeThreshold = "shipping_free_threshold"
)

// SettingsRepo reads site-wide configuration values stored as a name/value
// table.  Missing keys yield ErrSettingNotFound; callers apply their own
// defaults.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo returns a new SettingsRepo bound to the given database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// IntValue returns the named setting parsed as an integer.
func (r *SettingsRepo) IntValue(ctx context.Context, name string) (int64, error) {
	const q = `SELECT value FROM settings WHERE name = ?`
	var raw string
	err := r.db.QueryRowContext(ctx, q, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, ErrSettingNotFound
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrSettingNotFound
	}
	return n, nil
}
