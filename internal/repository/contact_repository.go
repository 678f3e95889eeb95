package repository

import (
	"context"
	"database/sql"

	"github.com/rutlandfarmpark/booking-api/internal/model"
)

// ContactRepo stores contact form submissions.
type ContactRepo struct {
	db *sql.DB
}

// NewContactRepo returns a new ContactRepo bound to the given database.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts a submission and populates its generated ID.
func (r *ContactRepo) Create(ctx context.Context, c *model.ContactSubmission) error {
	const q = `INSERT INTO contact_submissions (name, email, phone, message) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Email, nullable(c.Phone), c.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}
