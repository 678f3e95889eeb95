package model

import "time"

// ContactSubmission records a message sent through the contact form.  Staff
// are notified by email; the row is the durable copy.
type ContactSubmission struct {
	ID        uint64    // contact_submissions.id
	Name      string    // contact_submissions.name
	Email     string    // contact_submissions.email
	Phone     string    // contact_submissions.phone (may be empty)
	Message   string    // contact_submissions.message
	CreatedAt time.Time // contact_submissions.created_at
}
