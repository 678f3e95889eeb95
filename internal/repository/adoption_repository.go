package repository

import (
	"context"
	"database/sql"

	"github.com/rutlandfarmpark/booking-api/internal/model"
)

// AdoptionRepo provides persistence for animal adoption sponsorships.
type AdoptionRepo struct {
	db *sql.DB
}

// NewAdoptionRepo returns a new AdoptionRepo bound to the given database.
func NewAdoptionRepo(db *sql.DB) *AdoptionRepo { return &AdoptionRepo{db: db} }

// Create inserts an adoption and populates its generated ID.
func (r *AdoptionRepo) Create(ctx context.Context, a *model.Adoption) error {
	const q = `INSERT INTO adoptions
		(reference, animal_id, tier_id, adopter_name, adopter_email, adopter_phone, is_gift,
		 gift_recipient_name, shipping_line1, shipping_line2, shipping_city, shipping_county,
		 shipping_postcode, shipping_country, starts_at, expires_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		a.Reference, a.AnimalID, a.TierID, a.AdopterName, a.AdopterEmail, nullable(a.AdopterPhone),
		a.IsGift, nullable(a.GiftRecipientName),
		a.ShippingAddress.Line1, nullable(a.ShippingAddress.Line2), a.ShippingAddress.City,
		nullable(a.ShippingAddress.County), a.ShippingAddress.Postcode, nullable(a.ShippingAddress.Country),
		a.StartsAt, a.ExpiresAt, a.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// ActivatePendingByAdopter activates every pending adoption under the given
// adopter email, returning how many were activated.  Same matching rule as
// VoucherRepo.ActivatePendingByPurchaser.
func (r *AdoptionRepo) ActivatePendingByAdopter(ctx context.Context, email string) (int64, error) {
	const q = `UPDATE adoptions SET status = ? WHERE adopter_email = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.AdoptionActive, email, model.AdoptionPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
