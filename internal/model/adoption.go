package model

import "time"

// Adoption status values.  Like vouchers, adoptions are created pending with
// their order and activated on payment completion.
const (
	AdoptionPending   = "pending"
	AdoptionActive    = "active"
	AdoptionExpired   = "expired"
	AdoptionCancelled = "cancelled"
)

// Adoption is a one-year animal adoption sponsorship.  References follow
// PREFIX-AXXXXXX.  The animal and tier are catalog references; the adopter
// details are snapshotted here for the welcome pack.
type Adoption struct {
	ID                uint64    // adoptions.id
	Reference         string    // adoptions.reference
	AnimalID          uint64    // adoptions.animal_id
	TierID            uint64    // adoptions.tier_id
	AdopterName       string    // adoptions.adopter_name
	AdopterEmail      string    // adoptions.adopter_email
	AdopterPhone      string    // adoptions.adopter_phone (may be empty)
	IsGift            bool      // adoptions.is_gift
	GiftRecipientName string    // adoptions.gift_recipient_name (may be empty)
	ShippingAddress   Address   // adoptions.shipping_* columns
	StartsAt          time.Time // adoptions.starts_at
	ExpiresAt         time.Time // adoptions.expires_at
	Status            string    // adoptions.status
	CreatedAt         time.Time // adoptions.created_at
	UpdatedAt         time.Time // adoptions.updated_at
}
