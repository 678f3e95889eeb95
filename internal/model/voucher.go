package model

import "time"

// Gift voucher status values.  A voucher is created pending alongside its
// order and activated when the order's payment completes.  Redemption states
// are managed at the till.
const (
	VoucherPending   = "pending"
	VoucherActive    = "active"
	VoucherPartial   = "partial"
	VoucherRedeemed  = "redeemed"
	VoucherExpired   = "expired"
	VoucherCancelled = "cancelled"
)

// GiftVoucher is a prepaid balance redeemable at the park.  Codes follow
// PREFIX-VXXXXXXXX and are unique.  Vouchers expire one year after purchase.
type GiftVoucher struct {
	ID               uint64    // gift_vouchers.id
	Code             string    // gift_vouchers.code
	Amount           int64     // gift_vouchers.amount (pence)
	RemainingBalance int64     // gift_vouchers.remaining_balance (pence)
	PurchaserName    string    // gift_vouchers.purchaser_name
	PurchaserEmail   string    // gift_vouchers.purchaser_email
	RecipientName    string    // gift_vouchers.recipient_name
	RecipientEmail   string    // gift_vouchers.recipient_email (may be empty)
	PersonalMessage  string    // gift_vouchers.personal_message (may be empty)
	ExpiresAt        time.Time // gift_vouchers.expires_at
	Status           string    // gift_vouchers.status
	CreatedAt        time.Time // gift_vouchers.created_at
	UpdatedAt        time.Time // gift_vouchers.updated_at
}
