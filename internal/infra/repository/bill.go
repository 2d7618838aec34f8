package repository

import (
	"context"
	"time"

	"rently-backend/internal/domain/billing"
	"rently-backend/internal/domain/booking"
	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

type billRow struct {
	ID              uuid.UUID  `db:"id"`
	BookingID       uuid.UUID  `db:"booking_id"`
	BillNumber      string     `db:"bill_number"`
	SubtotalPaise   int64      `db:"subtotal_paise"`
	TaxPaise        int64      `db:"tax_paise"`
	ServiceFeePaise int64      `db:"service_fee_paise"`
	DiscountPaise   int64      `db:"discount_paise"`
	TotalPaise      int64      `db:"total_paise"`
	PaymentStatus   string     `db:"payment_status"`
	PaymentMethod   *string    `db:"payment_method"`
	PaidAt          *time.Time `db:"paid_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (r billRow) toDomain() *billing.Bill {
	var method *billing.PaymentMethod
	if r.PaymentMethod != nil {
		m := billing.PaymentMethod(*r.PaymentMethod)
		method = &m
	}
	return billing.ReconstructBill(
		r.ID, r.BookingID, r.BillNumber,
		booking.NewMoney(r.SubtotalPaise), booking.NewMoney(r.TaxPaise),
		booking.NewMoney(r.ServiceFeePaise), booking.NewMoney(r.DiscountPaise),
		booking.NewMoney(r.TotalPaise),
		billing.PaymentStatus(r.PaymentStatus), method, r.PaidAt,
		r.CreatedAt, r.UpdatedAt,
	)
}

const billColumns = `
	id, booking_id, bill_number, subtotal_paise, tax_paise, service_fee_paise,
	discount_paise, total_paise, payment_status, payment_method, paid_at,
	created_at, updated_at`

type BillRepository struct {
	db db.DBTX
}

func NewBillRepository(dbtx db.DBTX) *BillRepository {
	return &BillRepository{db: dbtx}
}

func (r *BillRepository) Create(ctx context.Context, bill *billing.Bill, now time.Time) error {
	const query = `
		INSERT INTO bills (
			id, booking_id, bill_number, subtotal_paise, tax_paise,
			service_fee_paise, discount_paise, total_paise, payment_status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`

	_, err := r.db.Exec(ctx, query,
		bill.ID(), bill.BookingID(), bill.Number(),
		bill.Subtotal().Paise(), bill.Tax().Paise(),
		bill.ServiceFee().Paise(), bill.Discount().Paise(), bill.Total().Paise(),
		bill.PaymentStatus().String(), now,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create bill", err)
	}
	return nil
}

func (r *BillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var row billRow
	if err := pgxscan.Get(ctx, r.db, &row, `SELECT `+billColumns+` FROM bills WHERE id = $1`, id); err != nil {
		return nil, infra.WrapRepoErr("failed to find bill", err)
	}
	return row.toDomain(), nil
}

func (r *BillRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*billing.Bill, error) {
	var row billRow
	if err := pgxscan.Get(ctx, r.db, &row, `SELECT `+billColumns+` FROM bills WHERE booking_id = $1`, bookingID); err != nil {
		return nil, infra.WrapRepoErr("failed to find bill by booking", err)
	}
	return row.toDomain(), nil
}

func (r *BillRepository) SetMethod(ctx context.Context, billID uuid.UUID, method billing.PaymentMethod, updatedAt time.Time) error {
	const query = `
		UPDATE bills SET payment_method = $1, updated_at = $2
		WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, string(method), updatedAt, billID)
	if err != nil {
		return infra.WrapRepoErr("failed to set payment method", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErrKind(infra.KindNotFound, "bill not found", nil)
	}
	return nil
}

func (r *BillRepository) CompareAndSetPaymentStatus(ctx context.Context, billID uuid.UUID, from, to billing.PaymentStatus, paidAt *time.Time, updatedAt time.Time) (bool, error) {
	const query = `
		UPDATE bills SET payment_status = $1, paid_at = $2, updated_at = $3
		WHERE id = $4 AND payment_status = $5`

	tag, err := r.db.Exec(ctx, query, to.String(), paidAt, updatedAt, billID, from.String())
	if err != nil {
		return false, infra.WrapRepoErr("failed to update payment status", err)
	}
	return tag.RowsAffected() == 1, nil
}
