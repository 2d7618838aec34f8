package readstore

import (
	"context"
	"time"

	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"
	"rently-backend/internal/usecase/queries"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

type billViewRow struct {
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
}

type BillReadStore struct {
	db db.DBTX
}

func NewBillReadStore(dbtx db.DBTX) *BillReadStore {
	return &BillReadStore{db: dbtx}
}

const billViewColumns = `
	id, booking_id, bill_number, subtotal_paise, tax_paise, service_fee_paise,
	discount_paise, total_paise, payment_status, payment_method, paid_at, created_at`

func (r *BillReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BillView, error) {
	var row billViewRow
	if err := pgxscan.Get(ctx, r.db, &row, `SELECT `+billViewColumns+` FROM bills WHERE id = $1`, id); err != nil {
		return nil, infra.WrapRepoErr("failed to find bill view", err)
	}
	return r.attachTransactions(ctx, rowToBillView(row))
}

func (r *BillReadStore) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*queries.BillView, error) {
	var row billViewRow
	if err := pgxscan.Get(ctx, r.db, &row, `SELECT `+billViewColumns+` FROM bills WHERE booking_id = $1`, bookingID); err != nil {
		return nil, infra.WrapRepoErr("failed to find bill view by booking", err)
	}
	return r.attachTransactions(ctx, rowToBillView(row))
}

func (r *BillReadStore) ParticipantsOf(ctx context.Context, billID uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	const query = `
		SELECT b.owner_id, b.renter_id
		FROM bills bl
		JOIN bookings b ON b.id = bl.booking_id
		WHERE bl.id = $1`

	var row struct {
		OwnerID  uuid.UUID `db:"owner_id"`
		RenterID uuid.UUID `db:"renter_id"`
	}
	if err := pgxscan.Get(ctx, r.db, &row, query, billID); err != nil {
		return uuid.Nil, uuid.Nil, infra.WrapRepoErr("failed to resolve bill participants", err)
	}
	return row.OwnerID, row.RenterID, nil
}

func (r *BillReadStore) attachTransactions(ctx context.Context, view *queries.BillView) (*queries.BillView, error) {
	const query = `
		SELECT id, gateway_order_id, gateway_payment_id, amount_paise,
		       payment_method, status, created_at, resolved_at
		FROM transactions
		WHERE bill_id = $1
		ORDER BY created_at ASC`

	var rows []queries.TransactionView
	if err := pgxscan.Select(ctx, r.db, &rows, query, view.ID); err != nil {
		return nil, infra.WrapRepoErr("failed to load bill transactions", err)
	}
	view.Transactions = rows
	return view, nil
}

func rowToBillView(row billViewRow) *queries.BillView {
	return &queries.BillView{
		ID:              row.ID,
		BookingID:       row.BookingID,
		BillNumber:      row.BillNumber,
		SubtotalPaise:   row.SubtotalPaise,
		TaxPaise:        row.TaxPaise,
		ServiceFeePaise: row.ServiceFeePaise,
		DiscountPaise:   row.DiscountPaise,
		TotalPaise:      row.TotalPaise,
		PaymentStatus:   row.PaymentStatus,
		PaymentMethod:   row.PaymentMethod,
		PaidAt:          row.PaidAt,
		Transactions:    []queries.TransactionView{},
		CreatedAt:       row.CreatedAt,
	}
}
