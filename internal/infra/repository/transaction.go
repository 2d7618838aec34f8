package repository

import (
	"context"
	"time"

	"rently-backend/internal/domain/billing"
	"rently-backend/internal/domain/booking"
	"rently-backend/internal/domain/payment"
	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

type transactionRow struct {
	ID               uuid.UUID  `db:"id"`
	BillID           uuid.UUID  `db:"bill_id"`
	GatewayOrderID   string     `db:"gateway_order_id"`
	GatewayPaymentID *string    `db:"gateway_payment_id"`
	AmountPaise      int64      `db:"amount_paise"`
	PaymentMethod    string     `db:"payment_method"`
	Status           string     `db:"status"`
	CreatedAt        time.Time  `db:"created_at"`
	ResolvedAt       *time.Time `db:"resolved_at"`
}

func (r transactionRow) toDomain() *payment.Transaction {
	return payment.ReconstructTransaction(
		r.ID, r.BillID, r.GatewayOrderID, r.GatewayPaymentID,
		booking.NewMoney(r.AmountPaise),
		billing.PaymentMethod(r.PaymentMethod),
		payment.Status(r.Status),
		r.CreatedAt, r.ResolvedAt,
	)
}

type TransactionRepository struct {
	db db.DBTX
}

func NewTransactionRepository(dbtx db.DBTX) *TransactionRepository {
	return &TransactionRepository{db: dbtx}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *payment.Transaction, now time.Time) error {
	const query = `
		INSERT INTO transactions (
			id, bill_id, gateway_order_id, gateway_payment_id, amount_paise,
			payment_method, status, created_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		txn.ID(), txn.BillID(), txn.GatewayOrderID(), txn.GatewayPaymentID(),
		txn.Amount().Paise(), string(txn.Method()), txn.Status().String(),
		now, txn.ResolvedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create transaction", err)
	}
	return nil
}

func (r *TransactionRepository) FindByGatewayOrderID(ctx context.Context, orderID string) (*payment.Transaction, error) {
	const query = `
		SELECT id, bill_id, gateway_order_id, gateway_payment_id, amount_paise,
		       payment_method, status, created_at, resolved_at
		FROM transactions
		WHERE gateway_order_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var row transactionRow
	if err := pgxscan.Get(ctx, r.db, &row, query, orderID); err != nil {
		return nil, infra.WrapRepoErr("failed to find transaction by order", err)
	}
	return row.toDomain(), nil
}

func (r *TransactionRepository) HasSucceededForBill(ctx context.Context, billID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM transactions WHERE bill_id = $1 AND status = 'succeeded'
		)`

	var exists bool
	if err := pgxscan.Get(ctx, r.db, &exists, query, billID); err != nil {
		return false, infra.WrapRepoErr("failed to check succeeded transactions", err)
	}
	return exists, nil
}

func (r *TransactionRepository) CompareAndResolve(ctx context.Context, id uuid.UUID, to payment.Status, gatewayPaymentID *string, resolvedAt time.Time) (bool, error) {
	const query = `
		UPDATE transactions
		SET status = $1, gateway_payment_id = COALESCE($2, gateway_payment_id), resolved_at = $3
		WHERE id = $4 AND status = 'initiated'`

	tag, err := r.db.Exec(ctx, query, to.String(), gatewayPaymentID, resolvedAt, id)
	if err != nil {
		return false, infra.WrapRepoErr("failed to resolve transaction", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TransactionRepository) VoidInitiatedByBillID(ctx context.Context, billID uuid.UUID, resolvedAt time.Time) error {
	const query = `
		UPDATE transactions SET status = 'failed', resolved_at = $1
		WHERE bill_id = $2 AND status = 'initiated'`

	if _, err := r.db.Exec(ctx, query, resolvedAt, billID); err != nil {
		return infra.WrapRepoErr("failed to void initiated transactions", err)
	}
	return nil
}
