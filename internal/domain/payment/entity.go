package payment

import (
	"errors"
	"time"

	"rently-backend/internal/domain/billing"
	"rently-backend/internal/domain/booking"

	"github.com/google/uuid"
)

var (
	ErrAlreadyResolved = errors.New("transaction already resolved")
	ErrMissingOrderID  = errors.New("gateway order id is required")
)

type Status string

const (
	StatusInitiated Status = "initiated"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

// Transaction is one attempt to settle a bill. Rows are created when a
// gateway checkout opens and resolved exactly once; retries create new rows.
type Transaction struct {
	id               uuid.UUID
	billID           uuid.UUID
	gatewayOrderID   string
	gatewayPaymentID *string
	amount           booking.Money
	method           billing.PaymentMethod
	status           Status
	createdAt        time.Time
	resolvedAt       *time.Time
}

// NewGatewayTransaction opens an attempt scoped to the bill's full total and
// the gateway order created for it.
func NewGatewayTransaction(billID uuid.UUID, orderID string, amount booking.Money) (*Transaction, error) {
	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	return &Transaction{
		id:             uuid.New(),
		billID:         billID,
		gatewayOrderID: orderID,
		amount:         amount,
		method:         billing.MethodGateway,
		status:         StatusInitiated,
	}, nil
}

func ReconstructTransaction(
	id, billID uuid.UUID,
	orderID string,
	paymentID *string,
	amount booking.Money,
	method billing.PaymentMethod,
	status Status,
	createdAt time.Time,
	resolvedAt *time.Time,
) *Transaction {
	return &Transaction{
		id:               id,
		billID:           billID,
		gatewayOrderID:   orderID,
		gatewayPaymentID: paymentID,
		amount:           amount,
		method:           method,
		status:           status,
		createdAt:        createdAt,
		resolvedAt:       resolvedAt,
	}
}

// Resolve settles the attempt. A transaction resolves at most once; callers
// racing on the same row are serialized by the repository's CAS update.
func (t *Transaction) Resolve(success bool, gatewayPaymentID string, at time.Time) error {
	if t.status != StatusInitiated {
		return ErrAlreadyResolved
	}
	if success {
		t.status = StatusSucceeded
	} else {
		t.status = StatusFailed
	}
	if gatewayPaymentID != "" {
		t.gatewayPaymentID = &gatewayPaymentID
	}
	t.resolvedAt = &at
	return nil
}

func (t *Transaction) IsResolved() bool {
	return t.status != StatusInitiated
}

func (t *Transaction) ID() uuid.UUID                  { return t.id }
func (t *Transaction) BillID() uuid.UUID              { return t.billID }
func (t *Transaction) GatewayOrderID() string         { return t.gatewayOrderID }
func (t *Transaction) GatewayPaymentID() *string      { return t.gatewayPaymentID }
func (t *Transaction) Amount() booking.Money          { return t.amount }
func (t *Transaction) Method() billing.PaymentMethod  { return t.method }
func (t *Transaction) Status() Status                 { return t.status }
func (t *Transaction) CreatedAt() time.Time           { return t.createdAt }
func (t *Transaction) ResolvedAt() *time.Time         { return t.resolvedAt }
