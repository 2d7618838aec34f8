package billing

import (
	"errors"
	"fmt"
	"time"

	"rently-backend/internal/domain/booking"

	"github.com/google/uuid"
)

var (
	ErrInvalidDayCount     = errors.New("day count must be positive")
	ErrNotPayable          = errors.New("bill is not payable")
	ErrAlreadySettled      = errors.New("bill is already settled")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrMethodAlreadyChosen = errors.New("payment method already chosen")
)

// Rates are the platform charge percentages applied when a bill is derived
// from an accepted booking. Integer percentages keep the arithmetic exact.
type Rates struct {
	TaxPct        int
	ServiceFeePct int
}

// Bill is the priced invoice for one booking. Amounts are fixed at creation;
// once a transaction exists against the bill nothing recomputes them.
type Bill struct {
	id            uuid.UUID
	bookingID     uuid.UUID
	number        string
	subtotal      booking.Money
	tax           booking.Money
	serviceFee    booking.Money
	discount      booking.Money
	total         booking.Money
	paymentStatus PaymentStatus
	paymentMethod *PaymentMethod
	paidAt        *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewBill derives the invoice for an accepted booking:
// subtotal = price/day × days, tax and service fee as percentages of the
// subtotal, discount zero until a promotion engine exists.
func NewBill(bookingID uuid.UUID, pricePerDay booking.Money, days int, rates Rates, now time.Time) (*Bill, error) {
	if days <= 0 {
		return nil, ErrInvalidDayCount
	}
	if pricePerDay.IsNegative() {
		return nil, booking.ErrNegativePrice
	}

	subtotal := pricePerDay.MulDays(days)
	tax := subtotal.Percent(rates.TaxPct)
	serviceFee := subtotal.Percent(rates.ServiceFeePct)
	discount := booking.NewMoney(0)
	total := subtotal.Add(tax).Add(serviceFee).Sub(discount)

	return &Bill{
		id:            uuid.New(),
		bookingID:     bookingID,
		number:        buildBillNumber(bookingID, now),
		subtotal:      subtotal,
		tax:           tax,
		serviceFee:    serviceFee,
		discount:      discount,
		total:         total,
		paymentStatus: PaymentStatusPending,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// buildBillNumber yields a human-readable unique number. The booking id
// suffix makes it stable for a given booking, which the one-bill-per-booking
// unique index relies on.
func buildBillNumber(bookingID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("RB-%s-%.8s", now.UTC().Format("20060102"), bookingID.String())
}

func ReconstructBill(
	id, bookingID uuid.UUID,
	number string,
	subtotal, tax, serviceFee, discount, total booking.Money,
	status PaymentStatus,
	method *PaymentMethod,
	paidAt *time.Time,
	createdAt, updatedAt time.Time,
) *Bill {
	return &Bill{
		id:            id,
		bookingID:     bookingID,
		number:        number,
		subtotal:      subtotal,
		tax:           tax,
		serviceFee:    serviceFee,
		discount:      discount,
		total:         total,
		paymentStatus: status,
		paymentMethod: method,
		paidAt:        paidAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ChooseMethod records the renter's payment method. A failed bill may choose
// again (retry path); a settled bill may not.
func (b *Bill) ChooseMethod(method PaymentMethod) error {
	if !method.IsValid() {
		return ErrInvalidMethod
	}
	if b.paymentStatus.IsTerminal() {
		return ErrAlreadySettled
	}
	b.paymentMethod = &method
	b.paymentStatus = PaymentStatusPending
	return nil
}

func (b *Bill) MarkPaid(at time.Time) error {
	if b.paymentStatus != PaymentStatusPending {
		if b.paymentStatus.IsTerminal() {
			return ErrAlreadySettled
		}
		return ErrNotPayable
	}
	b.paymentStatus = PaymentStatusPaid
	b.paidAt = &at
	return nil
}

func (b *Bill) MarkFailed() error {
	if b.paymentStatus.IsTerminal() {
		return ErrAlreadySettled
	}
	b.paymentStatus = PaymentStatusFailed
	return nil
}

func (b *Bill) IsPaid() bool {
	return b.paymentStatus == PaymentStatusPaid
}

func (b *Bill) IsCashOnDelivery() bool {
	return b.paymentMethod != nil && *b.paymentMethod == MethodCashOnDelivery
}

// Payable reports whether another payment attempt may be initiated.
func (b *Bill) Payable() bool {
	return b.paymentStatus == PaymentStatusPending || b.paymentStatus == PaymentStatusFailed
}

func (b *Bill) ID() uuid.UUID                 { return b.id }
func (b *Bill) BookingID() uuid.UUID          { return b.bookingID }
func (b *Bill) Number() string                { return b.number }
func (b *Bill) Subtotal() booking.Money       { return b.subtotal }
func (b *Bill) Tax() booking.Money            { return b.tax }
func (b *Bill) ServiceFee() booking.Money     { return b.serviceFee }
func (b *Bill) Discount() booking.Money       { return b.discount }
func (b *Bill) Total() booking.Money          { return b.total }
func (b *Bill) PaymentStatus() PaymentStatus  { return b.paymentStatus }
func (b *Bill) PaymentMethod() *PaymentMethod { return b.paymentMethod }
func (b *Bill) PaidAt() *time.Time            { return b.paidAt }
func (b *Bill) CreatedAt() time.Time          { return b.createdAt }
func (b *Bill) UpdatedAt() time.Time          { return b.updatedAt }
