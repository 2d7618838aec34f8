//go:build unit || e2e

package builder

import (
	"fmt"
	"time"

	"rently-backend/internal/domain/billing"
	"rently-backend/internal/domain/booking"
	"rently-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

// BillBuilder assembles bills with amounts derived the same way the billing
// engine derives them: 18% tax, 10% service fee, zero discount.
type BillBuilder struct {
	id               uuid.UUID
	bookingID        uuid.UUID
	pricePerDayPaise int64
	days             int
	taxPct           int
	serviceFeePct    int
	status           billing.PaymentStatus
	method           *billing.PaymentMethod
	paidAt           *time.Time
	createdAt        time.Time
}

func NewBillBuilder() *BillBuilder {
	return &BillBuilder{
		id:               uuid.New(),
		bookingID:        uuid.New(),
		pricePerDayPaise: 10000,
		days:             4,
		taxPct:           18,
		serviceFeePct:    10,
		status:           billing.PaymentStatusPending,
		createdAt:        time.Now().UTC(),
	}
}

func (b *BillBuilder) WithID(id uuid.UUID) *BillBuilder {
	b.id = id
	return b
}

func (b *BillBuilder) WithBookingID(id uuid.UUID) *BillBuilder {
	b.bookingID = id
	return b
}

func (b *BillBuilder) WithPricePerDayPaise(paise int64) *BillBuilder {
	b.pricePerDayPaise = paise
	return b
}

func (b *BillBuilder) WithDays(days int) *BillBuilder {
	b.days = days
	return b
}

func (b *BillBuilder) WithStatus(status billing.PaymentStatus) *BillBuilder {
	b.status = status
	return b
}

func (b *BillBuilder) WithMethod(method billing.PaymentMethod) *BillBuilder {
	b.method = &method
	return b
}

func (b *BillBuilder) WithPaidAt(at time.Time) *BillBuilder {
	b.paidAt = &at
	return b
}

func (b *BillBuilder) ID() uuid.UUID        { return b.id }
func (b *BillBuilder) BookingID() uuid.UUID { return b.bookingID }

func (b *BillBuilder) subtotalPaise() int64 {
	return b.pricePerDayPaise * int64(b.days)
}

func (b *BillBuilder) totalPaise() int64 {
	subtotal := b.subtotalPaise()
	return subtotal + subtotal*int64(b.taxPct)/100 + subtotal*int64(b.serviceFeePct)/100
}

func (b *BillBuilder) number() string {
	return fmt.Sprintf("RB-%s-%.8s", b.createdAt.UTC().Format("20060102"), b.bookingID.String())
}

func (b *BillBuilder) BuildDomain() *billing.Bill {
	subtotal := booking.NewMoney(b.subtotalPaise())
	tax := subtotal.Percent(b.taxPct)
	serviceFee := subtotal.Percent(b.serviceFeePct)
	discount := booking.NewMoney(0)
	return billing.ReconstructBill(
		b.id, b.bookingID,
		b.number(),
		subtotal, tax, serviceFee, discount,
		subtotal.Add(tax).Add(serviceFee).Sub(discount),
		b.status,
		b.method,
		b.paidAt,
		b.createdAt, b.createdAt,
	)
}

func (b *BillBuilder) BuildView() *queries.BillView {
	subtotal := b.subtotalPaise()
	var method *string
	if b.method != nil {
		m := string(*b.method)
		method = &m
	}
	return &queries.BillView{
		ID:              b.id,
		BookingID:       b.bookingID,
		BillNumber:      b.number(),
		SubtotalPaise:   subtotal,
		TaxPaise:        subtotal * int64(b.taxPct) / 100,
		ServiceFeePaise: subtotal * int64(b.serviceFeePct) / 100,
		DiscountPaise:   0,
		TotalPaise:      b.totalPaise(),
		PaymentStatus:   b.status.String(),
		PaymentMethod:   method,
		PaidAt:          b.paidAt,
		Transactions:    []queries.TransactionView{},
		CreatedAt:       b.createdAt,
	}
}
