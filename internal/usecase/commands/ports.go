package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actor is the authenticated principal extracted from the request token.
// Authorization against a booking is positional (owner vs renter), not
// role-based; Role exists for logging and coarse route guards.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// ItemSnapshot is the catalog's view of an item at booking time. The price
// is copied onto the booking and never re-read.
type ItemSnapshot struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	PricePerDayPaise int64
}

// CatalogService fronts the catalog service that owns items and their
// availability calendar.
type CatalogService interface {
	GetItem(ctx context.Context, itemID uuid.UUID) (*ItemSnapshot, error)
	// LockRange reserves [start, end) for a booking. Failing the lock after
	// the local transaction would have committed is the failure mode to
	// avoid, so callers lock before commit and release on rollback paths.
	LockRange(ctx context.Context, itemID, bookingID uuid.UUID, start, end time.Time) error
	ReleaseRange(ctx context.Context, itemID, bookingID uuid.UUID) error
}

// CheckoutSession is what the client needs to open the gateway's checkout.
type CheckoutSession struct {
	OrderID     string `json:"order_id"`
	KeyID       string `json:"key_id"`
	AmountPaise int64  `json:"amount_paise"`
	Currency    string `json:"currency"`
}

// PaymentGateway fronts the external payment provider.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*CheckoutSession, error)
	// VerifySignature checks the client-supplied signature against the
	// server-side secret. Constant-time comparison.
	VerifySignature(orderID, paymentID, signature string) bool
}
