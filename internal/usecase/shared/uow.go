package shared

import (
	"context"
	"time"

	"rently-backend/internal/domain/billing"
	"rently-backend/internal/domain/booking"
	"rently-backend/internal/domain/payment"
	"rently-backend/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, dbtx db.DBTX) error) error
}

// Tx exposes transaction-bound repositories. Every repository obtained here
// runs on the same database transaction; a transition's status update, side
// effects and history event commit or roll back together.
type Tx interface {
	Bookings() BookingRepository
	Bills() BillRepository
	Transactions() TransactionRepository
	Events() EventRepository
	Logistics() LogisticsRepository
	Notifications() NotificationRepository
	Idempotency() IdempotencyRepository
}

type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking, now time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	// CompareAndSetStatus applies the CAS discipline: the update only lands
	// if the stored status still equals from. A false return means a
	// concurrent transition won.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to booking.Status, updatedAt time.Time) (bool, error)
	UpdatePeriodAndPrice(ctx context.Context, id uuid.UUID, endDate time.Time, totalPricePaise int64, updatedAt time.Time) error
	SetItemReturned(ctx context.Context, id uuid.UUID, updatedAt time.Time) error
	SetOwnerNote(ctx context.Context, id uuid.UUID, note string, updatedAt time.Time) error
	// HasOverlapping checks confirmed/accepted bookings of the item against
	// [start, end), excluding the booking being mutated.
	HasOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error)
}

type BillRepository interface {
	Create(ctx context.Context, bill *billing.Bill, now time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*billing.Bill, error)
	SetMethod(ctx context.Context, billID uuid.UUID, method billing.PaymentMethod, updatedAt time.Time) error
	// CompareAndSetPaymentStatus lands only if the stored status equals from.
	CompareAndSetPaymentStatus(ctx context.Context, billID uuid.UUID, from, to billing.PaymentStatus, paidAt *time.Time, updatedAt time.Time) (bool, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *payment.Transaction, now time.Time) error
	FindByGatewayOrderID(ctx context.Context, orderID string) (*payment.Transaction, error)
	HasSucceededForBill(ctx context.Context, billID uuid.UUID) (bool, error)
	// CompareAndResolve flips initiated to the target status exactly once.
	CompareAndResolve(ctx context.Context, id uuid.UUID, to payment.Status, gatewayPaymentID *string, resolvedAt time.Time) (bool, error)
	// VoidInitiatedByBillID fails all unresolved attempts, used on cancel.
	VoidInitiatedByBillID(ctx context.Context, billID uuid.UUID, resolvedAt time.Time) error
}

type EventRepository interface {
	Append(ctx context.Context, ev *booking.Event) error
}

type LogisticsRepository interface {
	Upsert(ctx context.Context, a *booking.LogisticsAssignment) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}

type IdempotencyRecord struct {
	Key             uuid.UUID
	ActorID         uuid.UUID
	Endpoint        string
	RequestHash     string
	Status          string
	ResultBookingID *uuid.UUID
	ExpiresAt       time.Time
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, key, actorID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error
	Get(ctx context.Context, key, actorID uuid.UUID) (*IdempotencyRecord, error)
	UpdateStatusCompleted(ctx context.Context, key, actorID uuid.UUID, responseBodyHash string, resultBookingID uuid.UUID) error
}
