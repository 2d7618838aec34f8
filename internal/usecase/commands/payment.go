package commands

import (
	"context"
	"encoding/json"
	"time"

	"rently-backend/internal/domain/billing"
	"rently-backend/internal/domain/booking"
	"rently-backend/internal/domain/payment"
	"rently-backend/internal/infra"
	"rently-backend/internal/pkg/clock"
	"rently-backend/internal/pkg/errs"
	"rently-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

type InitiatePaymentResult struct {
	Method billing.PaymentMethod `json:"method"`
	// Checkout is nil for cash on delivery.
	Checkout *CheckoutSession `json:"checkout,omitempty"`
}

type VerifyPaymentInput struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type PaymentCommands interface {
	// Initiate opens a payment attempt for a bill. Gateway attempts create
	// an order and a transaction row; cash on delivery only records the
	// method and settles at handoff.
	Initiate(ctx context.Context, actor Actor, billID uuid.UUID, method billing.PaymentMethod) (*InitiatePaymentResult, error)
	// Verify settles a gateway attempt from the client's checkout callback.
	Verify(ctx context.Context, actor Actor, in VerifyPaymentInput) error
}

type paymentCommandsImpl struct {
	uow     shared.UnitOfWork
	gateway PaymentGateway
	clock   clock.Clock
}

func NewPaymentCommands(uow shared.UnitOfWork, gateway PaymentGateway, clk clock.Clock) PaymentCommands {
	return &paymentCommandsImpl{uow: uow, gateway: gateway, clock: clk}
}

func (s *paymentCommandsImpl) Initiate(
	ctx context.Context,
	actor Actor,
	billID uuid.UUID,
	method billing.PaymentMethod,
) (*InitiatePaymentResult, error) {
	if !method.IsValid() {
		return nil, errs.Mark(billing.ErrInvalidMethod, errs.ErrValidation)
	}

	now := s.clock.Now()
	var result *InitiatePaymentResult
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		bill, err := loadBill(ctx, tx, billID)
		if err != nil {
			return err
		}
		b, err := s.authorizeRenter(ctx, tx, bill, actor)
		if err != nil {
			return err
		}
		// Cancelled and completed bookings are closed for payment; cancel
		// voided any open attempts and nothing may reopen them.
		if b.IsTerminal() {
			return errs.ErrInvalidTransition
		}

		settled, err := tx.Transactions().HasSucceededForBill(ctx, bill.ID())
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if settled || bill.IsPaid() {
			return errs.ErrAlreadyPaid
		}

		wasFailed := bill.PaymentStatus() == billing.PaymentStatusFailed
		if err := bill.ChooseMethod(method); err != nil {
			return errs.Mark(err, errs.ErrValidation)
		}
		if err := tx.Bills().SetMethod(ctx, bill.ID(), method, now); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if wasFailed {
			// A retry reopens the bill; a concurrent settle wins the CAS.
			ok, casErr := tx.Bills().CompareAndSetPaymentStatus(ctx, bill.ID(), billing.PaymentStatusFailed, billing.PaymentStatusPending, nil, now)
			if casErr != nil {
				return errs.Mark(casErr, errs.ErrDatabaseOperationFailed)
			}
			if !ok {
				return errs.ErrAlreadyPaid
			}
		}

		if method == billing.MethodCashOnDelivery {
			// No transaction row. The bill stays pending and settles when
			// the owner completes the booking.
			result = &InitiatePaymentResult{Method: method}
			return nil
		}

		session, err := s.gateway.CreateOrder(ctx, bill.Total().Paise(), bill.Number())
		if err != nil {
			return errs.Mark(err, errs.ErrPaymentFailure)
		}

		txn, err := payment.NewGatewayTransaction(bill.ID(), session.OrderID, bill.Total())
		if err != nil {
			return errs.Mark(err, errs.ErrPaymentFailure)
		}
		if err := tx.Transactions().Create(ctx, txn, now); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		result = &InitiatePaymentResult{Method: method, Checkout: session}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *paymentCommandsImpl) Verify(ctx context.Context, actor Actor, in VerifyPaymentInput) error {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return errs.ErrValidation
	}

	now := s.clock.Now()
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		txn, err := tx.Transactions().FindByGatewayOrderID(ctx, in.OrderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrTransactionNotFound)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		bill, err := loadBill(ctx, tx, txn.BillID())
		if err != nil {
			return err
		}
		if _, err := s.authorizeRenter(ctx, tx, bill, actor); err != nil {
			return err
		}

		if txn.Status() == payment.StatusSucceeded {
			return errs.ErrAlreadyPaid
		}
		if txn.Status() == payment.StatusFailed {
			// The attempt is dead; the caller must open a fresh order.
			return errs.ErrPaymentFailure
		}

		if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
			return s.settleFailure(ctx, tx, bill, txn, in.PaymentID, now)
		}

		settled, err := tx.Transactions().HasSucceededForBill(ctx, bill.ID())
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if settled {
			return errs.ErrAlreadyPaid
		}

		return s.settleSuccess(ctx, tx, bill, txn, in.PaymentID, now)
	})
}

func (s *paymentCommandsImpl) settleSuccess(
	ctx context.Context,
	tx shared.Tx,
	bill *billing.Bill,
	txn *payment.Transaction,
	paymentID string,
	now time.Time,
) error {
	if err := txn.Resolve(true, paymentID, now); err != nil {
		return errs.Mark(err, errs.ErrAlreadyPaid)
	}
	ok, err := tx.Transactions().CompareAndResolve(ctx, txn.ID(), payment.StatusSucceeded, &paymentID, now)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !ok {
		return errs.ErrAlreadyPaid
	}

	ok, err = tx.Bills().CompareAndSetPaymentStatus(ctx, bill.ID(), billing.PaymentStatusPending, billing.PaymentStatusPaid, &now, now)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !ok {
		return errs.ErrAlreadyPaid
	}

	return createPaymentJob(ctx, tx, bill, txn, paymentID, "payment.captured", now)
}

func (s *paymentCommandsImpl) settleFailure(
	ctx context.Context,
	tx shared.Tx,
	bill *billing.Bill,
	txn *payment.Transaction,
	paymentID string,
	now time.Time,
) error {
	if err := txn.Resolve(false, paymentID, now); err != nil {
		return errs.Mark(err, errs.ErrAlreadyPaid)
	}
	ok, err := tx.Transactions().CompareAndResolve(ctx, txn.ID(), payment.StatusFailed, &paymentID, now)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !ok {
		// Already resolved by another request; report the stored outcome.
		return errs.ErrAlreadyPaid
	}

	if _, err := tx.Bills().CompareAndSetPaymentStatus(ctx, bill.ID(), billing.PaymentStatusPending, billing.PaymentStatusFailed, nil, now); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if err := createPaymentJob(ctx, tx, bill, txn, paymentID, "payment.failed", now); err != nil {
		return err
	}
	return errs.ErrPaymentFailure
}

func (s *paymentCommandsImpl) authorizeRenter(ctx context.Context, tx shared.Tx, bill *billing.Bill, actor Actor) (*booking.Booking, error) {
	b, err := loadBooking(ctx, tx, bill.BookingID())
	if err != nil {
		return nil, err
	}
	if b.RenterID() != actor.ID {
		return nil, errs.ErrForbiddenActor
	}
	return b, nil
}

func loadBill(ctx context.Context, tx shared.Tx, id uuid.UUID) (*billing.Bill, error) {
	bill, err := tx.Bills().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBillNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return bill, nil
}

type paymentJobPayload struct {
	BillID    uuid.UUID `json:"bill_id"`
	BookingID uuid.UUID `json:"booking_id"`
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id,omitempty"`
	Outcome   string    `json:"outcome"`
}

func createPaymentJob(
	ctx context.Context,
	tx shared.Tx,
	bill *billing.Bill,
	txn *payment.Transaction,
	paymentID, topic string,
	now time.Time,
) error {
	payload, err := json.Marshal(paymentJobPayload{
		BillID:    bill.ID(),
		BookingID: bill.BookingID(),
		OrderID:   txn.GatewayOrderID(),
		PaymentID: paymentID,
		Outcome:   topic,
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Notifications().CreateJob(ctx, "payment_outcome", topic, payload, now); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}
