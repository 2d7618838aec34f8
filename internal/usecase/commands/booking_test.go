//go:build unit

package commands_test

import (
	"testing"
	"time"

	"rently-backend/internal/domain/billing"
	"rently-backend/internal/domain/booking"
	"rently-backend/internal/domain/payment"
	"rently-backend/internal/pkg/clock"
	"rently-backend/internal/pkg/config"
	"rently-backend/internal/pkg/errs"
	"rently-backend/internal/usecase/commands"
	"rently-backend/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBillingCfg = config.BillingConfig{TaxPct: 18, ServiceFeePct: 10}

type bookingFixture struct {
	uow     *fakeUoW
	catalog *fakeCatalog
	clock   *clock.MockClock
	svc     commands.BookingCommands
}

func newBookingFixture() *bookingFixture {
	uow := newFakeUoW()
	catalog := &fakeCatalog{}
	clk := clock.NewMockClock(time.Now().UTC())
	return &bookingFixture{
		uow:     uow,
		catalog: catalog,
		clock:   clk,
		svc:     commands.NewBookingCommands(uow, catalog, uow.tx.idempotency, testBillingCfg, clk),
	}
}

// seed persists a builder-made booking into the fake store and returns it.
func (f *bookingFixture) seed(bld *builder.BookingBuilder) *booking.Booking {
	b := bld.BuildDomain()
	f.uow.tx.bookings.put(b, f.clock.Now())
	return b
}

func (f *bookingFixture) seedBill(t *testing.T, bookingID uuid.UUID, method *billing.PaymentMethod, status billing.PaymentStatus) *billing.Bill {
	t.Helper()
	bill, err := billing.NewBill(bookingID, booking.NewMoney(10000), 4, billing.Rates{TaxPct: 18, ServiceFeePct: 10}, f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.uow.tx.bills.Create(t.Context(), bill, f.clock.Now()))
	row := f.uow.tx.bills.rows[bill.ID()]
	row.method = method
	row.status = status
	return bill
}

func methodPtr(m billing.PaymentMethod) *billing.PaymentMethod { return &m }

func requestInput(itemID uuid.UUID) commands.RequestBookingInput {
	start := booking.TruncateToDate(time.Now().AddDate(0, 0, 7))
	return commands.RequestBookingInput{
		ItemID:    itemID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 4),
		Note:      "weekend trip",
	}
}

func TestRequest(t *testing.T) {
	itemID := uuid.New()
	ownerID := uuid.New()
	renter := commands.Actor{ID: uuid.New(), Role: "member"}

	newFixtureWithItem := func() *bookingFixture {
		f := newBookingFixture()
		f.catalog.item = &commands.ItemSnapshot{ID: itemID, OwnerID: ownerID, PricePerDayPaise: 10000}
		return f
	}

	t.Run("creates a pending booking with history and job", func(t *testing.T) {
		f := newFixtureWithItem()
		key := uuid.New()

		result, err := f.svc.Request(t.Context(), renter, requestInput(itemID), key)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.IsReplayed)

		stored, err := f.uow.tx.bookings.FindByID(t.Context(), result.BookingID)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusPending, stored.Status())
		assert.Equal(t, ownerID, stored.OwnerID())
		assert.Equal(t, renter.ID, stored.RenterID())
		assert.Equal(t, int64(40000), stored.TotalPrice().Paise())

		ev := f.uow.tx.events.last()
		require.NotNil(t, ev)
		assert.Equal(t, booking.StatusPending, ev.NewStatus())

		assert.Equal(t, []string{"booking.pending"}, f.uow.tx.notifications.topics())

		rec, err := f.uow.tx.idempotency.Get(t.Context(), key, renter.ID)
		require.NoError(t, err)
		assert.Equal(t, "completed", rec.Status)
		require.NotNil(t, rec.ResultBookingID)
		assert.Equal(t, result.BookingID, *rec.ResultBookingID)
	})

	t.Run("replays a completed request instead of duplicating", func(t *testing.T) {
		f := newFixtureWithItem()
		key := uuid.New()
		in := requestInput(itemID)

		first, err := f.svc.Request(t.Context(), renter, in, key)
		require.NoError(t, err)

		second, err := f.svc.Request(t.Context(), renter, in, key)
		require.NoError(t, err)
		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.BookingID, second.BookingID)
		assert.Len(t, f.uow.tx.bookings.rows, 1)
	})

	t.Run("in-flight key with same payload conflicts", func(t *testing.T) {
		f := newFixtureWithItem()
		key := uuid.New()
		in := requestInput(itemID)

		// Claim the key without finishing the request.
		require.NoError(t, f.uow.tx.idempotency.TryInsert(t.Context(), key, renter.ID, "POST /bookings", hashOf(t, f, in), f.clock.Now()))

		_, err := f.svc.Request(t.Context(), renter, in, key)
		assert.ErrorIs(t, err, errs.ErrIdempotencyInProgress)
	})

	t.Run("key reuse with a different payload fails validation", func(t *testing.T) {
		f := newFixtureWithItem()
		key := uuid.New()

		require.NoError(t, f.uow.tx.idempotency.TryInsert(t.Context(), key, renter.ID, "POST /bookings", "different-hash", f.clock.Now()))

		_, err := f.svc.Request(t.Context(), renter, requestInput(itemID), key)
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("missing idempotency key is rejected", func(t *testing.T) {
		f := newFixtureWithItem()
		_, err := f.svc.Request(t.Context(), renter, requestInput(itemID), uuid.Nil)
		assert.ErrorIs(t, err, errs.ErrIdempotencyKeyRequired)
	})

	t.Run("overlapping booking conflicts", func(t *testing.T) {
		f := newFixtureWithItem()
		f.uow.tx.bookings.overlap = true

		_, err := f.svc.Request(t.Context(), renter, requestInput(itemID), uuid.New())
		assert.ErrorIs(t, err, errs.ErrBookingConflict)
	})

	t.Run("unknown item maps to not found", func(t *testing.T) {
		f := newBookingFixture()
		f.catalog.itemErr = errCatalogDown

		_, err := f.svc.Request(t.Context(), renter, requestInput(itemID), uuid.New())
		assert.ErrorIs(t, err, errs.ErrItemNotFound)
	})

	t.Run("owner booking own item fails validation", func(t *testing.T) {
		f := newFixtureWithItem()
		_, err := f.svc.Request(t.Context(), commands.Actor{ID: ownerID}, requestInput(itemID), uuid.New())
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("inverted dates fail validation", func(t *testing.T) {
		f := newFixtureWithItem()
		in := requestInput(itemID)
		in.StartDate, in.EndDate = in.EndDate, in.StartDate

		_, err := f.svc.Request(t.Context(), renter, in, uuid.New())
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

// hashOf reproduces the request hash by running the command once against a
// throwaway fixture and reading back the stored record.
func hashOf(t *testing.T, f *bookingFixture, in commands.RequestBookingInput) string {
	t.Helper()
	scratch := newBookingFixture()
	scratch.catalog.item = f.catalog.item
	key := uuid.New()
	actor := commands.Actor{ID: uuid.New()}
	_, err := scratch.svc.Request(t.Context(), actor, in, key)
	require.NoError(t, err)
	rec, err := scratch.uow.tx.idempotency.Get(t.Context(), key, actor.ID)
	require.NoError(t, err)
	return rec.RequestHash
}

func TestAccept(t *testing.T) {
	t.Run("moves to accepted and derives the bill", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder()
		b := f.seed(bld)

		err := f.svc.Accept(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID(), "pickup after 6pm")
		require.NoError(t, err)

		stored, err := f.uow.tx.bookings.FindByID(t.Context(), b.ID())
		require.NoError(t, err)
		assert.Equal(t, booking.StatusAcceptedByOwner, stored.Status())
		assert.Equal(t, "pickup after 6pm", stored.OwnerNote().String())

		bill, err := f.uow.tx.bills.FindByBookingID(t.Context(), b.ID())
		require.NoError(t, err)
		assert.Equal(t, int64(40000), bill.Subtotal().Paise())
		assert.Equal(t, int64(51200), bill.Total().Paise())
		assert.Equal(t, billing.PaymentStatusPending, bill.PaymentStatus())

		assert.Equal(t, []string{"booking.accepted_by_owner"}, f.uow.tx.notifications.topics())
	})

	t.Run("renter cannot accept", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder()
		b := f.seed(bld)

		err := f.svc.Accept(t.Context(), commands.Actor{ID: bld.RenterID()}, b.ID(), "")
		assert.ErrorIs(t, err, errs.ErrForbiddenActor)
	})

	t.Run("second accept is an invalid transition", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder()
		b := f.seed(bld)
		owner := commands.Actor{ID: bld.OwnerID()}

		require.NoError(t, f.svc.Accept(t.Context(), owner, b.ID(), ""))
		err := f.svc.Accept(t.Context(), owner, b.ID(), "")
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("concurrent transition surfaces as conflict", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder()
		b := f.seed(bld)
		f.uow.tx.bookings.failCAS = true

		err := f.svc.Accept(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID(), "")
		assert.ErrorIs(t, err, errs.ErrBookingConflict)
	})

	t.Run("unknown booking is not found", func(t *testing.T) {
		f := newBookingFixture()
		err := f.svc.Accept(t.Context(), commands.Actor{ID: uuid.New()}, uuid.New(), "")
		assert.ErrorIs(t, err, errs.ErrBookingNotFound)
	})
}

func TestConfirm(t *testing.T) {
	t.Run("locks the catalog range inside the transition", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusAcceptedByOwner)
		b := f.seed(bld)
		f.seedBill(t, b.ID(), nil, billing.PaymentStatusPending)

		err := f.svc.Confirm(t.Context(), commands.Actor{ID: bld.RenterID()}, b.ID())
		require.NoError(t, err)

		stored, err := f.uow.tx.bookings.FindByID(t.Context(), b.ID())
		require.NoError(t, err)
		assert.Equal(t, booking.StatusConfirmed, stored.Status())

		require.Len(t, f.catalog.locks, 1)
		assert.Equal(t, b.ID(), f.catalog.locks[0].bookingID)
		assert.Equal(t, b.Period().Start(), f.catalog.locks[0].start)
		assert.Equal(t, b.Period().End(), f.catalog.locks[0].end)
	})

	t.Run("without a bill the transition is invalid", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusAcceptedByOwner)
		b := f.seed(bld)

		err := f.svc.Confirm(t.Context(), commands.Actor{ID: bld.RenterID()}, b.ID())
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("catalog lock rejection rolls up as conflict", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusAcceptedByOwner)
		b := f.seed(bld)
		f.seedBill(t, b.ID(), nil, billing.PaymentStatusPending)
		f.catalog.lockErr = errCatalogDown

		err := f.svc.Confirm(t.Context(), commands.Actor{ID: bld.RenterID()}, b.ID())
		assert.ErrorIs(t, err, errs.ErrBookingConflict)
	})
}

func TestExtend(t *testing.T) {
	t.Run("extends the period and reprices", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)

		err := f.svc.Extend(t.Context(), commands.Actor{ID: bld.RenterID()}, b.ID(), 2)
		require.NoError(t, err)

		stored, err := f.uow.tx.bookings.FindByID(t.Context(), b.ID())
		require.NoError(t, err)
		assert.Equal(t, b.Period().End().AddDate(0, 0, 2), stored.Period().End())
		assert.Equal(t, int64(60000), stored.TotalPrice().Paise())
		require.Len(t, f.catalog.locks, 1)
	})

	t.Run("conflicting extension is rejected before any write", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)
		f.uow.tx.bookings.overlap = true

		err := f.svc.Extend(t.Context(), commands.Actor{ID: bld.RenterID()}, b.ID(), 2)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)

		stored, findErr := f.uow.tx.bookings.FindByID(t.Context(), b.ID())
		require.NoError(t, findErr)
		assert.Equal(t, b.Period().End(), stored.Period().End())
		assert.Empty(t, f.catalog.locks)
	})

	t.Run("only confirmed bookings extend", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder()
		b := f.seed(bld)

		err := f.svc.Extend(t.Context(), commands.Actor{ID: bld.RenterID()}, b.ID(), 2)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestAssignLogistics(t *testing.T) {
	t.Run("owner assigns a provider", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().
			WithStatus(booking.StatusConfirmed).
			WithThirdPartyRequired(true)
		b := f.seed(bld)

		err := f.svc.AssignLogistics(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID(), "Delhivery", "AWB 12345")
		require.NoError(t, err)

		require.Len(t, f.uow.tx.logistics.upserted, 1)
		assert.Equal(t, "Delhivery", f.uow.tx.logistics.upserted[0].Provider())
		assert.Equal(t, []string{"booking.confirmed"}, f.uow.tx.notifications.topics())
	})

	t.Run("re-assignment overwrites", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().
			WithStatus(booking.StatusConfirmed).
			WithThirdPartyRequired(true)
		b := f.seed(bld)
		owner := commands.Actor{ID: bld.OwnerID()}

		require.NoError(t, f.svc.AssignLogistics(t.Context(), owner, b.ID(), "Delhivery", ""))
		require.NoError(t, f.svc.AssignLogistics(t.Context(), owner, b.ID(), "BlueDart", ""))
		require.Len(t, f.uow.tx.logistics.upserted, 2)
		assert.Equal(t, "BlueDart", f.uow.tx.logistics.upserted[1].Provider())
	})

	t.Run("rejected without third-party requirement", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)

		err := f.svc.AssignLogistics(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID(), "Delhivery", "")
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestReturn(t *testing.T) {
	t.Run("marks returned and releases the range", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)

		err := f.svc.Return(t.Context(), commands.Actor{ID: bld.RenterID()}, b.ID())
		require.NoError(t, err)

		stored, findErr := f.uow.tx.bookings.FindByID(t.Context(), b.ID())
		require.NoError(t, findErr)
		assert.True(t, stored.ItemReturned())
		assert.Equal(t, booking.StatusConfirmed, stored.Status())
		assert.Equal(t, []uuid.UUID{b.ID()}, f.catalog.releases)
	})

	t.Run("double return is invalid", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)
		renter := commands.Actor{ID: bld.RenterID()}

		require.NoError(t, f.svc.Return(t.Context(), renter, b.ID()))
		err := f.svc.Return(t.Context(), renter, b.ID())
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestComplete(t *testing.T) {
	t.Run("paid gateway bill completes", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)
		f.seedBill(t, b.ID(), methodPtr(billing.MethodGateway), billing.PaymentStatusPaid)

		err := f.svc.Complete(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID())
		require.NoError(t, err)

		stored, findErr := f.uow.tx.bookings.FindByID(t.Context(), b.ID())
		require.NoError(t, findErr)
		assert.Equal(t, booking.StatusCompleted, stored.Status())
		assert.Equal(t, []string{"booking.completed"}, f.uow.tx.notifications.topics())
	})

	t.Run("pending cash-on-delivery bill completes", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)
		f.seedBill(t, b.ID(), methodPtr(billing.MethodCashOnDelivery), billing.PaymentStatusPending)

		err := f.svc.Complete(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID())
		require.NoError(t, err)
	})

	t.Run("completing an un-returned booking releases the range", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)
		f.seedBill(t, b.ID(), methodPtr(billing.MethodCashOnDelivery), billing.PaymentStatusPending)

		err := f.svc.Complete(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID())
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{b.ID()}, f.catalog.releases)
	})

	t.Run("a returned booking is not released again", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed).WithItemReturned(true)
		b := f.seed(bld)
		f.seedBill(t, b.ID(), methodPtr(billing.MethodGateway), billing.PaymentStatusPaid)

		err := f.svc.Complete(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID())
		require.NoError(t, err)
		assert.Empty(t, f.catalog.releases)
	})

	t.Run("pending gateway bill blocks completion", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)
		f.seedBill(t, b.ID(), methodPtr(billing.MethodGateway), billing.PaymentStatusPending)

		err := f.svc.Complete(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID())
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestCancel(t *testing.T) {
	t.Run("cancel from confirmed releases the range and voids attempts", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder().WithStatus(booking.StatusConfirmed)
		b := f.seed(bld)
		bill := f.seedBill(t, b.ID(), methodPtr(billing.MethodGateway), billing.PaymentStatusPending)

		txn, err := payment.NewGatewayTransaction(bill.ID(), "order_abc123", bill.Total())
		require.NoError(t, err)
		require.NoError(t, f.uow.tx.transactions.Create(t.Context(), txn, f.clock.Now()))

		err = f.svc.Cancel(t.Context(), commands.Actor{ID: bld.RenterID()}, b.ID(), "plans changed")
		require.NoError(t, err)

		stored, findErr := f.uow.tx.bookings.FindByID(t.Context(), b.ID())
		require.NoError(t, findErr)
		assert.Equal(t, booking.StatusCancelled, stored.Status())
		assert.Equal(t, []uuid.UUID{b.ID()}, f.catalog.releases)
		assert.Equal(t, payment.StatusFailed, f.uow.tx.transactions.rows[0].status)
	})

	t.Run("cancel from pending skips the catalog", func(t *testing.T) {
		f := newBookingFixture()
		bld := builder.NewBookingBuilder()
		b := f.seed(bld)

		err := f.svc.Cancel(t.Context(), commands.Actor{ID: bld.OwnerID()}, b.ID(), "")
		require.NoError(t, err)
		assert.Empty(t, f.catalog.releases)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		f := newBookingFixture()
		b := f.seed(builder.NewBookingBuilder())

		err := f.svc.Cancel(t.Context(), commands.Actor{ID: uuid.New()}, b.ID(), "")
		assert.ErrorIs(t, err, errs.ErrForbiddenActor)
	})
}
