package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rently-backend/internal/domain/billing"
	"rently-backend/internal/domain/booking"
	"rently-backend/internal/infra"
	"rently-backend/internal/pkg/clock"
	"rently-backend/internal/pkg/config"
	"rently-backend/internal/pkg/errs"
	"rently-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

const idempotencyTTL = 24 * time.Hour

type RequestBookingInput struct {
	ItemID              uuid.UUID `json:"item_id"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	ThirdPartyLogistics bool      `json:"third_party_logistics"`
	Note                string    `json:"note"`
}

type RequestBookingResult struct {
	BookingID  uuid.UUID
	IsReplayed bool
}

type BookingCommands interface {
	// Request creates a pending booking. The idempotency key makes retried
	// submissions return the original booking instead of a duplicate.
	Request(ctx context.Context, actor Actor, in RequestBookingInput, idempotencyKey uuid.UUID) (*RequestBookingResult, error)
	Accept(ctx context.Context, actor Actor, bookingID uuid.UUID, note string) error
	Confirm(ctx context.Context, actor Actor, bookingID uuid.UUID) error
	Extend(ctx context.Context, actor Actor, bookingID uuid.UUID, days int) error
	AssignLogistics(ctx context.Context, actor Actor, bookingID uuid.UUID, provider, details string) error
	Return(ctx context.Context, actor Actor, bookingID uuid.UUID) error
	Complete(ctx context.Context, actor Actor, bookingID uuid.UUID) error
	Cancel(ctx context.Context, actor Actor, bookingID uuid.UUID, note string) error
}

type bookingCommandsImpl struct {
	uow     shared.UnitOfWork
	catalog CatalogService
	// idempotency runs on the pool, outside Within. A duplicate-key error
	// inside the write transaction would abort it before the replay lookup.
	idempotency shared.IdempotencyRepository
	rates       billing.Rates
	clock       clock.Clock
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	catalog CatalogService,
	idempotency shared.IdempotencyRepository,
	billingCfg config.BillingConfig,
	clk clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:         uow,
		catalog:     catalog,
		idempotency: idempotency,
		rates:       billing.Rates{TaxPct: billingCfg.TaxPct, ServiceFeePct: billingCfg.ServiceFeePct},
		clock:       clk,
	}
}

func (s *bookingCommandsImpl) Request(
	ctx context.Context,
	actor Actor,
	in RequestBookingInput,
	idempotencyKey uuid.UUID,
) (*RequestBookingResult, error) {
	if idempotencyKey == uuid.Nil {
		return nil, errs.ErrIdempotencyKeyRequired
	}

	period, err := booking.NewDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	item, err := s.catalog.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrItemNotFound)
	}

	requestHash := calculateRequestHash(in)
	now := s.clock.Now()

	replayed, err := s.claimIdempotencyKey(ctx, idempotencyKey, actor.ID, requestHash, now)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return replayed, nil
	}

	var result *RequestBookingResult
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		conflict, err := tx.Bookings().HasOverlapping(ctx, in.ItemID, period.Start(), period.End(), uuid.Nil)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if conflict {
			return errs.ErrBookingConflict
		}

		pricePerDay, err := booking.NewMoneyFromPaise(item.PricePerDayPaise)
		if err != nil {
			return errs.Mark(err, errs.ErrValidation)
		}

		b, ev, err := booking.NewBooking(
			&booking.Services{Clock: s.clock},
			booking.ItemSpec{ID: item.ID, OwnerID: item.OwnerID, PricePerDay: pricePerDay},
			actor.ID,
			period,
			in.ThirdPartyLogistics,
			booking.NewNote(in.Note),
		)
		if err != nil {
			return mapDomainErr(err)
		}

		if err := tx.Bookings().Create(ctx, b, now); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := tx.Events().Append(ctx, ev); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := createTransitionJob(ctx, tx, b, ev, now); err != nil {
			return err
		}
		if err := tx.Idempotency().UpdateStatusCompleted(ctx, idempotencyKey, actor.ID, hashID(b.ID()), b.ID()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		result = &RequestBookingResult{BookingID: b.ID()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// claimIdempotencyKey inserts the key, falling through to replay handling
// when another request already holds it.
func (s *bookingCommandsImpl) claimIdempotencyKey(
	ctx context.Context,
	key, actorID uuid.UUID,
	requestHash string,
	now time.Time,
) (*RequestBookingResult, error) {
	err := s.idempotency.TryInsert(ctx, key, actorID, "POST /bookings", requestHash, now.Add(idempotencyTTL))
	if err == nil {
		return nil, nil
	}
	if !infra.IsKind(err, infra.KindDuplicateKey) {
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}

	existing, err := s.idempotency.Get(ctx, key, actorID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrIdempotencyCheckFailed)
	}

	switch existing.Status {
	case "completed":
		if existing.ResultBookingID == nil {
			return nil, errs.Mark(errs.New("completed request missing result booking id"), errs.ErrIdempotencyCheckFailed)
		}
		return &RequestBookingResult{BookingID: *existing.ResultBookingID, IsReplayed: true}, nil
	case "processing":
		if existing.RequestHash != requestHash {
			return nil, errs.ErrValidation
		}
		return nil, errs.ErrIdempotencyInProgress
	default:
		return nil, errs.Mark(errs.New("invalid idempotency key status"), errs.ErrIdempotencyCheckFailed)
	}
}

func (s *bookingCommandsImpl) Accept(ctx context.Context, actor Actor, bookingID uuid.UUID, note string) error {
	now := s.clock.Now()
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		prev := b.Status()

		ev, err := b.Apply(booking.ActionOwnerAccept, actor.ID, booking.TransitionInput{Note: note}, now)
		if err != nil {
			return mapDomainErr(err)
		}

		if err := casStatus(ctx, tx, b, prev, now); err != nil {
			return err
		}
		if note != "" {
			if err := tx.Bookings().SetOwnerNote(ctx, bookingID, note, now); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		bill, err := billing.NewBill(b.ID(), b.PricePerDay(), b.Period().Days(), s.rates, now)
		if err != nil {
			return errs.Mark(err, errs.ErrValidation)
		}
		if err := tx.Bills().Create(ctx, bill, now); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, errs.ErrBillAlreadyExists)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := tx.Events().Append(ctx, ev); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return createTransitionJob(ctx, tx, b, ev, now)
	})
}

func (s *bookingCommandsImpl) Confirm(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	now := s.clock.Now()
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		prev := b.Status()

		in, err := billFacts(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		ev, err := b.Apply(booking.ActionRenterConfirm, actor.ID, in, now)
		if err != nil {
			return mapDomainErr(err)
		}

		if err := casStatus(ctx, tx, b, prev, now); err != nil {
			return err
		}

		// Lock before commit: if the catalog rejects the range the whole
		// transition rolls back.
		if err := s.catalog.LockRange(ctx, b.ItemID(), b.ID(), b.Period().Start(), b.Period().End()); err != nil {
			return errs.Mark(err, errs.ErrBookingConflict)
		}

		if err := tx.Events().Append(ctx, ev); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return createTransitionJob(ctx, tx, b, ev, now)
	})
}

func (s *bookingCommandsImpl) Extend(ctx context.Context, actor Actor, bookingID uuid.UUID, days int) error {
	now := s.clock.Now()
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		in := booking.TransitionInput{ExtendDays: days}
		if days > 0 {
			extended, extErr := b.Period().ExtendedBy(days)
			if extErr == nil {
				conflict, ovErr := tx.Bookings().HasOverlapping(ctx, b.ItemID(), b.Period().End(), extended.End(), b.ID())
				if ovErr != nil {
					return errs.Mark(ovErr, errs.ErrDatabaseOperationFailed)
				}
				in.RangeConflict = conflict
			}
		}

		ev, err := b.Apply(booking.ActionExtend, actor.ID, in, now)
		if err != nil {
			return mapDomainErr(err)
		}

		if err := tx.Bookings().UpdatePeriodAndPrice(ctx, b.ID(), b.Period().End(), b.TotalPrice().Paise(), now); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := s.catalog.LockRange(ctx, b.ItemID(), b.ID(), b.Period().Start(), b.Period().End()); err != nil {
			return errs.Mark(err, errs.ErrBookingConflict)
		}

		if err := tx.Events().Append(ctx, ev); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return createTransitionJob(ctx, tx, b, ev, now)
	})
}

func (s *bookingCommandsImpl) AssignLogistics(ctx context.Context, actor Actor, bookingID uuid.UUID, provider, details string) error {
	now := s.clock.Now()
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		ev, err := b.Apply(booking.ActionAssignLogistics, actor.ID, booking.TransitionInput{Provider: provider, Details: details}, now)
		if err != nil {
			return mapDomainErr(err)
		}

		if err := tx.Logistics().Upsert(ctx, b.Logistics()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if err := tx.Events().Append(ctx, ev); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return createTransitionJob(ctx, tx, b, ev, now)
	})
}

func (s *bookingCommandsImpl) Return(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	now := s.clock.Now()
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		ev, err := b.Apply(booking.ActionReturn, actor.ID, booking.TransitionInput{}, now)
		if err != nil {
			return mapDomainErr(err)
		}

		if err := tx.Bookings().SetItemReturned(ctx, b.ID(), now); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		// The item is back with the owner, the calendar range frees up.
		if err := s.catalog.ReleaseRange(ctx, b.ItemID(), b.ID()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := tx.Events().Append(ctx, ev); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return createTransitionJob(ctx, tx, b, ev, now)
	})
}

func (s *bookingCommandsImpl) Complete(ctx context.Context, actor Actor, bookingID uuid.UUID) error {
	now := s.clock.Now()
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		prev := b.Status()

		in, err := billFacts(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		ev, err := b.Apply(booking.ActionComplete, actor.ID, in, now)
		if err != nil {
			return mapDomainErr(err)
		}

		if err := casStatus(ctx, tx, b, prev, now); err != nil {
			return err
		}

		// A booking completed at handoff, without a recorded return, still
		// holds its calendar range in the catalog.
		if prev == booking.StatusConfirmed && !b.ItemReturned() {
			if err := s.catalog.ReleaseRange(ctx, b.ItemID(), b.ID()); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		if err := tx.Events().Append(ctx, ev); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return createTransitionJob(ctx, tx, b, ev, now)
	})
}

func (s *bookingCommandsImpl) Cancel(ctx context.Context, actor Actor, bookingID uuid.UUID, note string) error {
	now := s.clock.Now()
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := loadBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		prev := b.Status()

		ev, err := b.Apply(booking.ActionCancel, actor.ID, booking.TransitionInput{Note: note}, now)
		if err != nil {
			return mapDomainErr(err)
		}

		if err := casStatus(ctx, tx, b, prev, now); err != nil {
			return err
		}

		// Unresolved payment attempts die with the booking.
		bill, err := tx.Bills().FindByBookingID(ctx, bookingID)
		if err == nil {
			if err := tx.Transactions().VoidInitiatedByBillID(ctx, bill.ID(), now); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		} else if !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if prev == booking.StatusConfirmed {
			if err := s.catalog.ReleaseRange(ctx, b.ItemID(), b.ID()); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		if err := tx.Events().Append(ctx, ev); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return createTransitionJob(ctx, tx, b, ev, now)
	})
}

func loadBooking(ctx context.Context, tx shared.Tx, id uuid.UUID) (*booking.Booking, error) {
	b, err := tx.Bookings().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return b, nil
}

// casStatus persists a status move with compare-and-set semantics. A missed
// CAS means a concurrent transition landed first.
func casStatus(ctx context.Context, tx shared.Tx, b *booking.Booking, prev booking.Status, now time.Time) error {
	ok, err := tx.Bookings().CompareAndSetStatus(ctx, b.ID(), prev, b.Status(), now)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !ok {
		return errs.ErrBookingConflict
	}
	return nil
}

func billFacts(ctx context.Context, tx shared.Tx, bookingID uuid.UUID) (booking.TransitionInput, error) {
	bill, err := tx.Bills().FindByBookingID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return booking.TransitionInput{}, nil
		}
		return booking.TransitionInput{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return booking.TransitionInput{
		BillExists: true,
		BillPaid:   bill.IsPaid(),
		BillCOD:    bill.IsCashOnDelivery(),
	}, nil
}

func mapDomainErr(err error) error {
	var invalid *booking.InvalidTransitionError
	switch {
	case errors.As(err, &invalid):
		return errs.Mark(err, errs.ErrInvalidTransition)
	case errors.Is(err, booking.ErrNotParticipant), errors.Is(err, booking.ErrWrongParty):
		return errs.Mark(err, errs.ErrForbiddenActor)
	default:
		return errs.Mark(err, errs.ErrValidation)
	}
}

type transitionJobPayload struct {
	BookingID      uuid.UUID `json:"booking_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ActorID        uuid.UUID `json:"actor_id"`
	ActorParty     string    `json:"actor_party"`
}

func createTransitionJob(ctx context.Context, tx shared.Tx, b *booking.Booking, ev *booking.Event, now time.Time) error {
	payload, err := json.Marshal(transitionJobPayload{
		BookingID:      b.ID(),
		PreviousStatus: ev.PreviousStatus().String(),
		NewStatus:      ev.NewStatus().String(),
		ActorID:        ev.ActorID(),
		ActorParty:     ev.ActorParty().String(),
	})
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	topic := fmt.Sprintf("booking.%s", ev.NewStatus())
	if err := tx.Notifications().CreateJob(ctx, "booking_transition", topic, payload, now); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}

func calculateRequestHash(in RequestBookingInput) string {
	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hashID(id uuid.UUID) string {
	sum := sha256.Sum256([]byte(id.String()))
	return hex.EncodeToString(sum[:])
}
