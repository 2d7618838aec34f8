package queries

import (
	"context"

	"rently-backend/internal/infra"
	"rently-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

type BillQueries interface {
	GetByID(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*BillView, error)
	GetByBookingID(ctx context.Context, actorID uuid.UUID, bookingID uuid.UUID) (*BillView, error)
}

type BillViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BillView, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*BillView, error)
	// ParticipantsOf returns the owner and renter of the bill's booking.
	ParticipantsOf(ctx context.Context, billID uuid.UUID) (ownerID, renterID uuid.UUID, err error)
}

type billQueriesImpl struct {
	repo BillViewRepo
}

func NewBillQueries(repo BillViewRepo) BillQueries {
	return &billQueriesImpl{repo: repo}
}

func (q *billQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*BillView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBillNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := q.authorize(ctx, actorID, view.ID); err != nil {
		return nil, err
	}
	return view, nil
}

func (q *billQueriesImpl) GetByBookingID(ctx context.Context, actorID uuid.UUID, bookingID uuid.UUID) (*BillView, error) {
	view, err := q.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBillNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := q.authorize(ctx, actorID, view.ID); err != nil {
		return nil, err
	}
	return view, nil
}

func (q *billQueriesImpl) authorize(ctx context.Context, actorID, billID uuid.UUID) error {
	ownerID, renterID, err := q.repo.ParticipantsOf(ctx, billID)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if actorID != ownerID && actorID != renterID {
		return errs.ErrForbiddenActor
	}
	return nil
}
