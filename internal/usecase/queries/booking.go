package queries

import (
	"context"

	"rently-backend/internal/infra"
	"rently-backend/internal/pkg/errs"

	"github.com/google/uuid"
)

type BookingQueries interface {
	// GetByID returns the full booking view. Only the booking's owner and
	// renter may read it.
	GetByID(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*BookingView, error)
	ListByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]*BookingListItem, error)
}

type BookingViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByParticipant(ctx context.Context, actorID uuid.UUID, limit int32) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	repo BookingViewRepo
}

func NewBookingQueries(repo BookingViewRepo) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*BookingView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if view.OwnerID != actorID && view.RenterID != actorID {
		return nil, errs.ErrForbiddenActor
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByActor(ctx context.Context, actorID uuid.UUID, limit int) ([]*BookingListItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := q.repo.FindByParticipant(ctx, actorID, int32(limit))
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return rows, nil
}
