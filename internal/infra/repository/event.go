package repository

import (
	"context"

	"rently-backend/internal/domain/booking"
	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"
)

type EventRepository struct {
	db db.DBTX
}

func NewEventRepository(dbtx db.DBTX) *EventRepository {
	return &EventRepository{db: dbtx}
}

func (r *EventRepository) Append(ctx context.Context, ev *booking.Event) error {
	const query = `
		INSERT INTO booking_events (
			id, booking_id, previous_status, new_status, actor_id, actor_party,
			note, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		ev.ID(), ev.BookingID(), ev.PreviousStatus().String(), ev.NewStatus().String(),
		ev.ActorID(), ev.ActorParty().String(), ev.Note(), ev.CreatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append booking event", err)
	}
	return nil
}
