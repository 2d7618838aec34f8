package repository

import (
	"context"

	"rently-backend/internal/domain/booking"
	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"
)

type LogisticsRepository struct {
	db db.DBTX
}

func NewLogisticsRepository(dbtx db.DBTX) *LogisticsRepository {
	return &LogisticsRepository{db: dbtx}
}

func (r *LogisticsRepository) Upsert(ctx context.Context, a *booking.LogisticsAssignment) error {
	const query = `
		INSERT INTO logistics_assignments (booking_id, provider, details, assigned_by, assigned_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (booking_id) DO UPDATE
		SET provider = EXCLUDED.provider,
		    details = EXCLUDED.details,
		    assigned_by = EXCLUDED.assigned_by,
		    assigned_at = EXCLUDED.assigned_at`

	_, err := r.db.Exec(ctx, query,
		a.BookingID(), a.Provider(), a.Details(), a.AssignedBy(), a.AssignedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert logistics assignment", err)
	}
	return nil
}
