package repository

import (
	"context"
	"time"

	"rently-backend/internal/domain/booking"
	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

type bookingRow struct {
	ID                 uuid.UUID  `db:"id"`
	ItemID             uuid.UUID  `db:"item_id"`
	OwnerID            uuid.UUID  `db:"owner_id"`
	RenterID           uuid.UUID  `db:"renter_id"`
	StartDate          time.Time  `db:"start_date"`
	EndDate            time.Time  `db:"end_date"`
	Status             string     `db:"status"`
	RenterNote         string     `db:"renter_note"`
	OwnerNote          string     `db:"owner_note"`
	ThirdPartyRequired bool       `db:"third_party_required"`
	ItemReturned       bool       `db:"item_returned"`
	PricePerDayPaise   int64      `db:"price_per_day_paise"`
	TotalPricePaise    int64      `db:"total_price_paise"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	LgProvider         *string    `db:"lg_provider"`
	LgDetails          *string    `db:"lg_details"`
	LgAssignedBy       *uuid.UUID `db:"lg_assigned_by"`
	LgAssignedAt       *time.Time `db:"lg_assigned_at"`
}

func (r bookingRow) toDomain() (*booking.Booking, error) {
	period, err := booking.NewDateRange(r.StartDate, r.EndDate)
	if err != nil {
		return nil, err
	}

	var logistics *booking.LogisticsAssignment
	if r.LgProvider != nil {
		logistics = booking.NewLogisticsAssignment(r.ID, *r.LgProvider, derefStr(r.LgDetails), derefUUID(r.LgAssignedBy), derefTime(r.LgAssignedAt))
	}

	return booking.ReconstructBooking(
		r.ID, r.ItemID, r.OwnerID, r.RenterID,
		period,
		booking.Status(r.Status),
		booking.NewNote(r.RenterNote), booking.NewNote(r.OwnerNote),
		r.ThirdPartyRequired, r.ItemReturned,
		booking.NewMoney(r.PricePerDayPaise), booking.NewMoney(r.TotalPricePaise),
		logistics,
		r.CreatedAt, r.UpdatedAt,
	), nil
}

type BookingRepository struct {
	db db.DBTX
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{db: dbtx}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking, now time.Time) error {
	const query = `
		INSERT INTO bookings (
			id, item_id, owner_id, renter_id, start_date, end_date, status,
			renter_note, owner_note, third_party_required, item_returned,
			price_per_day_paise, total_price_paise, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)`

	_, err := r.db.Exec(ctx, query,
		b.ID(), b.ItemID(), b.OwnerID(), b.RenterID(),
		b.Period().Start(), b.Period().End(), b.Status().String(),
		b.RenterNote().String(), b.OwnerNote().String(),
		b.ThirdPartyRequired(), b.ItemReturned(),
		b.PricePerDay().Paise(), b.TotalPrice().Paise(), now,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	const query = `
		SELECT b.id, b.item_id, b.owner_id, b.renter_id, b.start_date, b.end_date,
		       b.status, b.renter_note, b.owner_note, b.third_party_required,
		       b.item_returned, b.price_per_day_paise, b.total_price_paise,
		       b.created_at, b.updated_at,
		       l.provider AS lg_provider, l.details AS lg_details,
		       l.assigned_by AS lg_assigned_by, l.assigned_at AS lg_assigned_at
		FROM bookings b
		LEFT JOIN logistics_assignments l ON l.booking_id = b.id
		WHERE b.id = $1`

	var row bookingRow
	if err := pgxscan.Get(ctx, r.db, &row, query, id); err != nil {
		return nil, infra.WrapRepoErr("failed to find booking", err)
	}

	b, err := row.toDomain()
	if err != nil {
		return nil, infra.WrapRepoErrKind(infra.KindDBFailure, "failed to reconstruct booking", err)
	}
	return b, nil
}

func (r *BookingRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to booking.Status, updatedAt time.Time) (bool, error) {
	const query = `
		UPDATE bookings SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`

	tag, err := r.db.Exec(ctx, query, to.String(), updatedAt, id, from.String())
	if err != nil {
		return false, infra.WrapRepoErr("failed to update booking status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *BookingRepository) UpdatePeriodAndPrice(ctx context.Context, id uuid.UUID, endDate time.Time, totalPricePaise int64, updatedAt time.Time) error {
	const query = `
		UPDATE bookings SET end_date = $1, total_price_paise = $2, updated_at = $3
		WHERE id = $4`

	tag, err := r.db.Exec(ctx, query, endDate, totalPricePaise, updatedAt, id)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking period", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErrKind(infra.KindNotFound, "booking not found", nil)
	}
	return nil
}

func (r *BookingRepository) SetItemReturned(ctx context.Context, id uuid.UUID, updatedAt time.Time) error {
	const query = `
		UPDATE bookings SET item_returned = TRUE, updated_at = $1
		WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, updatedAt, id)
	if err != nil {
		return infra.WrapRepoErr("failed to mark item returned", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErrKind(infra.KindNotFound, "booking not found", nil)
	}
	return nil
}

func (r *BookingRepository) SetOwnerNote(ctx context.Context, id uuid.UUID, note string, updatedAt time.Time) error {
	const query = `
		UPDATE bookings SET owner_note = $1, updated_at = $2
		WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, note, updatedAt, id)
	if err != nil {
		return infra.WrapRepoErr("failed to set owner note", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErrKind(infra.KindNotFound, "booking not found", nil)
	}
	return nil
}

func (r *BookingRepository) HasOverlapping(ctx context.Context, itemID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE item_id = $1
			  AND id <> $2
			  AND status IN ('accepted_by_owner', 'confirmed')
			  AND start_date < $4
			  AND end_date > $3
		)`

	var exists bool
	if err := pgxscan.Get(ctx, r.db, &exists, query, itemID, excludeID, start, end); err != nil {
		return false, infra.WrapRepoErr("failed to check overlapping bookings", err)
	}
	return exists, nil
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefUUID(u *uuid.UUID) uuid.UUID {
	if u == nil {
		return uuid.Nil
	}
	return *u
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
