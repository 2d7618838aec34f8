package readstore

import (
	"context"
	"time"

	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"
	"rently-backend/internal/usecase/queries"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

type bookingViewRow struct {
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
	BillID             *uuid.UUID `db:"bill_id"`
	BillNumber         *string    `db:"bill_number"`
	BillTotalPaise     *int64     `db:"bill_total_paise"`
	BillPaymentStatus  *string    `db:"bill_payment_status"`
	LgProvider         *string    `db:"lg_provider"`
	LgDetails          *string    `db:"lg_details"`
	LgAssignedBy       *uuid.UUID `db:"lg_assigned_by"`
	LgAssignedAt       *time.Time `db:"lg_assigned_at"`
}

type historyRow struct {
	PreviousStatus string    `db:"previous_status"`
	NewStatus      string    `db:"new_status"`
	ActorID        uuid.UUID `db:"actor_id"`
	ActorParty     string    `db:"actor_party"`
	Note           string    `db:"note"`
	CreatedAt      time.Time `db:"created_at"`
}

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	const query = `
		SELECT b.id, b.item_id, b.owner_id, b.renter_id, b.start_date, b.end_date,
		       b.status, b.renter_note, b.owner_note, b.third_party_required,
		       b.item_returned, b.price_per_day_paise, b.total_price_paise,
		       b.created_at, b.updated_at,
		       bl.id AS bill_id, bl.bill_number, bl.total_paise AS bill_total_paise,
		       bl.payment_status AS bill_payment_status,
		       l.provider AS lg_provider, l.details AS lg_details,
		       l.assigned_by AS lg_assigned_by, l.assigned_at AS lg_assigned_at
		FROM bookings b
		LEFT JOIN bills bl ON bl.booking_id = b.id
		LEFT JOIN logistics_assignments l ON l.booking_id = b.id
		WHERE b.id = $1`

	var row bookingViewRow
	if err := pgxscan.Get(ctx, r.db, &row, query, id); err != nil {
		return nil, infra.WrapRepoErr("failed to find booking view", err)
	}

	const historyQuery = `
		SELECT previous_status, new_status, actor_id, actor_party, note, created_at
		FROM booking_events
		WHERE booking_id = $1
		ORDER BY created_at ASC`

	var events []historyRow
	if err := pgxscan.Select(ctx, r.db, &events, historyQuery, id); err != nil {
		return nil, infra.WrapRepoErr("failed to load booking history", err)
	}

	return rowToBookingView(row, events), nil
}

func (r *BookingReadStore) FindByParticipant(ctx context.Context, actorID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	const query = `
		SELECT id, item_id, start_date, end_date, status, total_price_paise, created_at
		FROM bookings
		WHERE owner_id = $1 OR renter_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var rows []*queries.BookingListItem
	if err := pgxscan.Select(ctx, r.db, &rows, query, actorID, limit); err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	return rows, nil
}

func rowToBookingView(row bookingViewRow, events []historyRow) *queries.BookingView {
	view := &queries.BookingView{
		ID:                 row.ID,
		ItemID:             row.ItemID,
		OwnerID:            row.OwnerID,
		RenterID:           row.RenterID,
		StartDate:          row.StartDate,
		EndDate:            row.EndDate,
		Status:             row.Status,
		RenterNote:         row.RenterNote,
		OwnerNote:          row.OwnerNote,
		ThirdPartyRequired: row.ThirdPartyRequired,
		ItemReturned:       row.ItemReturned,
		PricePerDayPaise:   row.PricePerDayPaise,
		TotalPricePaise:    row.TotalPricePaise,
		History:            make([]queries.HistoryEntry, 0, len(events)),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}

	if row.BillID != nil {
		view.Bill = &queries.BillSummary{
			ID:            *row.BillID,
			BillNumber:    *row.BillNumber,
			TotalPaise:    *row.BillTotalPaise,
			PaymentStatus: *row.BillPaymentStatus,
		}
	}
	if row.LgProvider != nil {
		view.Logistics = &queries.LogisticsView{
			Provider:   *row.LgProvider,
			Details:    derefStr(row.LgDetails),
			AssignedBy: derefUUID(row.LgAssignedBy),
			AssignedAt: derefTime(row.LgAssignedAt),
		}
	}
	for _, ev := range events {
		view.History = append(view.History, queries.HistoryEntry{
			PreviousStatus: ev.PreviousStatus,
			NewStatus:      ev.NewStatus,
			ActorID:        ev.ActorID,
			ActorParty:     ev.ActorParty,
			Note:           ev.Note,
			CreatedAt:      ev.CreatedAt,
		})
	}
	return view
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
