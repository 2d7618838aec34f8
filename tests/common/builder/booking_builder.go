//go:build unit || e2e

package builder

import (
	"time"

	"rently-backend/internal/domain/booking"
	reqdto "rently-backend/internal/handler/dto/request"
	"rently-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

// BookingBuilder assembles bookings for tests. Defaults describe a valid
// four-day rental starting a week from now at ₹100/day.
type BookingBuilder struct {
	id                 uuid.UUID
	itemID             uuid.UUID
	ownerID            uuid.UUID
	renterID           uuid.UUID
	startDate          time.Time
	endDate            time.Time
	status             booking.Status
	renterNote         string
	ownerNote          string
	thirdPartyRequired bool
	itemReturned       bool
	pricePerDayPaise   int64
	logistics          *booking.LogisticsAssignment
	createdAt          time.Time
}

func NewBookingBuilder() *BookingBuilder {
	start := booking.TruncateToDate(time.Now().AddDate(0, 0, 7))
	return &BookingBuilder{
		id:               uuid.New(),
		itemID:           uuid.New(),
		ownerID:          uuid.New(),
		renterID:         uuid.New(),
		startDate:        start,
		endDate:          start.AddDate(0, 0, 4),
		status:           booking.StatusPending,
		pricePerDayPaise: 10000,
		createdAt:        time.Now().UTC(),
	}
}

func (b *BookingBuilder) WithID(id uuid.UUID) *BookingBuilder {
	b.id = id
	return b
}

func (b *BookingBuilder) WithItemID(id uuid.UUID) *BookingBuilder {
	b.itemID = id
	return b
}

func (b *BookingBuilder) WithOwnerID(id uuid.UUID) *BookingBuilder {
	b.ownerID = id
	return b
}

func (b *BookingBuilder) WithRenterID(id uuid.UUID) *BookingBuilder {
	b.renterID = id
	return b
}

func (b *BookingBuilder) WithPeriod(start, end time.Time) *BookingBuilder {
	b.startDate = booking.TruncateToDate(start)
	b.endDate = booking.TruncateToDate(end)
	return b
}

func (b *BookingBuilder) WithStatus(status booking.Status) *BookingBuilder {
	b.status = status
	return b
}

func (b *BookingBuilder) WithRenterNote(note string) *BookingBuilder {
	b.renterNote = note
	return b
}

func (b *BookingBuilder) WithOwnerNote(note string) *BookingBuilder {
	b.ownerNote = note
	return b
}

func (b *BookingBuilder) WithThirdPartyRequired(required bool) *BookingBuilder {
	b.thirdPartyRequired = required
	return b
}

func (b *BookingBuilder) WithItemReturned(returned bool) *BookingBuilder {
	b.itemReturned = returned
	return b
}

func (b *BookingBuilder) WithPricePerDayPaise(paise int64) *BookingBuilder {
	b.pricePerDayPaise = paise
	return b
}

func (b *BookingBuilder) WithLogistics(l *booking.LogisticsAssignment) *BookingBuilder {
	b.logistics = l
	return b
}

func (b *BookingBuilder) ID() uuid.UUID       { return b.id }
func (b *BookingBuilder) ItemID() uuid.UUID   { return b.itemID }
func (b *BookingBuilder) OwnerID() uuid.UUID  { return b.ownerID }
func (b *BookingBuilder) RenterID() uuid.UUID { return b.renterID }

func (b *BookingBuilder) Period() booking.DateRange {
	period, err := booking.NewDateRange(b.startDate, b.endDate)
	if err != nil {
		panic(err)
	}
	return period
}

func (b *BookingBuilder) BuildDomain() *booking.Booking {
	period := b.Period()
	pricePerDay := booking.NewMoney(b.pricePerDayPaise)
	return booking.ReconstructBooking(
		b.id, b.itemID, b.ownerID, b.renterID,
		period,
		b.status,
		booking.NewNote(b.renterNote), booking.NewNote(b.ownerNote),
		b.thirdPartyRequired, b.itemReturned,
		pricePerDay, pricePerDay.MulDays(period.Days()),
		b.logistics,
		b.createdAt, b.createdAt,
	)
}

func (b *BookingBuilder) BuildCreateRequestDTO() *reqdto.CreateBookingRequest {
	return &reqdto.CreateBookingRequest{
		ItemID:              b.itemID,
		StartDate:           b.startDate.Format(time.DateOnly),
		EndDate:             b.endDate.Format(time.DateOnly),
		ThirdPartyLogistics: b.thirdPartyRequired,
		Note:                b.renterNote,
	}
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	period := b.Period()
	return &queries.BookingView{
		ID:                 b.id,
		ItemID:             b.itemID,
		OwnerID:            b.ownerID,
		RenterID:           b.renterID,
		StartDate:          period.Start(),
		EndDate:            period.End(),
		Status:             b.status.String(),
		RenterNote:         b.renterNote,
		OwnerNote:          b.ownerNote,
		ThirdPartyRequired: b.thirdPartyRequired,
		ItemReturned:       b.itemReturned,
		PricePerDayPaise:   b.pricePerDayPaise,
		TotalPricePaise:    b.pricePerDayPaise * int64(period.Days()),
		History:            []queries.HistoryEntry{},
		CreatedAt:          b.createdAt,
		UpdatedAt:          b.createdAt,
	}
}
