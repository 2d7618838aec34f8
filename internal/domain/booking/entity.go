package booking

import (
	"errors"
	"time"

	"rently-backend/internal/pkg/clock"

	"github.com/google/uuid"
)

var (
	ErrRenterIsOwner  = errors.New("renter cannot book their own item")
	ErrStartInPast    = errors.New("start date cannot be in the past")
	ErrNegativePrice  = errors.New("price cannot be negative")
	ErrNotParticipant = errors.New("actor is not a participant of this booking")
	ErrWrongParty     = errors.New("action not permitted for this party")
)

// ItemSpec is the catalog snapshot a booking is created from. Price is
// captured here and never re-read from the catalog afterwards.
type ItemSpec struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	PricePerDay Money
}

type Services struct {
	Clock clock.Clock
}

// Booking is the aggregate root of the rental lifecycle. All mutation goes
// through Apply, which enforces the transition table.
type Booking struct {
	id                 uuid.UUID
	itemID             uuid.UUID
	ownerID            uuid.UUID
	renterID           uuid.UUID
	period             DateRange
	status             Status
	renterNote         Note
	ownerNote          Note
	thirdPartyRequired bool
	itemReturned       bool
	pricePerDay        Money
	totalPrice         Money
	logistics          *LogisticsAssignment
	createdAt          time.Time
	updatedAt          time.Time
}

func NewBooking(
	services *Services,
	item ItemSpec,
	renterID uuid.UUID,
	period DateRange,
	thirdPartyRequired bool,
	renterNote Note,
) (*Booking, *Event, error) {
	if renterID == item.OwnerID {
		return nil, nil, ErrRenterIsOwner
	}
	if item.PricePerDay.IsNegative() {
		return nil, nil, ErrNegativePrice
	}

	now := services.Clock.Now()
	if period.StartsBefore(now) {
		return nil, nil, ErrStartInPast
	}

	b := &Booking{
		id:                 uuid.New(),
		itemID:             item.ID,
		ownerID:            item.OwnerID,
		renterID:           renterID,
		period:             period,
		status:             StatusPending,
		renterNote:         renterNote,
		thirdPartyRequired: thirdPartyRequired,
		pricePerDay:        item.PricePerDay,
		totalPrice:         item.PricePerDay.MulDays(period.Days()),
	}

	ev := newEvent(b.id, "", StatusPending, renterID, PartyRenter, renterNote.value, now)
	return b, ev, nil
}

func ReconstructBooking(
	id, itemID, ownerID, renterID uuid.UUID,
	period DateRange,
	status Status,
	renterNote, ownerNote Note,
	thirdPartyRequired, itemReturned bool,
	pricePerDay, totalPrice Money,
	logistics *LogisticsAssignment,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		itemID:             itemID,
		ownerID:            ownerID,
		renterID:           renterID,
		period:             period,
		status:             status,
		renterNote:         renterNote,
		ownerNote:          ownerNote,
		thirdPartyRequired: thirdPartyRequired,
		itemReturned:       itemReturned,
		pricePerDay:        pricePerDay,
		totalPrice:         totalPrice,
		logistics:          logistics,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// PartyOf resolves the actor's relationship to this booking.
func (b *Booking) PartyOf(actorID uuid.UUID) (Party, error) {
	switch actorID {
	case b.ownerID:
		return PartyOwner, nil
	case b.renterID:
		return PartyRenter, nil
	default:
		return "", ErrNotParticipant
	}
}

func (b *Booking) IsTerminal() bool {
	return b.status.IsTerminal()
}

func (b *Booking) ID() uuid.UUID                   { return b.id }
func (b *Booking) ItemID() uuid.UUID               { return b.itemID }
func (b *Booking) OwnerID() uuid.UUID              { return b.ownerID }
func (b *Booking) RenterID() uuid.UUID             { return b.renterID }
func (b *Booking) Period() DateRange               { return b.period }
func (b *Booking) Status() Status                  { return b.status }
func (b *Booking) RenterNote() Note                { return b.renterNote }
func (b *Booking) OwnerNote() Note                 { return b.ownerNote }
func (b *Booking) ThirdPartyRequired() bool        { return b.thirdPartyRequired }
func (b *Booking) ItemReturned() bool              { return b.itemReturned }
func (b *Booking) PricePerDay() Money              { return b.pricePerDay }
func (b *Booking) TotalPrice() Money               { return b.totalPrice }
func (b *Booking) Logistics() *LogisticsAssignment { return b.logistics }
func (b *Booking) CreatedAt() time.Time            { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time            { return b.updatedAt }
