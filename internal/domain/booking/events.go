package booking

import (
	"time"

	"github.com/google/uuid"
)

// Event is one row of a booking's append-only history. Events are immutable
// once appended; there is no update path anywhere in the repository layer.
type Event struct {
	id             uuid.UUID
	bookingID      uuid.UUID
	previousStatus Status
	newStatus      Status
	actorID        uuid.UUID
	actorParty     Party
	note           string
	createdAt      time.Time
}

func newEvent(bookingID uuid.UUID, previous, next Status, actorID uuid.UUID, party Party, note string, at time.Time) *Event {
	return &Event{
		id:             uuid.New(),
		bookingID:      bookingID,
		previousStatus: previous,
		newStatus:      next,
		actorID:        actorID,
		actorParty:     party,
		note:           note,
		createdAt:      at,
	}
}

func ReconstructEvent(id, bookingID uuid.UUID, previous, next Status, actorID uuid.UUID, party Party, note string, at time.Time) *Event {
	return &Event{
		id:             id,
		bookingID:      bookingID,
		previousStatus: previous,
		newStatus:      next,
		actorID:        actorID,
		actorParty:     party,
		note:           note,
		createdAt:      at,
	}
}

func (e *Event) ID() uuid.UUID          { return e.id }
func (e *Event) BookingID() uuid.UUID   { return e.bookingID }
func (e *Event) PreviousStatus() Status { return e.previousStatus }
func (e *Event) NewStatus() Status      { return e.newStatus }
func (e *Event) ActorID() uuid.UUID     { return e.actorID }
func (e *Event) ActorParty() Party      { return e.actorParty }
func (e *Event) Note() string           { return e.note }
func (e *Event) CreatedAt() time.Time   { return e.createdAt }
