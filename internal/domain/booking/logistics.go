package booking

import (
	"time"

	"github.com/google/uuid"
)

// LogisticsAssignment attaches a third-party carrier to a confirmed booking.
// Re-assignment overwrites the previous provider; no history is kept.
type LogisticsAssignment struct {
	bookingID  uuid.UUID
	provider   string
	details    string
	assignedBy uuid.UUID
	assignedAt time.Time
}

func NewLogisticsAssignment(bookingID uuid.UUID, provider, details string, assignedBy uuid.UUID, at time.Time) *LogisticsAssignment {
	return &LogisticsAssignment{
		bookingID:  bookingID,
		provider:   provider,
		details:    details,
		assignedBy: assignedBy,
		assignedAt: at,
	}
}

func (l *LogisticsAssignment) BookingID() uuid.UUID  { return l.bookingID }
func (l *LogisticsAssignment) Provider() string      { return l.provider }
func (l *LogisticsAssignment) Details() string       { return l.details }
func (l *LogisticsAssignment) AssignedBy() uuid.UUID { return l.assignedBy }
func (l *LogisticsAssignment) AssignedAt() time.Time { return l.assignedAt }
