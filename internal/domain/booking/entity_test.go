//go:build unit

package booking_test

import (
	"testing"
	"time"

	"rently-backend/internal/domain/booking"
	"rently-backend/internal/pkg/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedServices() (*booking.Services, time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &booking.Services{Clock: clock.NewMockClock(now)}, now
}

func validSpec() booking.ItemSpec {
	return booking.ItemSpec{
		ID:          uuid.New(),
		OwnerID:     uuid.New(),
		PricePerDay: booking.NewMoney(10000),
	}
}

func TestNewBooking(t *testing.T) {
	services, _ := fixedServices()
	period, err := booking.NewDateRange(date(2026, 3, 10), date(2026, 3, 14))
	require.NoError(t, err)

	t.Run("creates a pending booking with captured price", func(t *testing.T) {
		item := validSpec()
		renterID := uuid.New()

		b, ev, err := booking.NewBooking(services, item, renterID, period, true, booking.NewNote("please pack well"))
		require.NoError(t, err)
		require.NotNil(t, b)
		require.NotNil(t, ev)

		assert.NotEqual(t, uuid.Nil, b.ID())
		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, item.OwnerID, b.OwnerID())
		assert.Equal(t, renterID, b.RenterID())
		assert.True(t, b.ThirdPartyRequired())
		assert.False(t, b.ItemReturned())
		assert.Equal(t, int64(10000), b.PricePerDay().Paise())
		assert.Equal(t, int64(40000), b.TotalPrice().Paise())

		assert.Equal(t, b.ID(), ev.BookingID())
		assert.Equal(t, booking.Status(""), ev.PreviousStatus())
		assert.Equal(t, booking.StatusPending, ev.NewStatus())
		assert.Equal(t, renterID, ev.ActorID())
		assert.Equal(t, booking.PartyRenter, ev.ActorParty())
		assert.Equal(t, "please pack well", ev.Note())
	})

	t.Run("renter cannot book own item", func(t *testing.T) {
		item := validSpec()
		_, _, err := booking.NewBooking(services, item, item.OwnerID, period, false, booking.Note{})
		assert.ErrorIs(t, err, booking.ErrRenterIsOwner)
	})

	t.Run("start date cannot be in the past", func(t *testing.T) {
		past, err := booking.NewDateRange(date(2026, 2, 20), date(2026, 2, 24))
		require.NoError(t, err)

		_, _, err = booking.NewBooking(services, validSpec(), uuid.New(), past, false, booking.Note{})
		assert.ErrorIs(t, err, booking.ErrStartInPast)
	})

	t.Run("start on booking day is allowed", func(t *testing.T) {
		today, err := booking.NewDateRange(date(2026, 3, 1), date(2026, 3, 3))
		require.NoError(t, err)

		b, _, err := booking.NewBooking(services, validSpec(), uuid.New(), today, false, booking.Note{})
		require.NoError(t, err)
		assert.Equal(t, int64(20000), b.TotalPrice().Paise())
	})
}

func TestPartyOf(t *testing.T) {
	services, _ := fixedServices()
	period, _ := booking.NewDateRange(date(2026, 3, 10), date(2026, 3, 14))
	item := validSpec()
	renterID := uuid.New()

	b, _, err := booking.NewBooking(services, item, renterID, period, false, booking.Note{})
	require.NoError(t, err)

	owner, err := b.PartyOf(item.OwnerID)
	require.NoError(t, err)
	assert.Equal(t, booking.PartyOwner, owner)

	renter, err := b.PartyOf(renterID)
	require.NoError(t, err)
	assert.Equal(t, booking.PartyRenter, renter)

	_, err = b.PartyOf(uuid.New())
	assert.ErrorIs(t, err, booking.ErrNotParticipant)
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, booking.StatusPending.IsTerminal())
	assert.False(t, booking.StatusAcceptedByOwner.IsTerminal())
	assert.False(t, booking.StatusConfirmed.IsTerminal())
	assert.True(t, booking.StatusCancelled.IsTerminal())
	assert.True(t, booking.StatusCompleted.IsTerminal())
}
