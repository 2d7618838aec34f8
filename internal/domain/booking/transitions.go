package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InvalidTransitionError reports a guard or state check that rejected a
// transition. It always names the current status, the requested action and
// the reason, so callers never see a silent no-op.
type InvalidTransitionError struct {
	Current Status
	Action  Action
	Reason  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s while %s: %s", e.Action, e.Current, e.Reason)
}

// TransitionInput carries the facts a guard needs that live outside the
// aggregate. The usecase layer gathers them; guards only inspect them.
type TransitionInput struct {
	// Bill facts, relevant to renter_confirm and complete.
	BillExists bool
	BillPaid   bool
	BillCOD    bool

	// Extend facts.
	ExtendDays    int
	RangeConflict bool

	// Logistics facts.
	Provider string
	Details  string

	Note string
}

type rule struct {
	action Action
	from   []Status
	party  Party
	to     Status
	// statusChanges is false for transitions that append history without
	// moving the status (assign_logistics, return).
	statusChanges bool
	guard         func(b *Booking, in TransitionInput) string
}

// transitionTable is the single source of truth for the lifecycle. The
// reference UI duplicated these rules across components; here every caller
// goes through the same rows.
var transitionTable = []rule{
	{
		action:        ActionOwnerAccept,
		from:          []Status{StatusPending},
		party:         PartyOwner,
		to:            StatusAcceptedByOwner,
		statusChanges: true,
	},
	{
		action:        ActionRenterConfirm,
		from:          []Status{StatusAcceptedByOwner},
		party:         PartyRenter,
		to:            StatusConfirmed,
		statusChanges: true,
		guard: func(_ *Booking, in TransitionInput) string {
			if !in.BillExists {
				return "bill does not exist"
			}
			return ""
		},
	},
	{
		action: ActionExtend,
		from:   []Status{StatusConfirmed},
		party:  PartyRenter,
		to:     StatusConfirmed,
		guard: func(_ *Booking, in TransitionInput) string {
			if in.ExtendDays <= 0 {
				return "extension must be at least one day"
			}
			if in.RangeConflict {
				return "extended range conflicts with another booking"
			}
			return ""
		},
	},
	{
		action: ActionAssignLogistics,
		from:   []Status{StatusConfirmed},
		party:  PartyOwner,
		to:     StatusConfirmed,
		guard: func(b *Booking, in TransitionInput) string {
			if !b.thirdPartyRequired {
				return "third-party logistics not required for this booking"
			}
			if in.Provider == "" {
				return "provider is required"
			}
			return ""
		},
	},
	{
		action: ActionReturn,
		from:   []Status{StatusConfirmed},
		party:  PartyRenter,
		to:     StatusConfirmed,
		guard: func(b *Booking, _ TransitionInput) string {
			if b.itemReturned {
				return "item already returned"
			}
			return ""
		},
	},
	{
		action:        ActionComplete,
		from:          []Status{StatusAcceptedByOwner, StatusConfirmed},
		party:         PartyOwner,
		to:            StatusCompleted,
		statusChanges: true,
		guard: func(_ *Booking, in TransitionInput) string {
			if !in.BillExists {
				return "bill does not exist"
			}
			// COD bookings settle at handoff, so a pending bill does not
			// block completion when the chosen method is cash_on_delivery.
			if !in.BillPaid && !in.BillCOD {
				return "payment is still pending"
			}
			return ""
		},
	},
	{
		action:        ActionCancel,
		from:          []Status{StatusPending, StatusAcceptedByOwner, StatusConfirmed},
		party:         partyAny,
		to:            StatusCancelled,
		statusChanges: true,
	},
}

func ruleFor(action Action) (rule, bool) {
	for _, r := range transitionTable {
		if r.action == action {
			return r, true
		}
	}
	return rule{}, false
}

// CanTransition reports whether the edge (from, action) exists in the table,
// ignoring guards and actor checks.
func CanTransition(from Status, action Action) bool {
	r, ok := ruleFor(action)
	if !ok {
		return false
	}
	for _, s := range r.from {
		if s == from {
			return true
		}
	}
	return false
}

// Apply validates the requested transition against the table and mutates the
// aggregate. It returns the single history event the transition produces.
// The caller persists state and event atomically.
func (b *Booking) Apply(action Action, actorID uuid.UUID, in TransitionInput, now time.Time) (*Event, error) {
	r, ok := ruleFor(action)
	if !ok {
		return nil, &InvalidTransitionError{Current: b.status, Action: action, Reason: "unknown action"}
	}

	party, err := b.PartyOf(actorID)
	if err != nil {
		return nil, err
	}
	if r.party != partyAny && r.party != party {
		return nil, ErrWrongParty
	}

	if !CanTransition(b.status, action) {
		return nil, &InvalidTransitionError{
			Current: b.status,
			Action:  action,
			Reason:  fmt.Sprintf("status must be one of %v", r.from),
		}
	}

	if r.guard != nil {
		if reason := r.guard(b, in); reason != "" {
			return nil, &InvalidTransitionError{Current: b.status, Action: action, Reason: reason}
		}
	}

	previous := b.status
	b.mutate(r, in, actorID, now)

	ev := newEvent(b.id, previous, b.status, actorID, party, in.Note, now)
	return ev, nil
}

func (b *Booking) mutate(r rule, in TransitionInput, actorID uuid.UUID, now time.Time) {
	if r.statusChanges {
		b.status = r.to
	}
	b.updatedAt = now

	switch r.action {
	case ActionOwnerAccept:
		if in.Note != "" {
			b.ownerNote = NewNote(in.Note)
		}
	case ActionExtend:
		extended, _ := b.period.ExtendedBy(in.ExtendDays)
		b.period = extended
		b.totalPrice = b.totalPrice.Add(b.pricePerDay.MulDays(in.ExtendDays))
	case ActionAssignLogistics:
		b.logistics = NewLogisticsAssignment(b.id, in.Provider, in.Details, actorID, now)
	case ActionReturn:
		b.itemReturned = true
	}
}
