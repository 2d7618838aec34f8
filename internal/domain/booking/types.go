package booking

// Status is the lifecycle state of a booking. Transitions between statuses
// happen only through the transition table in transitions.go.
type Status string

const (
	StatusPending         Status = "pending"
	StatusAcceptedByOwner Status = "accepted_by_owner"
	StatusConfirmed       Status = "confirmed"
	StatusCancelled       Status = "cancelled"
	StatusCompleted       Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAcceptedByOwner, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Action names a transition request against a booking.
type Action string

const (
	ActionRequest         Action = "request"
	ActionOwnerAccept     Action = "owner_accept"
	ActionRenterConfirm   Action = "renter_confirm"
	ActionExtend          Action = "extend"
	ActionAssignLogistics Action = "assign_logistics"
	ActionReturn          Action = "return"
	ActionComplete        Action = "complete"
	ActionCancel          Action = "cancel"
)

func (a Action) String() string {
	return string(a)
}

// Party is the actor's relationship to a booking, not a global role.
type Party string

const (
	PartyOwner  Party = "owner"
	PartyRenter Party = "renter"
	// partyAny matches either participant (cancel).
	partyAny Party = "any"
)

func (p Party) String() string {
	return string(p)
}
