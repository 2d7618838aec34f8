package request

import (
	"time"

	"rently-backend/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ItemID              uuid.UUID `json:"item_id" binding:"required"`
	StartDate           string    `json:"start_date" binding:"required"`
	EndDate             string    `json:"end_date" binding:"required"`
	ThirdPartyLogistics bool      `json:"third_party_logistics"`
	Note                string    `json:"note" binding:"max=500"`
}

// ToCommand parses the date-only bounds. Times of day are not accepted;
// bookings live on calendar dates.
func (r *CreateBookingRequest) ToCommand() (commands.RequestBookingInput, error) {
	start, err := time.Parse(time.DateOnly, r.StartDate)
	if err != nil {
		return commands.RequestBookingInput{}, err
	}
	end, err := time.Parse(time.DateOnly, r.EndDate)
	if err != nil {
		return commands.RequestBookingInput{}, err
	}
	return commands.RequestBookingInput{
		ItemID:              r.ItemID,
		StartDate:           start,
		EndDate:             end,
		ThirdPartyLogistics: r.ThirdPartyLogistics,
		Note:                r.Note,
	}, nil
}

type AcceptBookingRequest struct {
	Note string `json:"note" binding:"max=500"`
}

type ExtendBookingRequest struct {
	Days int `json:"days" binding:"required,min=1"`
}

type AssignLogisticsRequest struct {
	Provider string `json:"provider" binding:"required,max=100"`
	Details  string `json:"details" binding:"max=500"`
}

type CancelBookingRequest struct {
	Note string `json:"note" binding:"max=500"`
}
