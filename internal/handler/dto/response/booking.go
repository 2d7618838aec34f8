package response

import (
	"time"

	"rently-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID                 uuid.UUID          `json:"id"`
	ItemID             uuid.UUID          `json:"item_id"`
	OwnerID            uuid.UUID          `json:"owner_id"`
	RenterID           uuid.UUID          `json:"renter_id"`
	StartDate          string             `json:"start_date"`
	EndDate            string             `json:"end_date"`
	Status             string             `json:"status"`
	RenterNote         string             `json:"renter_note,omitempty"`
	OwnerNote          string             `json:"owner_note,omitempty"`
	ThirdPartyRequired bool               `json:"third_party_required"`
	ItemReturned       bool               `json:"item_returned"`
	PricePerDayPaise   int64              `json:"price_per_day_paise"`
	TotalPricePaise    int64              `json:"total_price_paise"`
	Bill               *BillSummary       `json:"bill,omitempty"`
	Logistics          *LogisticsResponse `json:"logistics,omitempty"`
	History            []HistoryEntry     `json:"history"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type BillSummary struct {
	ID            uuid.UUID `json:"id"`
	BillNumber    string    `json:"bill_number"`
	TotalPaise    int64     `json:"total_paise"`
	PaymentStatus string    `json:"payment_status"`
}

type LogisticsResponse struct {
	Provider   string    `json:"provider"`
	Details    string    `json:"details,omitempty"`
	AssignedBy uuid.UUID `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

type HistoryEntry struct {
	PreviousStatus string    `json:"previous_status,omitempty"`
	NewStatus      string    `json:"new_status"`
	ActorID        uuid.UUID `json:"actor_id"`
	ActorParty     string    `json:"actor_party"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type BookingListItem struct {
	ID              uuid.UUID `json:"id"`
	ItemID          uuid.UUID `json:"item_id"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	Status          string    `json:"status"`
	TotalPricePaise int64     `json:"total_price_paise"`
	CreatedAt       time.Time `json:"created_at"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	resp := &BookingResponse{
		ID:                 v.ID,
		ItemID:             v.ItemID,
		OwnerID:            v.OwnerID,
		RenterID:           v.RenterID,
		StartDate:          v.StartDate.Format(time.DateOnly),
		EndDate:            v.EndDate.Format(time.DateOnly),
		Status:             v.Status,
		RenterNote:         v.RenterNote,
		OwnerNote:          v.OwnerNote,
		ThirdPartyRequired: v.ThirdPartyRequired,
		ItemReturned:       v.ItemReturned,
		PricePerDayPaise:   v.PricePerDayPaise,
		TotalPricePaise:    v.TotalPricePaise,
		History:            make([]HistoryEntry, 0, len(v.History)),
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}

	if v.Bill != nil {
		resp.Bill = &BillSummary{
			ID:            v.Bill.ID,
			BillNumber:    v.Bill.BillNumber,
			TotalPaise:    v.Bill.TotalPaise,
			PaymentStatus: v.Bill.PaymentStatus,
		}
	}
	if v.Logistics != nil {
		resp.Logistics = &LogisticsResponse{
			Provider:   v.Logistics.Provider,
			Details:    v.Logistics.Details,
			AssignedBy: v.Logistics.AssignedBy,
			AssignedAt: v.Logistics.AssignedAt,
		}
	}
	for _, h := range v.History {
		resp.History = append(resp.History, HistoryEntry{
			PreviousStatus: h.PreviousStatus,
			NewStatus:      h.NewStatus,
			ActorID:        h.ActorID,
			ActorParty:     h.ActorParty,
			Note:           h.Note,
			CreatedAt:      h.CreatedAt,
		})
	}
	return resp
}

func FromBookingHistory(v *queries.BookingView) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(v.History))
	for _, h := range v.History {
		entries = append(entries, HistoryEntry{
			PreviousStatus: h.PreviousStatus,
			NewStatus:      h.NewStatus,
			ActorID:        h.ActorID,
			ActorParty:     h.ActorParty,
			Note:           h.Note,
			CreatedAt:      h.CreatedAt,
		})
	}
	return entries
}

func FromBookingListItem(v *queries.BookingListItem) *BookingListItem {
	return &BookingListItem{
		ID:              v.ID,
		ItemID:          v.ItemID,
		StartDate:       v.StartDate.Format(time.DateOnly),
		EndDate:         v.EndDate.Format(time.DateOnly),
		Status:          v.Status,
		TotalPricePaise: v.TotalPricePaise,
		CreatedAt:       v.CreatedAt,
	}
}
