package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookingView struct {
	ID                 uuid.UUID      `json:"id"`
	ItemID             uuid.UUID      `json:"item_id"`
	OwnerID            uuid.UUID      `json:"owner_id"`
	RenterID           uuid.UUID      `json:"renter_id"`
	StartDate          time.Time      `json:"start_date"`
	EndDate            time.Time      `json:"end_date"`
	Status             string         `json:"status"`
	RenterNote         string         `json:"renter_note,omitempty"`
	OwnerNote          string         `json:"owner_note,omitempty"`
	ThirdPartyRequired bool           `json:"third_party_required"`
	ItemReturned       bool           `json:"item_returned"`
	PricePerDayPaise   int64          `json:"price_per_day_paise"`
	TotalPricePaise    int64          `json:"total_price_paise"`
	Bill               *BillSummary   `json:"bill,omitempty"`
	Logistics          *LogisticsView `json:"logistics,omitempty"`
	History            []HistoryEntry `json:"history"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type BookingListItem struct {
	ID              uuid.UUID `json:"id"`
	ItemID          uuid.UUID `json:"item_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Status          string    `json:"status"`
	TotalPricePaise int64     `json:"total_price_paise"`
	CreatedAt       time.Time `json:"created_at"`
}

type BillSummary struct {
	ID            uuid.UUID `json:"id"`
	BillNumber    string    `json:"bill_number"`
	TotalPaise    int64     `json:"total_paise"`
	PaymentStatus string    `json:"payment_status"`
}

type LogisticsView struct {
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

type BillView struct {
	ID              uuid.UUID         `json:"id"`
	BookingID       uuid.UUID         `json:"booking_id"`
	BillNumber      string            `json:"bill_number"`
	SubtotalPaise   int64             `json:"subtotal_paise"`
	TaxPaise        int64             `json:"tax_paise"`
	ServiceFeePaise int64             `json:"service_fee_paise"`
	DiscountPaise   int64             `json:"discount_paise"`
	TotalPaise      int64             `json:"total_paise"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentMethod   *string           `json:"payment_method,omitempty"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	Transactions    []TransactionView `json:"transactions"`
	CreatedAt       time.Time         `json:"created_at"`
}

type TransactionView struct {
	ID               uuid.UUID  `json:"id"`
	GatewayOrderID   string     `json:"gateway_order_id"`
	GatewayPaymentID *string    `json:"gateway_payment_id,omitempty"`
	AmountPaise      int64      `json:"amount_paise"`
	PaymentMethod    string     `json:"payment_method"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}
