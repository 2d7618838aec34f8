package response

import (
	"time"

	"rently-backend/internal/usecase/commands"
	"rently-backend/internal/usecase/queries"

	"github.com/google/uuid"
)

type BillResponse struct {
	ID              uuid.UUID             `json:"id"`
	BookingID       uuid.UUID             `json:"booking_id"`
	BillNumber      string                `json:"bill_number"`
	SubtotalPaise   int64                 `json:"subtotal_paise"`
	TaxPaise        int64                 `json:"tax_paise"`
	ServiceFeePaise int64                 `json:"service_fee_paise"`
	DiscountPaise   int64                 `json:"discount_paise"`
	TotalPaise      int64                 `json:"total_paise"`
	PaymentStatus   string                `json:"payment_status"`
	PaymentMethod   *string               `json:"payment_method,omitempty"`
	PaidAt          *time.Time            `json:"paid_at,omitempty"`
	Transactions    []TransactionResponse `json:"transactions"`
	CreatedAt       time.Time             `json:"created_at"`
}

type TransactionResponse struct {
	ID               uuid.UUID  `json:"id"`
	GatewayOrderID   string     `json:"gateway_order_id"`
	GatewayPaymentID *string    `json:"gateway_payment_id,omitempty"`
	AmountPaise      int64      `json:"amount_paise"`
	PaymentMethod    string     `json:"payment_method"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}

func FromBillView(v *queries.BillView) *BillResponse {
	resp := &BillResponse{
		ID:              v.ID,
		BookingID:       v.BookingID,
		BillNumber:      v.BillNumber,
		SubtotalPaise:   v.SubtotalPaise,
		TaxPaise:        v.TaxPaise,
		ServiceFeePaise: v.ServiceFeePaise,
		DiscountPaise:   v.DiscountPaise,
		TotalPaise:      v.TotalPaise,
		PaymentStatus:   v.PaymentStatus,
		PaymentMethod:   v.PaymentMethod,
		PaidAt:          v.PaidAt,
		Transactions:    make([]TransactionResponse, 0, len(v.Transactions)),
		CreatedAt:       v.CreatedAt,
	}
	for _, t := range v.Transactions {
		resp.Transactions = append(resp.Transactions, TransactionResponse{
			ID:               t.ID,
			GatewayOrderID:   t.GatewayOrderID,
			GatewayPaymentID: t.GatewayPaymentID,
			AmountPaise:      t.AmountPaise,
			PaymentMethod:    t.PaymentMethod,
			Status:           t.Status,
			CreatedAt:        t.CreatedAt,
			ResolvedAt:       t.ResolvedAt,
		})
	}
	return resp
}

type InitiatePaymentResponse struct {
	Method   string            `json:"method"`
	Checkout *CheckoutResponse `json:"checkout,omitempty"`
}

type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	KeyID       string `json:"key_id"`
	AmountPaise int64  `json:"amount_paise"`
	Currency    string `json:"currency"`
}

func FromInitiatePaymentResult(r *commands.InitiatePaymentResult) *InitiatePaymentResponse {
	resp := &InitiatePaymentResponse{Method: string(r.Method)}
	if r.Checkout != nil {
		resp.Checkout = &CheckoutResponse{
			OrderID:     r.Checkout.OrderID,
			KeyID:       r.Checkout.KeyID,
			AmountPaise: r.Checkout.AmountPaise,
			Currency:    r.Checkout.Currency,
		}
	}
	return resp
}
