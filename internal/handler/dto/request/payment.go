package request

import (
	"rently-backend/internal/usecase/commands"
)

type InitiatePaymentRequest struct {
	Method string `json:"method" binding:"required,oneof=gateway cash_on_delivery"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

func (r *VerifyPaymentRequest) ToCommand() commands.VerifyPaymentInput {
	return commands.VerifyPaymentInput{
		OrderID:   r.OrderID,
		PaymentID: r.PaymentID,
		Signature: r.Signature,
	}
}
