package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"rently-backend/internal/pkg/config"
	"rently-backend/internal/pkg/errs"
	"rently-backend/internal/usecase/commands"
)

// RazorpayGateway creates orders against the Razorpay Orders API and
// verifies checkout signatures. The signature is HMAC-SHA256 over
// "<order_id>|<payment_id>" keyed with the API secret, hex encoded.
type RazorpayGateway struct {
	baseURL   string
	keyID     string
	keySecret string
	currency  string
	client    *http.Client
}

func NewRazorpayGateway(cfg config.GatewayConfig) *RazorpayGateway {
	return &RazorpayGateway{
		baseURL:   cfg.BaseURL,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		currency:  cfg.Currency,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*commands.CheckoutSession, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amountPaise,
		Currency: g.currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build order request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "gateway order request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New(fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}

	var order createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, errs.Wrap(err, "failed to decode order response")
	}
	if order.ID == "" {
		return nil, errs.New("gateway returned empty order id")
	}

	return &commands.CheckoutSession{
		OrderID:     order.ID,
		KeyID:       g.keyID,
		AmountPaise: amountPaise,
		Currency:    g.currency,
	}, nil
}

func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
