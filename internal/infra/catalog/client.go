package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rently-backend/internal/pkg/config"
	"rently-backend/internal/pkg/errs"
	"rently-backend/internal/usecase/commands"

	"github.com/google/uuid"
)

var ErrItemNotFound = errs.New("catalog item not found")

// Client talks to the catalog service over its internal HTTP API. The
// catalog owns items and their availability; bookings hold range locks
// there for the duration of a confirmed rental.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(cfg config.CatalogConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type itemResponse struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	PricePerDayPaise int64     `json:"price_per_day_paise"`
}

func (c *Client) GetItem(ctx context.Context, itemID uuid.UUID) (*commands.ItemSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/internal/items/%s", c.baseURL, itemID), nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build item request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "catalog item request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrItemNotFound
	default:
		return nil, errs.New(fmt.Sprintf("catalog returned status %d", resp.StatusCode))
	}

	var item itemResponse
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, errs.Wrap(err, "failed to decode item response")
	}

	return &commands.ItemSnapshot{
		ID:               item.ID,
		OwnerID:          item.OwnerID,
		PricePerDayPaise: item.PricePerDayPaise,
	}, nil
}

type lockRangeRequest struct {
	BookingID uuid.UUID `json:"booking_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

func (c *Client) LockRange(ctx context.Context, itemID, bookingID uuid.UUID, start, end time.Time) error {
	body, err := json.Marshal(lockRangeRequest{
		BookingID: bookingID,
		StartDate: start.Format(time.DateOnly),
		EndDate:   end.Format(time.DateOnly),
	})
	if err != nil {
		return errs.Wrap(err, "failed to encode lock request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/internal/items/%s/locks", c.baseURL, itemID), bytes.NewReader(body))
	if err != nil {
		return errs.Wrap(err, "failed to build lock request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errs.Wrap(err, "catalog lock request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errs.New(fmt.Sprintf("catalog lock returned status %d", resp.StatusCode))
	}
	return nil
}

func (c *Client) ReleaseRange(ctx context.Context, itemID, bookingID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/internal/items/%s/locks/%s", c.baseURL, itemID, bookingID), nil)
	if err != nil {
		return errs.Wrap(err, "failed to build release request")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errs.Wrap(err, "catalog release request failed")
	}
	defer resp.Body.Close()

	// Releasing an already-released lock is fine.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return errs.New(fmt.Sprintf("catalog release returned status %d", resp.StatusCode))
	}
	return nil
}
