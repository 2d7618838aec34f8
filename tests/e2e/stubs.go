//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/google/uuid"
)

// ServiceStubs hosts in-process stand-ins for the two upstream services the
// app talks to over HTTP: the catalog service (item lookup and range locks)
// and the payment gateway (order creation). Tests point the app config at
// these servers and steer their behavior through the setters.
type ServiceStubs struct {
	Catalog *httptest.Server
	Gateway *httptest.Server

	mu               sync.Mutex
	ownerID          uuid.UUID
	pricePerDayPaise int64
	missingItems     map[uuid.UUID]bool
	orderSeq         int
	lockCount        int
	releaseCount     int
}

func newServiceStubs() *ServiceStubs {
	s := &ServiceStubs{
		ownerID:          uuid.New(),
		pricePerDayPaise: 10000,
		missingItems:     map[uuid.UUID]bool{},
	}

	catalogMux := http.NewServeMux()
	catalogMux.HandleFunc("GET /internal/items/{id}", s.handleGetItem)
	catalogMux.HandleFunc("POST /internal/items/{id}/locks", s.handleLockRange)
	catalogMux.HandleFunc("DELETE /internal/items/{id}/locks/{bookingID}", s.handleReleaseRange)
	s.Catalog = httptest.NewServer(catalogMux)

	gatewayMux := http.NewServeMux()
	gatewayMux.HandleFunc("POST /v1/orders", s.handleCreateOrder)
	s.Gateway = httptest.NewServer(gatewayMux)

	return s
}

func (s *ServiceStubs) Close() {
	s.Catalog.Close()
	s.Gateway.Close()
}

// OwnerID is the owner the catalog reports for every known item. Tests
// mint their owner JWT from this ID.
func (s *ServiceStubs) OwnerID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerID
}

func (s *ServiceStubs) SetOwnerID(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerID = id
}

func (s *ServiceStubs) SetPricePerDayPaise(paise int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pricePerDayPaise = paise
}

// MarkItemMissing makes the catalog answer 404 for the given item.
func (s *ServiceStubs) MarkItemMissing(itemID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missingItems[itemID] = true
}

func (s *ServiceStubs) LockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockCount
}

func (s *ServiceStubs) ReleaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseCount
}

func (s *ServiceStubs) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missingItems = map[uuid.UUID]bool{}
	s.lockCount = 0
	s.releaseCount = 0
}

func (s *ServiceStubs) handleGetItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	missing := s.missingItems[itemID]
	ownerID := s.ownerID
	price := s.pricePerDayPaise
	s.mu.Unlock()

	if missing {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":                  itemID,
		"owner_id":            ownerID,
		"price_per_day_paise": price,
	})
}

func (s *ServiceStubs) handleLockRange(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.lockCount++
	s.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

func (s *ServiceStubs) handleReleaseRange(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.releaseCount++
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *ServiceStubs) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.orderSeq++
	orderID := s.orderSeq
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":       fmt.Sprintf("order_e2e_%03d", orderID),
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"status":   "created",
	})
}
