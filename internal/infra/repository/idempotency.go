package repository

import (
	"context"
	"time"

	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"
	"rently-backend/internal/usecase/shared"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
)

type idempotencyRow struct {
	Key             uuid.UUID  `db:"key"`
	ActorID         uuid.UUID  `db:"actor_id"`
	Endpoint        string     `db:"endpoint"`
	RequestHash     string     `db:"request_hash"`
	Status          string     `db:"status"`
	ResultBookingID *uuid.UUID `db:"result_booking_id"`
	ExpiresAt       time.Time  `db:"expires_at"`
}

type IdempotencyRepository struct {
	db db.DBTX
}

func NewIdempotencyRepository(dbtx db.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: dbtx}
}

// TryInsert claims the key. A duplicate-key error means another request with
// the same key is in flight or already completed; callers follow up with Get.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key, actorID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	const query = `
		INSERT INTO idempotency_keys (key, actor_id, endpoint, request_hash, status, expires_at)
		VALUES ($1, $2, $3, $4, 'processing', $5)`

	if _, err := r.db.Exec(ctx, query, key, actorID, endpoint, requestHash, expiresAt); err != nil {
		return infra.WrapRepoErr("failed to insert idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key, actorID uuid.UUID) (*shared.IdempotencyRecord, error) {
	const query = `
		SELECT key, actor_id, endpoint, request_hash, status, result_booking_id, expires_at
		FROM idempotency_keys
		WHERE key = $1 AND actor_id = $2`

	var row idempotencyRow
	if err := pgxscan.Get(ctx, r.db, &row, query, key, actorID); err != nil {
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &shared.IdempotencyRecord{
		Key:             row.Key,
		ActorID:         row.ActorID,
		Endpoint:        row.Endpoint,
		RequestHash:     row.RequestHash,
		Status:          row.Status,
		ResultBookingID: row.ResultBookingID,
		ExpiresAt:       row.ExpiresAt,
	}, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, key, actorID uuid.UUID, responseBodyHash string, resultBookingID uuid.UUID) error {
	const query = `
		UPDATE idempotency_keys
		SET status = 'completed', response_body_hash = $1, result_booking_id = $2, updated_at = now()
		WHERE key = $3 AND actor_id = $4`

	tag, err := r.db.Exec(ctx, query, responseBodyHash, resultBookingID, key, actorID)
	if err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErrKind(infra.KindNotFound, "idempotency key not found", nil)
	}
	return nil
}
