package repository

import (
	"context"
	"time"

	"rently-backend/internal/infra"
	"rently-backend/internal/infra/db"

	"github.com/google/uuid"
)

// NotificationRepository writes outbox rows. Rows land in the same
// transaction as the state change that produced them; a separate dispatcher
// drains the table.
type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(dbtx db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: dbtx}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	const query = `
		INSERT INTO notification_jobs (id, kind, topic, payload, run_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.Exec(ctx, query, uuid.New(), kind, topic, payload, runAt); err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}
