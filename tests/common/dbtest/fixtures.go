//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"time"
)

// ResetDB truncates every mutable table so each test starts from a clean
// slate. Tables are listed explicitly to keep the reset cheap; CASCADE
// covers the foreign keys between them.
func ResetDB(db DBLike) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"notification_jobs",
		"idempotency_keys",
		"logistics_assignments",
		"transactions",
		"bills",
		"booking_events",
		"bookings",
	}

	for _, table := range tables {
		if _, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
