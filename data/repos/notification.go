package repos

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kova98/footroll.api/data"
)

type NotificationRepo struct {
	db        *sqlx.DB
	retention time.Duration
}

func NewNotificationRepo(db *sqlx.DB, retention time.Duration) *NotificationRepo {
	return &NotificationRepo{db: db, retention: retention}
}

// Insert records the event key and reports whether it was new. A row older than
// the retention window counts as absent and is replaced.
func (r *NotificationRepo) Insert(ctx context.Context, n data.Notification) (bool, error) {
	query, args, err := insertNotification(n, n.CreatedAt.Add(-r.retention)).ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert notification: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert notification rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *NotificationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := deleteNotificationsBefore(now.Add(-r.retention)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete notifications: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired notifications: %w", err)
	}

	return res.RowsAffected()
}

func (r *NotificationRepo) StartCleanup(ctx context.Context, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := r.DeleteExpired(ctx, time.Now())
			if err != nil {
				logger.Error("failed to clean up notification ledger", "error", err)
				continue
			}
			logger.Debug("cleaned up notification ledger", "deleted", deleted)
		}
	}
}
