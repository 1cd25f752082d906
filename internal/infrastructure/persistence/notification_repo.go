package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/domain/entity"
	"mm_scanner/pkg/errcodes"
)

// NotificationRepository NotificationRecord в таблице notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) LastNotifiedAt(ctx context.Context, key entity.NotificationKey) (time.Time, bool, error) {
	var last time.Time

	err := r.db.GetContext(ctx, &last, `SELECT notified_at FROM notifications WHERE key = $1`, key.String())
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}

	if err != nil {
		return time.Time{}, false, domain.WrapError(err, errcodes.InternalServerError, "failed to get notification")
	}

	return last, true, nil
}

func (r *NotificationRepository) RecordNotified(ctx context.Context, key entity.NotificationKey, when time.Time) error {
	query := `
		INSERT INTO notifications (key, notified_at) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET notified_at = EXCLUDED.notified_at`

	if _, err := r.db.ExecContext(ctx, query, key.String(), when); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to record notification")
	}

	return nil
}

// Claim условный upsert: строка обновляется, только если прошлое уведомление
// старше окна. RETURNING пуст, когда окно ещё не истекло.
func (r *NotificationRepository) Claim(
	ctx context.Context,
	key entity.NotificationKey,
	now time.Time,
	window time.Duration,
) (bool, error) {
	query := `
		INSERT INTO notifications (key, notified_at) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET notified_at = EXCLUDED.notified_at
		WHERE notifications.notified_at < $3
		RETURNING key`

	var claimed string

	err := r.db.GetContext(ctx, &claimed, query, key.String(), now, now.Add(-window))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to claim notification")
	}

	return true, nil
}

// PurgeExpired удаляет записи, окно которых давно истекло.
func (r *NotificationRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE notified_at < $1`, before)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to purge notifications")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to purge notifications")
	}

	return n, nil
}
