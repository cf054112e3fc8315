package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotificationNotFound is returned when no notification matches.
var ErrNotificationNotFound = errors.New("notification: not found")

// Repository defines the data access for notifications.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Notification, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]Notification, int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

const notificationColumns = `id, user_id, title, message, type, entity_type, entity_id, read, created_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Notification, error) {
	const insertSQL = `
		INSERT INTO notifications (user_id, title, message, type, entity_type, entity_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, '')::uuid)
		RETURNING ` + notificationColumns

	rec, err := scanNotification(r.pool.QueryRow(ctx, insertSQL,
		params.UserID, params.Title, params.Message, params.Type, params.EntityType, params.EntityID))
	if err != nil {
		return Notification{}, fmt.Errorf("notification: insert: %w", err)
	}
	return rec, nil
}

func (r *PGRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]Notification, int, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	// Limit < 0 means the caller wants the whole result set.
	if limit >= 0 {
		if limit == 0 {
			limit = 25
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("notification: list: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		rec, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("notification: scan: %w", err)
		}
		notifications = append(notifications, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("notification: iterate: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("notification: count: %w", err)
	}

	return notifications, total, nil
}

func (r *PGRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("notification: unread count: %w", err)
	}
	return count, nil
}

func (r *PGRepository) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("notification: mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PGRepository) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID); err != nil {
		return fmt.Errorf("notification: mark all read: %w", err)
	}
	return nil
}

func scanNotification(row pgx.Row) (Notification, error) {
	var rec Notification
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Title,
		&rec.Message,
		&rec.Type,
		&rec.EntityType,
		&rec.EntityID,
		&rec.Read,
		&rec.CreatedAt,
	)
	if err != nil {
		return Notification{}, err
	}
	return rec, nil
}
