package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/brightclass/conference-hub/internal/domain/notification"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

const notificationColumns = `
	id, recipient_id, channel, type, priority, subject, message,
	student_id, meeting_id, status, retry_count, last_error,
	scheduled_for, sent_at, created_at, updated_at
`

// NotificationRepository implements notification.Repository for PostgreSQL.
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

// Create stores a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient_id, channel, type, priority, subject, message,
			student_id, meeting_id, status, retry_count, last_error,
			scheduled_for, sent_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.conn.Exec(ctx, query,
		n.ID.String(),
		n.RecipientID.String(),
		string(n.Channel),
		string(n.Type),
		string(n.Priority),
		n.Subject,
		n.Message,
		n.StudentID,
		n.MeetingID,
		string(n.Status),
		n.RetryCount,
		n.LastError,
		n.ScheduledFor,
		n.SentAt,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByID returns a notification by ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id.String())
	return r.scanNotification(row)
}

// Update updates a notification's delivery state.
func (r *NotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	query := `
		UPDATE notifications SET
			status = $1,
			retry_count = $2,
			last_error = $3,
			scheduled_for = $4,
			sent_at = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.conn.Exec(ctx, query,
		string(n.Status),
		n.RetryCount,
		n.LastError,
		n.ScheduledFor,
		n.SentAt,
		time.Now().UTC(),
		n.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	if result.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}

// ListDue returns notifications ready for delivery: pending, or failed with
// retries remaining, whose scheduled time has passed.
func (r *NotificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE (status = 'pending' OR (status = 'failed' AND retry_count < $1))
		  AND (scheduled_for IS NULL OR scheduled_for <= $2)
		ORDER BY
			CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END,
			created_at ASC
		LIMIT $3
	`

	rows, err := r.conn.Query(ctx, query, notification.MaxRetries, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}
	defer rows.Close()

	return r.scanNotifications(rows)
}

// ListByRecipient returns a recipient's notifications, newest first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID notification.RecipientID, limit int) ([]*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, recipientID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications by recipient: %w", err)
	}
	defer rows.Close()

	return r.scanNotifications(rows)
}

// CountByStatus returns the number of notifications in each status.
func (r *NotificationRepository) CountByStatus(ctx context.Context) (map[notification.Status]int64, error) {
	rows, err := r.conn.Query(ctx, "SELECT status, COUNT(*) FROM notifications GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[notification.Status]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan notification count: %w", err)
		}
		counts[notification.Status(status)] = count
	}
	return counts, rows.Err()
}

// DeleteOlderThan removes final notifications older than the cutoff.
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.conn.Exec(ctx, `
		DELETE FROM notifications
		WHERE created_at < $1 AND status IN ('sent', 'cancelled')
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old notifications: %w", err)
	}
	return result.RowsAffected(), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanners
// ─────────────────────────────────────────────────────────────────────────────

func (r *NotificationRepository) scanNotifications(rows pgx.Rows) ([]*notification.Notification, error) {
	notifications := []*notification.Notification{}
	for rows.Next() {
		n, err := r.scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n           notification.Notification
		id          string
		recipientID string
		channel     string
		nType       string
		priority    string
		status      string
	)

	err := row.Scan(
		&id,
		&recipientID,
		&channel,
		&nType,
		&priority,
		&n.Subject,
		&n.Message,
		&n.StudentID,
		&n.MeetingID,
		&status,
		&n.RetryCount,
		&n.LastError,
		&n.ScheduledFor,
		&n.SentAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if IsNoRows(err) {
		return nil, notification.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	n.ID = notification.NotificationID(id)
	n.RecipientID = notification.RecipientID(recipientID)
	n.Channel = notification.Channel(channel)
	n.Type = notification.NotificationType(nType)
	n.Priority = notification.Priority(priority)
	n.Status = notification.Status(status)

	return &n, nil
}
