// Package notify stores review notifications produced by the worker
// when a flagged submission arrives.
package notify

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Notification is a message addressed to a teacher or admin.
type Notification struct {
	ID           string    `json:"id"`
	RecipientID  string    `json:"recipient_id"`
	AttendanceID *string   `json:"attendance_id,omitempty"`
	Message      string    `json:"message"`
	Read         bool      `json:"read"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository persists notifications in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a notification.
func (r *Repository) Insert(ctx context.Context, n Notification) (Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (id, recipient_id, attendance_id, message)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, n.ID, n.RecipientID, n.AttendanceID, n.Message)
	if err := row.Scan(&n.CreatedAt); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// ListByRecipient returns a recipient's notifications, newest first.
func (r *Repository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient_id, attendance_id, message, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.AttendanceID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, n)
	}
	return res, rows.Err()
}

// MarkRead flags a notification as seen.
func (r *Repository) MarkRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	return err
}
