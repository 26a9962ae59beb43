package classroom

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Repository persists classes in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new class.
func (r *Repository) Insert(ctx context.Context, c Class) (Class, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO classes (id, name, teacher_id, teacher_name, schedule_time, schedule_days,
			latitude, longitude, radius_m, qr_code)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at
	`, c.ID, c.Name, c.TeacherID, c.TeacherName, c.Schedule.Time, joinDays(c.Schedule.Days),
		c.Geofence.Latitude, c.Geofence.Longitude, c.Geofence.RadiusMeters, c.QRCode)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return Class{}, err
	}
	return c, nil
}

// FindByID returns nil when no class matches.
func (r *Repository) FindByID(ctx context.Context, id string) (*Class, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, teacher_id, teacher_name, schedule_time, schedule_days,
			latitude, longitude, radius_m, qr_code, created_at
		FROM classes WHERE id = $1
	`, id)
	c, err := scanClass(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// List returns all classes, newest first.
func (r *Repository) List(ctx context.Context) ([]Class, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, teacher_id, teacher_name, schedule_time, schedule_days,
			latitude, longitude, radius_m, qr_code, created_at
		FROM classes ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// UpdateQRCode swaps in a freshly rotated code.
func (r *Repository) UpdateQRCode(ctx context.Context, id, code string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE classes SET qr_code = $2 WHERE id = $1`, id, code)
	return err
}

// Delete removes a class and its attendance records in one transaction.
// The FK cascade would cover the records too; the explicit delete keeps
// the intent visible.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_records WHERE class_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Count returns the number of classes.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classes`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClass(row rowScanner) (Class, error) {
	var c Class
	var days string
	if err := row.Scan(&c.ID, &c.Name, &c.TeacherID, &c.TeacherName, &c.Schedule.Time, &days,
		&c.Geofence.Latitude, &c.Geofence.Longitude, &c.Geofence.RadiusMeters, &c.QRCode, &c.CreatedAt); err != nil {
		return Class{}, err
	}
	c.Schedule.Days = splitDays(days)
	return c, nil
}

func joinDays(days []string) string { return strings.Join(days, ",") }

func splitDays(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
