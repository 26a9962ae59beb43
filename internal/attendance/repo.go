package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const recordColumns = `id, student_id, student_name, class_id, class_name, teacher_id,
	submitted_at, method, latitude, longitude, status, flagged, flag_reason,
	approved_by, approved_at, remarks`

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ErrDuplicateDay is returned when the per-day unique index rejects an
// insert that slipped past the read-then-write check.
var ErrDuplicateDay = errors.New("attendance already recorded for this day")

// Insert writes a new record.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	var lat, lon *float64
	if rec.Location != nil {
		lat, lon = &rec.Location.Latitude, &rec.Location.Longitude
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, student_name, class_id, class_name,
			teacher_id, submitted_at, method, latitude, longitude, status, flagged, flag_reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, rec.ID, rec.StudentID, rec.StudentName, rec.ClassID, rec.ClassName,
		rec.TeacherID, rec.SubmittedAt, rec.Method, lat, lon, rec.Status, rec.Flagged, rec.FlagReason)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrDuplicateDay
		}
		return Record{}, err
	}
	return rec, nil
}

// FindSameDay returns the student's record for the class within the UTC
// day starting at dayStart, or nil.
func (r *Repository) FindSameDay(ctx context.Context, studentID, classID string, dayStart time.Time) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE student_id = $1 AND class_id = $2 AND submitted_at >= $3 AND submitted_at < $4
		ORDER BY submitted_at DESC
		LIMIT 1
	`, studentID, classID, dayStart, dayStart.Add(24*time.Hour))
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// FindByID returns nil when no record matches.
func (r *Repository) FindByID(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance_records WHERE id = $1
	`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Finalize moves a pending record to its terminal status and stamps the
// approval fields. It reports false when the record was not pending, so
// a concurrent double-approve loses cleanly.
func (r *Repository) Finalize(ctx context.Context, id string, status Status, approvedBy string, approvedAt time.Time, remarks *string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET status = $2, approved_by = $3, approved_at = $4, remarks = $5
		WHERE id = $1 AND status = 'pending'
	`, id, status, approvedBy, approvedAt, remarks)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListByStudent returns a student's records, newest first.
func (r *Repository) ListByStudent(ctx context.Context, studentID string) ([]Record, error) {
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM attendance_records
		WHERE student_id = $1 ORDER BY submitted_at DESC
	`, studentID)
}

// ListByClass returns a class's records, newest first.
func (r *Repository) ListByClass(ctx context.Context, classID string) ([]Record, error) {
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM attendance_records
		WHERE class_id = $1 ORDER BY submitted_at DESC
	`, classID)
}

// ListPending returns pending records, newest first. An empty teacherID
// returns everyone's.
func (r *Repository) ListPending(ctx context.Context, teacherID string) ([]Record, error) {
	if teacherID == "" {
		return r.list(ctx, `
			SELECT `+recordColumns+` FROM attendance_records
			WHERE status = 'pending' ORDER BY submitted_at DESC
		`)
	}
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM attendance_records
		WHERE status = 'pending' AND teacher_id = $1 ORDER BY submitted_at DESC
	`, teacherID)
}

// Count returns the total number of records.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_records`).Scan(&n)
	return n, err
}

// CountFlagged returns the number of flagged records.
func (r *Repository) CountFlagged(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_records WHERE flagged`).Scan(&n)
	return n, err
}

// RecentFlagged returns the newest flagged records up to limit.
func (r *Repository) RecentFlagged(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.list(ctx, `
		SELECT `+recordColumns+` FROM attendance_records
		WHERE flagged ORDER BY submitted_at DESC LIMIT $1
	`, limit)
}

// AggregateByClass rolls up record and flag counts per class name.
func (r *Repository) AggregateByClass(ctx context.Context) ([]ClassAggregate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT class_name, COUNT(*), COUNT(*) FILTER (WHERE flagged)
		FROM attendance_records
		GROUP BY class_name
		ORDER BY class_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []ClassAggregate
	for rows.Next() {
		var a ClassAggregate
		if err := rows.Scan(&a.ClassName, &a.Count, &a.Flagged); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var lat, lon *float64
	if err := row.Scan(&rec.ID, &rec.StudentID, &rec.StudentName, &rec.ClassID, &rec.ClassName,
		&rec.TeacherID, &rec.SubmittedAt, &rec.Method, &lat, &lon, &rec.Status,
		&rec.Flagged, &rec.FlagReason, &rec.ApprovedBy, &rec.ApprovedAt, &rec.Remarks); err != nil {
		return Record{}, err
	}
	if lat != nil && lon != nil {
		rec.Location = &Location{Latitude: *lat, Longitude: *lon}
	}
	return rec, nil
}
