package attendance

import (
	"context"
	"errors"
	"time"

	"edutrack/internal/apperr"
	"edutrack/internal/classroom"
	"edutrack/internal/policy"
	"edutrack/internal/user"
)

// ClassDirectory resolves the class a submission targets. The lookup
// always reads the stored class, so a rotated QR code takes effect on
// the very next submission.
type ClassDirectory interface {
	Get(ctx context.Context, id string) (classroom.Class, error)
}

// Store is the persistence surface the workflow needs.
type Store interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	FindSameDay(ctx context.Context, studentID, classID string, dayStart time.Time) (*Record, error)
	FindByID(ctx context.Context, id string) (*Record, error)
	Finalize(ctx context.Context, id string, status Status, approvedBy string, approvedAt time.Time, remarks *string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]Record, error)
	ListByClass(ctx context.Context, classID string) ([]Record, error)
	ListPending(ctx context.Context, teacherID string) ([]Record, error)
}

// Service runs the submission and approval workflow.
type Service struct {
	store   Store
	classes ClassDirectory
	now     func() time.Time
}

// NewService creates a service backed by a store and class directory.
func NewService(store Store, classes ClassDirectory) *Service {
	return &Service{store: store, classes: classes, now: func() time.Time { return time.Now().UTC() }}
}

// SubmitInput is a student's attendance claim.
type SubmitInput struct {
	ClassID  string
	Method   Method
	Location *Location
	QRCode   string
}

// Submit verifies a claim and stores it pending approval. Verification
// failures are hard rejections: nothing is persisted. A submission that
// verifies but falls outside the expected time window is stored flagged
// for human review.
func (s *Service) Submit(ctx context.Context, caller user.Principal, in SubmitInput) (Record, error) {
	if !policy.Can(caller, policy.AttendanceMark, policy.Resource{}) {
		return Record{}, apperr.New(apperr.Forbidden, "only students can mark attendance")
	}

	class, err := s.classes.Get(ctx, in.ClassID)
	if err != nil {
		return Record{}, err
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	existing, err := s.store.FindSameDay(ctx, caller.ID, class.ID, dayStart)
	if err != nil {
		return Record{}, apperr.Wrap(apperr.StorageUnavailable, "attendance lookup failed", err)
	}
	if existing != nil {
		return Record{}, apperr.New(apperr.DuplicateSubmission, "attendance already marked today")
	}

	var location *Location
	switch in.Method {
	case MethodGeo:
		if in.Location == nil {
			return Record{}, apperr.New(apperr.MissingLocation, "location required for geo-based attendance")
		}
		center := Location{Latitude: class.Geofence.Latitude, Longitude: class.Geofence.Longitude}
		res, err := VerifyGeofence(center, class.Geofence.RadiusMeters, *in.Location)
		if err != nil {
			return Record{}, err
		}
		if !res.WithinRadius {
			oor := &OutOfRangeError{DistanceMeters: res.DistanceMeters}
			return Record{}, apperr.Wrap(apperr.OutOfRange, oor.Error(), oor)
		}
		location = in.Location

	case MethodQR:
		if !classroom.VerifyCode(class.QRCode, in.QRCode) {
			return Record{}, apperr.New(apperr.InvalidCode, "invalid QR code")
		}
		// Coordinates are optional alongside a QR scan; keep them
		// when the client sent some.
		location = in.Location

	default:
		return Record{}, apperr.New(apperr.Invalid, "method must be geo or qr")
	}

	rec := Record{
		StudentID:   caller.ID,
		StudentName: caller.Name,
		ClassID:     class.ID,
		ClassName:   class.Name,
		TeacherID:   class.TeacherID,
		SubmittedAt: now,
		Method:      in.Method,
		Location:    location,
		Status:      StatusPending,
	}

	if hour, minute, err := class.Schedule.HourMinute(); err == nil {
		if t := ClassifyTimeliness(hour, minute, now); t.Flagged {
			rec.Flagged = true
			rec.FlagReason = &t.Reason
		}
	}

	created, err := s.store.Insert(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrDuplicateDay) {
			return Record{}, apperr.New(apperr.DuplicateSubmission, "attendance already marked today")
		}
		return Record{}, apperr.Wrap(apperr.StorageUnavailable, "attendance insert failed", err)
	}
	return created, nil
}

// Approve moves a pending record to present or absent. Teachers may
// only decide records for their own classes; admins may decide any.
// Records that already left pending are immutable.
func (s *Service) Approve(ctx context.Context, caller user.Principal, attendanceID string, decision Decision, remarks *string) (Record, error) {
	rec, err := s.store.FindByID(ctx, attendanceID)
	if err != nil {
		return Record{}, apperr.Wrap(apperr.StorageUnavailable, "attendance lookup failed", err)
	}
	if rec == nil {
		return Record{}, apperr.New(apperr.NotFound, "attendance record not found")
	}

	if !policy.Can(caller, policy.AttendanceApprove, policy.Resource{OwnerTeacherID: rec.TeacherID}) {
		if caller.Role.Staff() {
			return Record{}, apperr.New(apperr.Forbidden, "you can only approve attendance for your own classes")
		}
		return Record{}, apperr.New(apperr.Forbidden, "only teachers and admins can approve attendance")
	}

	var status Status
	switch decision {
	case DecisionApproved:
		status = StatusPresent
	case DecisionRejected:
		status = StatusAbsent
	default:
		return Record{}, apperr.New(apperr.Invalid, "decision must be approved or rejected")
	}

	now := s.now()
	ok, err := s.store.Finalize(ctx, rec.ID, status, caller.ID, now, remarks)
	if err != nil {
		return Record{}, apperr.Wrap(apperr.StorageUnavailable, "attendance update failed", err)
	}
	if !ok {
		return Record{}, apperr.New(apperr.Conflict, "attendance record already finalized")
	}

	rec.Status = status
	rec.ApprovedBy = &caller.ID
	rec.ApprovedAt = &now
	rec.Remarks = remarks
	return *rec, nil
}

// ListByStudent returns a student's records. Students see only their
// own; staff see anyone's.
func (s *Service) ListByStudent(ctx context.Context, caller user.Principal, studentID string) ([]Record, error) {
	if !policy.Can(caller, policy.AttendanceViewByStudent, policy.Resource{StudentID: studentID}) {
		return nil, apperr.New(apperr.Forbidden, "you can only view your own attendance")
	}
	recs, err := s.store.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageUnavailable, "attendance list failed", err)
	}
	return recs, nil
}

// ListByClass returns a class's records; staff only.
func (s *Service) ListByClass(ctx context.Context, caller user.Principal, classID string) ([]Record, error) {
	if !policy.Can(caller, policy.AttendanceViewByClass, policy.Resource{}) {
		return nil, apperr.New(apperr.Forbidden, "only teachers and admins can view class attendance")
	}
	recs, err := s.store.ListByClass(ctx, classID)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageUnavailable, "attendance list failed", err)
	}
	return recs, nil
}

// ListPending returns records awaiting a decision: all of them for an
// admin, only the caller's classes for a teacher.
func (s *Service) ListPending(ctx context.Context, caller user.Principal) ([]Record, error) {
	if !policy.Can(caller, policy.AttendanceViewPending, policy.Resource{}) {
		return nil, apperr.New(apperr.Forbidden, "only teachers and admins can view pending attendance")
	}
	teacherID := ""
	if caller.Role == user.RoleTeacher {
		teacherID = caller.ID
	}
	recs, err := s.store.ListPending(ctx, teacherID)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageUnavailable, "attendance list failed", err)
	}
	return recs, nil
}
