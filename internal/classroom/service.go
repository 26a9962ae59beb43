package classroom

import (
	"context"
	"math"

	"edutrack/internal/apperr"
	"edutrack/internal/policy"
	"edutrack/internal/user"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, c Class) (Class, error)
	FindByID(ctx context.Context, id string) (*Class, error)
	List(ctx context.Context) ([]Class, error)
	UpdateQRCode(ctx context.Context, id, code string) error
	Delete(ctx context.Context, id string) error
}

// Service manages classes and their rotating QR codes.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput is the payload for class creation.
type CreateInput struct {
	Name     string
	Schedule Schedule
	Geofence Geofence
}

// Create registers a class owned by the calling teacher, with a freshly
// generated QR code.
func (s *Service) Create(ctx context.Context, caller user.Principal, in CreateInput) (Class, error) {
	if !policy.Can(caller, policy.ClassCreate, policy.Resource{}) {
		return Class{}, apperr.New(apperr.Forbidden, "only teachers and admins can create classes")
	}
	if in.Name == "" {
		return Class{}, apperr.New(apperr.Invalid, "class name required")
	}
	if _, _, err := in.Schedule.HourMinute(); err != nil {
		return Class{}, apperr.New(apperr.Invalid, "schedule time must be HH:MM")
	}
	if err := validateGeofence(in.Geofence); err != nil {
		return Class{}, err
	}

	created, err := s.store.Insert(ctx, Class{
		Name:        in.Name,
		TeacherID:   caller.ID,
		TeacherName: caller.Name,
		Schedule:    in.Schedule,
		Geofence:    in.Geofence,
		QRCode:      GenerateCode(),
	})
	if err != nil {
		return Class{}, apperr.Wrap(apperr.StorageUnavailable, "class insert failed", err)
	}
	return created, nil
}

// Get returns a class by id.
func (s *Service) Get(ctx context.Context, id string) (Class, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Class{}, apperr.Wrap(apperr.StorageUnavailable, "class lookup failed", err)
	}
	if c == nil {
		return Class{}, apperr.New(apperr.NotFound, "class not found")
	}
	return *c, nil
}

// List returns all classes.
func (s *Service) List(ctx context.Context) ([]Class, error) {
	classes, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageUnavailable, "class list failed", err)
	}
	return classes, nil
}

// RotateQR replaces the class's current code and returns the new one.
// Every previously issued code stops matching immediately.
func (s *Service) RotateQR(ctx context.Context, caller user.Principal, id string) (string, error) {
	if !policy.Can(caller, policy.ClassRotateQR, policy.Resource{}) {
		return "", apperr.New(apperr.Forbidden, "only teachers and admins can rotate QR codes")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	code := GenerateCode()
	if err := s.store.UpdateQRCode(ctx, id, code); err != nil {
		return "", apperr.Wrap(apperr.StorageUnavailable, "qr update failed", err)
	}
	return code, nil
}

// Delete removes a class. Teachers may only delete their own classes;
// attendance records go with it.
func (s *Service) Delete(ctx context.Context, caller user.Principal, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Can(caller, policy.ClassDelete, policy.Resource{OwnerTeacherID: c.TeacherID}) {
		return apperr.New(apperr.Forbidden, "you can only delete your own classes")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.StorageUnavailable, "class delete failed", err)
	}
	return nil
}

func validateGeofence(g Geofence) error {
	if !finite(g.Latitude) || !finite(g.Longitude) || !finite(g.RadiusMeters) {
		return apperr.New(apperr.InvalidLocation, "geofence coordinates must be finite")
	}
	if g.Latitude < -90 || g.Latitude > 90 || g.Longitude < -180 || g.Longitude > 180 {
		return apperr.New(apperr.InvalidLocation, "geofence coordinates out of range")
	}
	if g.RadiusMeters <= 0 {
		return apperr.New(apperr.Invalid, "geofence radius must be positive")
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
