package classroom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edutrack/internal/apperr"
	"edutrack/internal/user"
)

type fakeStore struct {
	classes map[string]Class
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{classes: make(map[string]Class)}
}

func (f *fakeStore) Insert(_ context.Context, c Class) (Class, error) {
	if c.ID == "" {
		c.ID = "class-1"
	}
	f.classes[c.ID] = c
	return c, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*Class, error) {
	if c, ok := f.classes[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context) ([]Class, error) {
	var res []Class
	for _, c := range f.classes {
		res = append(res, c)
	}
	return res, nil
}

func (f *fakeStore) UpdateQRCode(_ context.Context, id, code string) error {
	c := f.classes[id]
	c.QRCode = code
	f.classes[id] = c
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	delete(f.classes, id)
	f.deleted = append(f.deleted, id)
	return nil
}

var (
	teacher      = user.Principal{ID: "t1", Name: "Mr. A", Role: user.RoleTeacher}
	otherTeacher = user.Principal{ID: "t2", Name: "Ms. B", Role: user.RoleTeacher}
	admin        = user.Principal{ID: "a1", Name: "Root", Role: user.RoleAdmin}
	student      = user.Principal{ID: "s1", Name: "Asha", Role: user.RoleStudent}
)

func validInput() CreateInput {
	return CreateInput{
		Name:     "Algorithms",
		Schedule: Schedule{Time: "10:00", Days: []string{"Monday", "Wednesday"}},
		Geofence: Geofence{Latitude: 12.9716, Longitude: 77.5946, RadiusMeters: 100},
	}
}

func TestCreateClass(t *testing.T) {
	svc := NewService(newFakeStore())

	created, err := svc.Create(context.Background(), teacher, validInput())
	require.NoError(t, err)

	assert.Equal(t, teacher.ID, created.TeacherID)
	assert.Equal(t, teacher.Name, created.TeacherName)
	assert.Len(t, created.QRCode, 12)
}

func TestCreateClassStudentForbidden(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Create(context.Background(), student, validInput())
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestCreateClassValidation(t *testing.T) {
	svc := NewService(newFakeStore())

	tests := []struct {
		name     string
		mutate   func(*CreateInput)
		wantKind apperr.Kind
	}{
		{"empty name", func(in *CreateInput) { in.Name = "" }, apperr.Invalid},
		{"bad time", func(in *CreateInput) { in.Schedule.Time = "25:99" }, apperr.Invalid},
		{"garbage time", func(in *CreateInput) { in.Schedule.Time = "noon" }, apperr.Invalid},
		{"lat out of range", func(in *CreateInput) { in.Geofence.Latitude = 91 }, apperr.InvalidLocation},
		{"lon out of range", func(in *CreateInput) { in.Geofence.Longitude = -200 }, apperr.InvalidLocation},
		{"zero radius", func(in *CreateInput) { in.Geofence.RadiusMeters = 0 }, apperr.Invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), teacher, in)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestRotateQRReplacesCode(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), teacher, validInput())
	require.NoError(t, err)
	old := created.QRCode

	code, err := svc.RotateQR(context.Background(), teacher, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, old, code)
	assert.Equal(t, code, store.classes[created.ID].QRCode)

	// Students cannot rotate.
	_, err = svc.RotateQR(context.Background(), student, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestRotateQRUnknownClass(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.RotateQR(context.Background(), teacher, "missing")
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestDeleteOwnership(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), teacher, validInput())
	require.NoError(t, err)

	// Another teacher cannot delete it.
	err = svc.Delete(context.Background(), otherTeacher, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	// The owner can.
	require.NoError(t, svc.Delete(context.Background(), teacher, created.ID))
	assert.Equal(t, []string{created.ID}, store.deleted)
}

func TestDeleteAdminBypassesOwnership(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), teacher, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), admin, created.ID))
}

func TestScheduleHourMinute(t *testing.T) {
	hour, minute, err := Schedule{Time: "12:30"}.HourMinute()
	require.NoError(t, err)
	assert.Equal(t, 12, hour)
	assert.Equal(t, 30, minute)

	_, _, err = Schedule{Time: "24:00"}.HourMinute()
	assert.Error(t, err)
}
