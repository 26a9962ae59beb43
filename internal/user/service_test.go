package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edutrack/internal/apperr"
)

type fakeStore struct {
	byUsername map[string]*User
	byID       map[string]*User
	nextID     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byUsername: make(map[string]*User), byID: make(map[string]*User)}
}

func (f *fakeStore) Insert(_ context.Context, u User) (User, error) {
	f.nextID++
	u.ID = "u-" + string(rune('0'+f.nextID))
	f.byUsername[u.Username] = &u
	f.byID[u.ID] = &u
	return u, nil
}

func (f *fakeStore) FindByUsername(_ context.Context, username string) (*User, error) {
	return f.byUsername[username], nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*User, error) {
	return f.byID[id], nil
}

func (f *fakeStore) List(_ context.Context) ([]User, error) {
	var res []User
	for _, u := range f.byID {
		res = append(res, *u)
	}
	return res, nil
}

func register(t *testing.T, svc *Service, username string, role Role) User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Password: "secret123",
		Name:     "Test User",
		Email:    username + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func TestRegisterHashesPassword(t *testing.T) {
	svc := NewService(newFakeStore())

	u := register(t, svc, "asha", RoleStudent)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, CheckPassword(u.PasswordHash, "secret123"))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewService(newFakeStore())
	register(t, svc, "asha", RoleStudent)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "asha", Password: "other", Name: "X", Email: "x@example.com", Role: RoleTeacher,
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "asha", Password: "secret", Name: "X", Email: "x@example.com", Role: Role("superuser"),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newFakeStore())
	register(t, svc, "asha", RoleStudent)

	u, err := svc.Authenticate(context.Background(), "asha", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "asha", u.Username)

	// Wrong password and unknown user fail identically.
	_, err = svc.Authenticate(context.Background(), "asha", "wrong")
	assert.Equal(t, apperr.AuthError, apperr.KindOf(err))
	_, err = svc.Authenticate(context.Background(), "nobody", "secret123")
	assert.Equal(t, apperr.AuthError, apperr.KindOf(err))
}

func TestResolvePrincipal(t *testing.T) {
	svc := NewService(newFakeStore())
	u := register(t, svc, "asha", RoleStudent)

	p, err := svc.ResolvePrincipal(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, Principal{ID: u.ID, Name: u.Name, Role: RoleStudent}, p)

	_, err = svc.ResolvePrincipal(context.Background(), "gone")
	assert.Equal(t, apperr.AuthError, apperr.KindOf(err))
}

func TestListAllAdminOnly(t *testing.T) {
	svc := NewService(newFakeStore())
	register(t, svc, "asha", RoleStudent)
	adminUser := register(t, svc, "root", RoleAdmin)
	teacherUser := register(t, svc, "mr-a", RoleTeacher)

	users, err := svc.ListAll(context.Background(), adminUser.Principal())
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = svc.ListAll(context.Background(), teacherUser.Principal())
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"student", "teacher", "admin"} {
		role, ok := ParseRole(valid)
		assert.True(t, ok)
		assert.Equal(t, Role(valid), role)
	}
	for _, invalid := range []string{"", "Student", "root", "TEACHER"} {
		_, ok := ParseRole(invalid)
		assert.False(t, ok, "role %q should not parse", invalid)
	}
}

func TestRoleStaff(t *testing.T) {
	assert.False(t, RoleStudent.Staff())
	assert.True(t, RoleTeacher.Staff())
	assert.True(t, RoleAdmin.Staff())
}
