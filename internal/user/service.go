package user

import (
	"context"

	"edutrack/internal/apperr"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, u User) (User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// Service handles registration and credential checks.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Username string
	Password string
	Name     string
	Email    string
	Role     Role
}

// Register creates an account. Usernames are unique.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if in.Username == "" || in.Password == "" {
		return User{}, apperr.New(apperr.Invalid, "username and password required")
	}
	if _, ok := ParseRole(string(in.Role)); !ok {
		return User{}, apperr.New(apperr.Invalid, "role must be student, teacher or admin")
	}

	existing, err := s.store.FindByUsername(ctx, in.Username)
	if err != nil {
		return User{}, apperr.Wrap(apperr.StorageUnavailable, "user lookup failed", err)
	}
	if existing != nil {
		return User{}, apperr.New(apperr.Invalid, "username already exists")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}

	created, err := s.store.Insert(ctx, User{
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Email:        in.Email,
		Role:         in.Role,
	})
	if err != nil {
		return User{}, apperr.Wrap(apperr.StorageUnavailable, "user insert failed", err)
	}
	return created, nil
}

// Authenticate checks a username/password pair. The same AuthError comes
// back for an unknown user and a wrong password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return User{}, apperr.Wrap(apperr.StorageUnavailable, "user lookup failed", err)
	}
	if u == nil || !CheckPassword(u.PasswordHash, password) {
		return User{}, apperr.New(apperr.AuthError, "invalid credentials")
	}
	return *u, nil
}

// ResolvePrincipal turns a token subject into a request identity.
func (s *Service) ResolvePrincipal(ctx context.Context, id string) (Principal, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Principal{}, apperr.Wrap(apperr.StorageUnavailable, "user lookup failed", err)
	}
	if u == nil {
		return Principal{}, apperr.New(apperr.AuthError, "user not found")
	}
	return u.Principal(), nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, apperr.Wrap(apperr.StorageUnavailable, "user lookup failed", err)
	}
	if u == nil {
		return User{}, apperr.New(apperr.NotFound, "user not found")
	}
	return *u, nil
}

// ListAll returns every account; the caller must be an admin.
func (s *Service) ListAll(ctx context.Context, caller Principal) ([]User, error) {
	if caller.Role != RoleAdmin {
		return nil, apperr.New(apperr.Forbidden, "only admins can view all users")
	}
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageUnavailable, "user list failed", err)
	}
	return users, nil
}
