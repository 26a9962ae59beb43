package user

import "time"

// Role is the closed set of account roles. Authorization decisions
// switch exhaustively over it rather than comparing raw strings.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a role string from untrusted input.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Staff reports whether the role carries teacher-level authority.
func (r Role) Staff() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID   string
	Name string
	Role Role
}

// Principal derives the request identity from a stored user.
func (u User) Principal() Principal {
	return Principal{ID: u.ID, Name: u.Name, Role: u.Role}
}
