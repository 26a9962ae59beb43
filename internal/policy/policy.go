// Package policy centralizes the role and ownership rules that used to
// be scattered across request handlers.
package policy

import "edutrack/internal/user"

// Action is something a principal may attempt.
type Action int

const (
	ClassCreate Action = iota
	ClassDelete
	ClassRotateQR
	AttendanceMark
	AttendanceApprove
	AttendanceViewByStudent
	AttendanceViewByClass
	AttendanceViewPending
	DashboardView
	UserListAll
)

// Resource identifies what the action targets. Zero fields mean the
// action has no ownership dimension.
type Resource struct {
	// OwnerTeacherID is the teacher owning the class behind the
	// resource, for ownership-gated actions.
	OwnerTeacherID string
	// StudentID is the student a record belongs to, for self-access.
	StudentID string
}

// Can is the single authorization decision point. It is pure: no
// storage access, just the principal, the action, and the resource.
func Can(p user.Principal, action Action, res Resource) bool {
	switch action {
	case ClassCreate, ClassRotateQR:
		return p.Role.Staff()

	case ClassDelete, AttendanceApprove:
		switch p.Role {
		case user.RoleAdmin:
			return true
		case user.RoleTeacher:
			return res.OwnerTeacherID == p.ID
		default:
			return false
		}

	case AttendanceMark:
		return p.Role == user.RoleStudent

	case AttendanceViewByStudent:
		if p.Role.Staff() {
			return true
		}
		return p.Role == user.RoleStudent && res.StudentID == p.ID

	case AttendanceViewByClass, AttendanceViewPending:
		return p.Role.Staff()

	case DashboardView, UserListAll:
		return p.Role == user.RoleAdmin

	default:
		return false
	}
}
