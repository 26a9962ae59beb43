package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"edutrack/internal/user"
)

var (
	student = user.Principal{ID: "s1", Role: user.RoleStudent}
	owner   = user.Principal{ID: "t1", Role: user.RoleTeacher}
	other   = user.Principal{ID: "t2", Role: user.RoleTeacher}
	admin   = user.Principal{ID: "a1", Role: user.RoleAdmin}
)

func TestCan(t *testing.T) {
	owned := Resource{OwnerTeacherID: owner.ID}

	tests := []struct {
		name      string
		principal user.Principal
		action    Action
		resource  Resource
		want      bool
	}{
		{"student creates class", student, ClassCreate, Resource{}, false},
		{"teacher creates class", owner, ClassCreate, Resource{}, true},
		{"admin creates class", admin, ClassCreate, Resource{}, true},

		{"owner rotates qr", owner, ClassRotateQR, Resource{}, true},
		{"student rotates qr", student, ClassRotateQR, Resource{}, false},

		{"owner deletes own class", owner, ClassDelete, owned, true},
		{"teacher deletes foreign class", other, ClassDelete, owned, false},
		{"admin deletes any class", admin, ClassDelete, owned, true},
		{"student deletes class", student, ClassDelete, owned, false},

		{"student marks attendance", student, AttendanceMark, Resource{}, true},
		{"teacher marks attendance", owner, AttendanceMark, Resource{}, false},
		{"admin marks attendance", admin, AttendanceMark, Resource{}, false},

		{"owner approves own class record", owner, AttendanceApprove, owned, true},
		{"teacher approves foreign record", other, AttendanceApprove, owned, false},
		{"admin approves foreign record", admin, AttendanceApprove, owned, true},
		{"student approves", student, AttendanceApprove, owned, false},

		{"student views own records", student, AttendanceViewByStudent, Resource{StudentID: student.ID}, true},
		{"student views other's records", student, AttendanceViewByStudent, Resource{StudentID: "s2"}, false},
		{"teacher views student records", other, AttendanceViewByStudent, Resource{StudentID: student.ID}, true},

		{"student views class records", student, AttendanceViewByClass, Resource{}, false},
		{"teacher views class records", owner, AttendanceViewByClass, Resource{}, true},

		{"student views pending", student, AttendanceViewPending, Resource{}, false},
		{"teacher views pending", owner, AttendanceViewPending, Resource{}, true},

		{"teacher views dashboard", owner, DashboardView, Resource{}, false},
		{"admin views dashboard", admin, DashboardView, Resource{}, true},
		{"teacher lists users", owner, UserListAll, Resource{}, false},
		{"admin lists users", admin, UserListAll, Resource{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.principal, tt.action, tt.resource))
		})
	}
}
