package attendance

import "time"

// Method is how a submission was verified.
type Method string

const (
	MethodGeo Method = "geo"
	MethodQR  Method = "qr"
)

// Status is the approval state of a record. It starts at pending and
// moves exactly once to present or absent.
type Status string

const (
	StatusPending Status = "pending"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Decision is a reviewer's verdict on a pending record.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Location is a WGS84 coordinate pair in degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Record is one student's attendance claim for one class on one day.
// Flagged and FlagReason are set at creation and never change; the
// approval fields are populated only once the record leaves pending.
type Record struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	StudentName string     `json:"student_name"`
	ClassID     string     `json:"class_id"`
	ClassName   string     `json:"class_name"`
	TeacherID   string     `json:"teacher_id"`
	SubmittedAt time.Time  `json:"timestamp"`
	Method      Method     `json:"method"`
	Location    *Location  `json:"location,omitempty"`
	Status      Status     `json:"status"`
	Flagged     bool       `json:"flagged"`
	FlagReason  *string    `json:"flag_reason,omitempty"`
	ApprovedBy  *string    `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	Remarks     *string    `json:"teacher_remarks,omitempty"`
}

// ClassAggregate is the per-class rollup shown on the admin dashboard.
type ClassAggregate struct {
	ClassName string `json:"class_name"`
	Count     int    `json:"count"`
	Flagged   int    `json:"flagged"`
}
