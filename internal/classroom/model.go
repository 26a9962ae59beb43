package classroom

import (
	"fmt"
	"time"
)

// Geofence is the circular region attendance must be submitted from.
type Geofence struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius"`
}

// Schedule describes when a class meets. Time is "HH:MM" wall clock.
type Schedule struct {
	Time string   `json:"time"`
	Days []string `json:"days"`
}

// HourMinute parses the schedule time.
func (s Schedule) HourMinute() (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s.Time, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("parse schedule time %q: %w", s.Time, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("schedule time %q out of range", s.Time)
	}
	return hour, minute, nil
}

// Class is a scheduled class with its geofence and rotating QR code.
type Class struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	Schedule    Schedule  `json:"schedule"`
	Geofence    Geofence  `json:"geofence"`
	QRCode      string    `json:"qr_code"`
	CreatedAt   time.Time `json:"created_at"`
}
