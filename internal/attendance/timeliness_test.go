package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTimeliness(t *testing.T) {
	// Class scheduled at 10:00 UTC.
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name        string
		submitted   time.Time
		wantFlagged bool
		wantReason  string
	}{
		{"on time", at(10, 0), false, ""},
		{"exactly 15 before", at(9, 45), false, ""},
		{"16 before", at(9, 44), true, "attendance marked 16 minutes before class time"},
		{"exactly 30 after", at(10, 30), false, ""},
		{"31 after", at(10, 31), true, "attendance marked 31 minutes after class time"},
		{"well after", at(11, 30), true, "attendance marked 90 minutes after class time"},
		{"well before", at(8, 0), true, "attendance marked 120 minutes before class time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ClassifyTimeliness(10, 0, tt.submitted)
			assert.Equal(t, tt.wantFlagged, res.Flagged)
			assert.Equal(t, tt.wantReason, res.Reason)
		})
	}
}

func TestClassifyTimelinessUsesUTCWallClock(t *testing.T) {
	// 10:20 UTC expressed in another zone still lands in the window.
	loc := time.FixedZone("IST", 5*3600+1800)
	submitted := time.Date(2026, 3, 2, 15, 50, 0, 0, loc) // 10:20 UTC

	res := ClassifyTimeliness(10, 0, submitted)
	assert.False(t, res.Flagged)
}
