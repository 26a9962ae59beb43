package attendance

import (
	"fmt"
	"time"
)

// Submissions flagged outside this window are surfaced for review, not
// rejected.
const (
	earlyFlagMinutes = 15
	lateFlagMinutes  = 30
)

// TimelinessResult is the anti-bunking classification of a submission.
type TimelinessResult struct {
	Flagged bool
	Reason  string
}

// ClassifyTimeliness compares the submission against the class's
// scheduled time-of-day. Both sides are naive UTC minutes since
// midnight; there is deliberately no day-wrap handling, so a class
// scheduled near midnight can misclassify a submission on the other
// side of the boundary (documented trade-off, same as the window the
// duplicate check uses).
func ClassifyTimeliness(scheduledHour, scheduledMinute int, submittedAt time.Time) TimelinessResult {
	utc := submittedAt.UTC()
	diff := (utc.Hour()*60 + utc.Minute()) - (scheduledHour*60 + scheduledMinute)

	if diff >= -earlyFlagMinutes && diff <= lateFlagMinutes {
		return TimelinessResult{}
	}

	direction := "after"
	if diff < 0 {
		direction = "before"
		diff = -diff
	}
	return TimelinessResult{
		Flagged: true,
		Reason:  fmt.Sprintf("attendance marked %d minutes %s class time", diff, direction),
	}
}
