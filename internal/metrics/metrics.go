// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submissions counts attendance submission attempts by method and
	// outcome (accepted, flagged, rejected).
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edutrack_submissions_total",
		Help: "Attendance submissions by method and result.",
	}, []string{"method", "result"})

	// Approvals counts review decisions.
	Approvals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edutrack_approvals_total",
		Help: "Attendance approval decisions.",
	}, []string{"decision"})

	// Notifications counts worker-produced notifications.
	Notifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edutrack_notifications_total",
		Help: "Notifications written by the worker.",
	})
)
