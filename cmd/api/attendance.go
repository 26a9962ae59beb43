package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"edutrack/internal/attendance"
	"edutrack/internal/metrics"
	"edutrack/internal/policy"
	"edutrack/internal/queue"
	"edutrack/internal/user"
)

func (s *server) handleSubmitAttendance(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	var req struct {
		ClassID   string   `json:"class_id" binding:"required"`
		Method    string   `json:"method" binding:"required"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		QRCode    string   `json:"qr_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := attendance.SubmitInput{
		ClassID: req.ClassID,
		Method:  attendance.Method(req.Method),
		QRCode:  req.QRCode,
	}
	if req.Latitude != nil && req.Longitude != nil {
		in.Location = &attendance.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	rec, err := s.att.Submit(c.Request.Context(), p, in)
	if err != nil {
		metrics.Submissions.WithLabelValues(req.Method, "rejected").Inc()
		s.respondErr(c, err)
		return
	}

	result := "accepted"
	if rec.Flagged {
		result = "flagged"
	}
	metrics.Submissions.WithLabelValues(string(rec.Method), result).Inc()

	if err := s.queue.Publish(c.Request.Context(), queue.Message{Type: queue.TypeSubmission, Body: rec.ID}); err != nil {
		s.log.Warn("queue publish failed", zap.String("record", rec.ID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, rec)
}

func (s *server) handleApproveAttendance(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	var req struct {
		AttendanceID string  `json:"attendance_id" binding:"required"`
		Status       string  `json:"status" binding:"required"`
		Remarks      *string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.att.Approve(c.Request.Context(), p, req.AttendanceID, attendance.Decision(req.Status), req.Remarks)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	metrics.Approvals.WithLabelValues(req.Status).Inc()
	c.JSON(http.StatusOK, rec)
}

func (s *server) handleStudentAttendance(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	recs, err := s.att.ListByStudent(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (s *server) handleClassAttendance(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	recs, err := s.att.ListByClass(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (s *server) handlePendingAttendance(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	recs, err := s.att.ListPending(c.Request.Context(), p)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

func (s *server) handleDashboard(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	if !policy.Can(p, policy.DashboardView, policy.Resource{}) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only admins can access dashboard"})
		return
	}

	ctx := c.Request.Context()
	students, err := s.userRepo.CountByRole(ctx, user.RoleStudent)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	teachers, err := s.userRepo.CountByRole(ctx, user.RoleTeacher)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	classes, err := s.classRepo.Count(ctx)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	total, err := s.attRepo.Count(ctx)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	flagged, err := s.attRepo.CountFlagged(ctx)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	recentFlagged, err := s.attRepo.RecentFlagged(ctx, 20)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	byClass, err := s.attRepo.AggregateByClass(ctx)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statistics": gin.H{
			"total_students":     students,
			"total_teachers":     teachers,
			"total_classes":      classes,
			"total_attendance":   total,
			"flagged_attendance": flagged,
		},
		"recent_flagged":      recentFlagged,
		"attendance_by_class": byClass,
	})
}

func (s *server) handleListUsers(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	users, err := s.users.ListAll(c.Request.Context(), p)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *server) handleNotifications(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	if !p.Role.Staff() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only teachers and admins receive notifications"})
		return
	}
	list, err := s.notifications.ListByRecipient(c.Request.Context(), p.ID, 50)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (s *server) handleMarkNotificationRead(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	if !p.Role.Staff() {
		c.JSON(http.StatusForbidden, gin.H{"error": "only teachers and admins receive notifications"})
		return
	}
	if err := s.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}
