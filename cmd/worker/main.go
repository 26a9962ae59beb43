package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"edutrack/internal/applog"
	"edutrack/internal/attendance"
	"edutrack/internal/config"
	"edutrack/internal/metrics"
	"edutrack/internal/notify"
	"edutrack/internal/queue"
	"edutrack/internal/store"
)

// Worker consumes submission events and turns flagged records into
// review notifications for the owning teacher.
func main() {
	cfg := config.Load()
	logger := applog.New(cfg.Env)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.SubmissionsKey)
	}

	attRepo := attendance.NewRepository(db.Client)
	notifications := notify.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		logger.Fatal("queue consume init failed", zap.Error(err))
	}

	logger.Info("worker started, waiting for messages")
	for msg := range messages {
		if msg.Type != queue.TypeSubmission {
			continue
		}

		id := msg.Body
		rec, err := attRepo.FindByID(ctx, id)
		if err != nil {
			logger.Warn("fetch record failed", zap.String("record", id), zap.Error(err))
			continue
		}
		if rec == nil {
			logger.Warn("record vanished before processing", zap.String("record", id))
			continue
		}

		if !rec.Flagged {
			continue
		}

		reason := ""
		if rec.FlagReason != nil {
			reason = *rec.FlagReason
		}
		message := fmt.Sprintf("%s submitted flagged attendance for %s: %s",
			rec.StudentName, rec.ClassName, reason)

		if _, err := notifications.Insert(ctx, notify.Notification{
			RecipientID:  rec.TeacherID,
			AttendanceID: &rec.ID,
			Message:      message,
		}); err != nil {
			logger.Warn("notification insert failed", zap.String("record", id), zap.Error(err))
			continue
		}
		metrics.Notifications.Inc()
		logger.Info("flagged submission notified",
			zap.String("record", rec.ID),
			zap.String("teacher", rec.TeacherID),
			zap.String("reason", reason))
	}

	logger.Info("worker stopped")
}
