package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"edutrack/internal/applog"
	"edutrack/internal/attendance"
	"edutrack/internal/auth"
	"edutrack/internal/classroom"
	"edutrack/internal/config"
	"edutrack/internal/httpmiddleware"
	"edutrack/internal/notify"
	"edutrack/internal/queue"
	"edutrack/internal/store"
	"edutrack/internal/user"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := applog.New(cfg.Env)
	defer logger.Sync()

	if err := runHTTP(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func runHTTP(cfg config.App, logger *zap.Logger) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(context.Background()); err != nil {
			return err
		}
		if version, err := db.SchemaVersion(context.Background()); err == nil {
			logger.Info("migrations applied", zap.Int64("schema_version", version))
		}
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	var limiter httpmiddleware.Limiter
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
		limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.SubmissionsKey)
		limiter = httpmiddleware.NewRedisFixedWindow(redisClient.Client, cfg.RateLimitPerMin)
	}

	userRepo := user.NewRepository(db.Client)
	classRepo := classroom.NewRepository(db.Client)
	attRepo := attendance.NewRepository(db.Client)

	srv := &server{
		cfg:           cfg,
		log:           logger,
		users:         user.NewService(userRepo),
		userRepo:      userRepo,
		classes:       classroom.NewService(classRepo),
		classRepo:     classRepo,
		attRepo:       attRepo,
		notifications: notify.NewRepository(db.Client),
		queue:         q,
	}
	srv.att = attendance.NewService(attRepo, srv.classes)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(limiter.GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	srv.routes(r)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
	return nil
}

// server holds the wired services the handlers close over.
type server struct {
	cfg           config.App
	log           *zap.Logger
	users         *user.Service
	userRepo      *user.Repository
	classes       *classroom.Service
	classRepo     *classroom.Repository
	att           *attendance.Service
	attRepo       *attendance.Repository
	notifications *notify.Repository
	queue         queue.Queue
}

func (s *server) routes(r *gin.Engine) {
	r.POST("/v1/auth/register", s.handleRegister)
	r.POST("/v1/auth/login", s.handleLogin)
	r.POST("/v1/auth/refresh", s.handleRefresh)

	authed := r.Group("/v1", auth.Bearer(s.cfg.JWTSigningKey, s.cfg.JWTIssuer, s.users))

	authed.GET("/auth/me", s.handleMe)

	authed.POST("/classes", s.handleCreateClass)
	authed.GET("/classes", s.handleListClasses)
	authed.GET("/classes/:id", s.handleGetClass)
	authed.POST("/classes/:id/qr", s.handleRotateQR)
	authed.GET("/classes/:id/qr.png", s.handleQRImage)
	authed.DELETE("/classes/:id", s.handleDeleteClass)

	authed.POST("/attendance", s.handleSubmitAttendance)
	authed.POST("/attendance/approve", s.handleApproveAttendance)
	authed.GET("/attendance/student/:id", s.handleStudentAttendance)
	authed.GET("/attendance/class/:id", s.handleClassAttendance)
	authed.GET("/attendance/pending", s.handlePendingAttendance)

	authed.GET("/admin/dashboard", s.handleDashboard)
	authed.GET("/admin/users", s.handleListUsers)

	authed.GET("/notifications", s.handleNotifications)
	authed.POST("/notifications/:id/read", s.handleMarkNotificationRead)
}

// CORS middleware for browser requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production.
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
