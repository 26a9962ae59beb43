package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"edutrack/internal/apperr"
	"edutrack/internal/auth"
	"edutrack/internal/classroom"
	"edutrack/internal/policy"
	"edutrack/internal/user"
)

// respondErr translates service errors into the API's JSON error shape.
func (s *server) respondErr(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *server) principal(c *gin.Context) (user.Principal, bool) {
	p, ok := auth.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
	}
	return p, ok
}

// issueTokens creates a token pair and records the refresh token for
// later rotation.
func (s *server) issueTokens(c *gin.Context, u user.User) (auth.TokenPair, bool) {
	tokens, err := auth.Issue(u.ID, string(u.Role), s.cfg.JWTIssuer, s.cfg.JWTSigningKey, s.cfg.AccessTTL, s.cfg.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return auth.TokenPair{}, false
	}
	if err := s.userRepo.SaveRefreshToken(c.Request.Context(), u.ID, tokens.RefreshToken, tokens.RefreshExp); err != nil {
		s.log.Warn("refresh token save failed", zap.Error(err))
	}
	return tokens, true
}

func tokenResponse(tokens auth.TokenPair, u user.User) gin.H {
	return gin.H{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
		"token_type":    "bearer",
		"expires_at":    tokens.AccessExp.Unix(),
		"user":          u,
	}
}

func (s *server) handleRegister(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.users.Register(c.Request.Context(), user.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
		Role:     user.Role(req.Role),
	})
	if err != nil {
		s.respondErr(c, err)
		return
	}

	tokens, ok := s.issueTokens(c, created)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, tokenResponse(tokens, created))
}

func (s *server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := s.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	tokens, ok := s.issueTokens(c, u)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tokenResponse(tokens, u))
}

func (s *server) handleRefresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := auth.Parse(req.RefreshToken, s.cfg.JWTSigningKey, s.cfg.JWTIssuer); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	userID, ok, err := s.userRepo.FindRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.respondErr(c, apperr.Wrap(apperr.StorageUnavailable, "token lookup failed", err))
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token revoked or expired"})
		return
	}

	u, err := s.users.Get(c.Request.Context(), userID)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	// Rotation: the presented token stops working once exchanged.
	if err := s.userRepo.RevokeRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
		s.log.Warn("refresh token revoke failed", zap.Error(err))
	}

	tokens, issued := s.issueTokens(c, u)
	if !issued {
		return
	}
	c.JSON(http.StatusOK, tokenResponse(tokens, u))
}

func (s *server) handleMe(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	u, err := s.users.Get(c.Request.Context(), p.ID)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *server) handleCreateClass(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	var req struct {
		Name         string   `json:"name" binding:"required"`
		ScheduleTime string   `json:"schedule_time" binding:"required"`
		ScheduleDays []string `json:"schedule_days" binding:"required"`
		Latitude     float64  `json:"latitude"`
		Longitude    float64  `json:"longitude"`
		Radius       float64  `json:"radius" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := s.classes.Create(c.Request.Context(), p, classroom.CreateInput{
		Name:     req.Name,
		Schedule: classroom.Schedule{Time: req.ScheduleTime, Days: req.ScheduleDays},
		Geofence: classroom.Geofence{Latitude: req.Latitude, Longitude: req.Longitude, RadiusMeters: req.Radius},
	})
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *server) handleListClasses(c *gin.Context) {
	classes, err := s.classes.List(c.Request.Context())
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

func (s *server) handleGetClass(c *gin.Context) {
	class, err := s.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (s *server) handleRotateQR(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	code, err := s.classes.RotateQR(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr_code": code})
}

// handleQRImage renders the class's current code as a PNG for display
// in the classroom.
func (s *server) handleQRImage(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	if !policy.Can(p, policy.ClassRotateQR, policy.Resource{}) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only teachers and admins can view QR codes"})
		return
	}
	class, err := s.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	png, err := qrcode.Encode(class.QRCode, qrcode.Medium, 256)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *server) handleDeleteClass(c *gin.Context) {
	p, ok := s.principal(c)
	if !ok {
		return
	}
	if err := s.classes.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "class deleted successfully"})
}
