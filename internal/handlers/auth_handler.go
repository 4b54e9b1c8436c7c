package handlers

import (
	"net/http"
	"time"

	"iqscalar-service/internal/apperror"
	"iqscalar-service/internal/service"

	"github.com/gin-gonic/gin"
)

var authEndpoints = []string{
	"POST /api/auth/signup",
	"POST /api/auth/login",
	"POST /api/auth/logout",
	"POST /api/auth/failed-login",
	"POST /api/auth/activity",
	"GET /api/auth/history/:userId",
	"GET /api/auth/sessions/:userId",
	"GET /api/auth/stats/:userId",
	"GET /api/auth/security/:userId",
	"DELETE /api/auth/session/:sessionId",
	"POST /api/auth/cleanup",
}

type AuthHandler struct {
	Service *service.AuthService
	// Ready reports whether the database is reachable. Nil means always.
	Ready func() bool
}

func NewAuthHandler(s *service.AuthService, ready func() bool) *AuthHandler {
	return &AuthHandler{Service: s, Ready: ready}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/signup", h.requireDatabase, h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/failed-login", h.requireDatabase, h.FailedLogin)
		auth.POST("/activity", h.Activity)
		auth.GET("/history/:userId", h.History)
		auth.GET("/sessions/:userId", h.Sessions)
		auth.GET("/stats/:userId", h.Stats)
		auth.GET("/security/:userId", h.Security)
		auth.DELETE("/session/:sessionId", h.EndSession)
		auth.POST("/cleanup", admin, h.Cleanup)
		auth.GET("/test", h.Test)
	}
}

func (h *AuthHandler) connected() bool {
	return h.Ready == nil || h.Ready()
}

func (h *AuthHandler) requireDatabase(c *gin.Context) {
	if !h.connected() {
		c.Error(apperror.ErrUnavailable)
		c.Abort()
		return
	}
	c.Next()
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	user, err := h.Service.Signup(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User signup logged successfully",
		"data":    gin.H{"userId": user.ID.Hex(), "email": user.Email, "fullName": user.FullName},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	res, err := h.Service.Login(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "User login logged successfully", gin.H{
		"userId":    res.User.ID.Hex(),
		"sessionId": res.SessionID,
		"email":     res.User.Email,
		"fullName":  res.User.FullName,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req service.LogoutRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	duration, err := h.Service.Logout(c.Request.Context(), req, clientInfo(c))
	if err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "User logout logged successfully", gin.H{"sessionId": req.SessionID, "sessionDuration": duration})
}

func (h *AuthHandler) FailedLogin(c *gin.Context) {
	var req service.FailedLoginRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	if err := h.Service.FailedLogin(c.Request.Context(), req, clientInfo(c)); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Failed login attempt logged", nil)
}

func (h *AuthHandler) Activity(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	session, err := h.Service.Activity(c.Request.Context(), req.SessionID)
	if err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Activity updated successfully", gin.H{"sessionId": session.SessionID, "lastActivity": session.LastActivity})
}

func (h *AuthHandler) History(c *gin.Context) {
	limit, err := intQuery(c, "limit", 50, 1)
	if err != nil {
		c.Error(err)
		return
	}
	history, err := h.Service.History(c.Request.Context(), c.Param("userId"), c.Query("eventType"), limit)
	if err != nil {
		c.Error(err)
		return
	}
	respondCount(c, history, len(history))
}

func (h *AuthHandler) Sessions(c *gin.Context) {
	sessions, err := h.Service.UserSessions(c.Request.Context(), c.Param("userId"), boolQuery(c, "active"))
	if err != nil {
		c.Error(err)
		return
	}
	respondCount(c, sessions, len(sessions))
}

func (h *AuthHandler) Stats(c *gin.Context) {
	days, err := intQuery(c, "days", 30, 1)
	if err != nil {
		c.Error(err)
		return
	}
	stats, err := h.Service.Stats(c.Request.Context(), c.Param("userId"), days)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, stats)
}

func (h *AuthHandler) Security(c *gin.Context) {
	report, err := h.Service.Security(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, report)
}

func (h *AuthHandler) EndSession(c *gin.Context) {
	session, err := h.Service.EndSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Session ended successfully", gin.H{"sessionId": session.SessionID, "sessionDuration": session.SessionDuration})
}

func (h *AuthHandler) Cleanup(c *gin.Context) {
	n, err := h.Service.Cleanup(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Cleanup completed successfully", gin.H{"sessionsCleaned": n})
}

func (h *AuthHandler) Test(c *gin.Context) {
	status := "Not Connected"
	if h.connected() {
		status = "Connected"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Authentication API is working correctly",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"databaseStatus": status,
		"endpoints":      authEndpoints,
	})
}
