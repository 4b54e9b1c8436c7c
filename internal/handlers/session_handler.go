package handlers

import (
	"net/http"
	"strings"

	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"
	"iqscalar-service/internal/service"

	"github.com/gin-gonic/gin"
)

type TestSessionHandler struct {
	Service *service.TestSessionService
}

func NewTestSessionHandler(s *service.TestSessionService) *TestSessionHandler {
	return &TestSessionHandler{Service: s}
}

func (h *TestSessionHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	sessions := rg.Group("/test-sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("", h.ListSessions)
		sessions.POST("/start", h.StartSession)
		sessions.GET("/user/:userId", h.UserSessions)
		sessions.GET("/analytics/:userId", h.UserAnalytics)
		sessions.GET("/:id", h.GetSession)
		sessions.GET("/:id/results", h.Results)
		sessions.POST("/:id/answer", h.SubmitAnswer)
		sessions.POST("/:id/complete", h.CompleteSession)
		sessions.POST("/:id/abandon", h.AbandonSession)
		sessions.DELETE("/:id", admin, h.DeleteSession)
	}
}

func (h *TestSessionHandler) CreateSession(c *gin.Context) {
	var session models.TestSession
	if err := bindJSON(c, &session); err != nil {
		c.Error(err)
		return
	}
	if err := h.Service.CreateSession(c.Request.Context(), &session); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, session)
}

func (h *TestSessionHandler) ListSessions(c *gin.Context) {
	page, err := pageQuery(c, 20)
	if err != nil {
		c.Error(err)
		return
	}
	sort := repository.SessionSort{
		Field: c.DefaultQuery("sortBy", "completedAt"),
		Desc:  !strings.EqualFold(c.Query("sortOrder"), "asc"),
	}
	f := repository.SessionFilter{UserID: c.Query("userId"), TestType: c.Query("testType")}

	sessions, pagination, err := h.Service.ListSessions(c.Request.Context(), f, page, sort)
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, sessions, pagination)
}

func (h *TestSessionHandler) UserSessions(c *gin.Context) {
	page, err := pageQuery(c, 50)
	if err != nil {
		c.Error(err)
		return
	}
	f := repository.SessionFilter{UserID: c.Param("userId")}
	sessions, pagination, err := h.Service.ListSessions(c.Request.Context(), f, page, repository.SessionSort{Field: "completedAt", Desc: true})
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, sessions, pagination)
}

func (h *TestSessionHandler) UserAnalytics(c *gin.Context) {
	analytics, err := h.Service.UserAnalytics(c.Request.Context(), c.Param("userId"), c.DefaultQuery("period", "all"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, analytics)
}

func (h *TestSessionHandler) StartSession(c *gin.Context) {
	var req service.StartRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	session, err := h.Service.StartSession(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, session)
}

func (h *TestSessionHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, session)
}

func (h *TestSessionHandler) Results(c *gin.Context) {
	results, err := h.Service.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, results)
}

func (h *TestSessionHandler) SubmitAnswer(c *gin.Context) {
	var req service.AnswerRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	session, err := h.Service.SubmitAnswer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, session)
}

func (h *TestSessionHandler) CompleteSession(c *gin.Context) {
	session, err := h.Service.CompleteSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, session)
}

func (h *TestSessionHandler) AbandonSession(c *gin.Context) {
	session, err := h.Service.AbandonSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, session)
}

func (h *TestSessionHandler) DeleteSession(c *gin.Context) {
	if err := h.Service.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Test session deleted successfully", nil)
}
