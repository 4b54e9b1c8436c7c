package handlers

import (
	"net/http"

	"iqscalar-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	Service *service.AnalyticsService
}

func NewAnalyticsHandler(s *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Service: s}
}

func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	analytics := rg.Group("/analytics")
	{
		analytics.GET("/overview", admin, h.Overview)
		analytics.GET("/leaderboard", h.Leaderboard)
		analytics.GET("/trends", admin, h.Trends)
		analytics.GET("/question-stats", admin, h.QuestionStats)
		analytics.GET("/user-growth", admin, h.UserGrowth)
	}
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, err := h.Service.Overview(c.Request.Context(), c.DefaultQuery("period", "all"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, overview)
}

func (h *AnalyticsHandler) Leaderboard(c *gin.Context) {
	limit, err := intQuery(c, "limit", 50, 1)
	if err != nil {
		c.Error(err)
		return
	}
	entries, err := h.Service.Leaderboard(c.Request.Context(), c.DefaultQuery("period", "all"), limit)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, entries)
}

func (h *AnalyticsHandler) Trends(c *gin.Context) {
	days, err := intQuery(c, "days", 30, 1)
	if err != nil {
		c.Error(err)
		return
	}
	trends, err := h.Service.Trends(c.Request.Context(), days)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, trends)
}

func (h *AnalyticsHandler) QuestionStats(c *gin.Context) {
	limit, err := intQuery(c, "limit", 20, 1)
	if err != nil {
		c.Error(err)
		return
	}
	stats, err := h.Service.QuestionStats(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, stats)
}

func (h *AnalyticsHandler) UserGrowth(c *gin.Context) {
	days, err := intQuery(c, "days", 30, 1)
	if err != nil {
		c.Error(err)
		return
	}
	growth, err := h.Service.UserGrowth(c.Request.Context(), days)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, growth)
}
