package handlers

import (
	"net/http"

	"iqscalar-service/internal/models"
	"iqscalar-service/internal/service"

	"github.com/gin-gonic/gin"
)

type PracticeHandler struct {
	Service *service.PracticeService
}

func NewPracticeHandler(s *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{Service: s}
}

func (h *PracticeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	practice := rg.Group("/practice")
	{
		practice.GET("/questions", h.Questions)
		practice.POST("/session", h.CreateSession)
		practice.GET("/categories", h.Categories)
		practice.GET("/user/:userId", h.History)
		practice.GET("/analytics/:userId", h.Analytics)
		practice.GET("/recommendations/:userId", h.Recommendations)
	}
}

// Questions samples at random unless random=false asks for the newest.
func (h *PracticeHandler) Questions(c *gin.Context) {
	limit, err := intQuery(c, "limit", 10, 1)
	if err != nil {
		c.Error(err)
		return
	}
	difficulty, err := intQuery(c, "difficulty", 0, 1)
	if err != nil {
		c.Error(err)
		return
	}
	random := boolQuery(c, "random")

	questions, err := h.Service.PracticeQuestions(c.Request.Context(), service.PracticeQuery{
		Category:   c.Query("category"),
		Difficulty: difficulty,
		Limit:      limit,
		Random:     random == nil || *random,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respondCount(c, questions, len(questions))
}

func (h *PracticeHandler) CreateSession(c *gin.Context) {
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

func (h *PracticeHandler) Categories(c *gin.Context) {
	categories, err := h.Service.Categories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, categories)
}

func (h *PracticeHandler) History(c *gin.Context) {
	page, err := pageQuery(c, 20)
	if err != nil {
		c.Error(err)
		return
	}
	sessions, pagination, err := h.Service.History(c.Request.Context(), c.Param("userId"), c.Query("category"), page)
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, sessions, pagination)
}

func (h *PracticeHandler) Analytics(c *gin.Context) {
	analytics, err := h.Service.UserAnalytics(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, analytics)
}

func (h *PracticeHandler) Recommendations(c *gin.Context) {
	recs, err := h.Service.Recommendations(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, recs)
}
