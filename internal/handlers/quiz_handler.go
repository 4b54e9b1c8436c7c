package handlers

import (
	"net/http"

	"iqscalar-service/internal/models"
	"iqscalar-service/internal/service"

	"github.com/gin-gonic/gin"
)

// QuizHandler serves tests drawn from the bundled question bank.
type QuizHandler struct {
	Service *service.QuizService
}

func NewQuizHandler(s *service.QuizService) *QuizHandler {
	return &QuizHandler{Service: s}
}

func (h *QuizHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tests := rg.Group("/tests")
	{
		tests.GET("/generate", h.GenerateTest)
		tests.POST("/score", h.ScoreTest)
		tests.GET("/progress/:userId", h.Progress)
		tests.DELETE("/progress/:userId", h.ResetProgress)
		tests.GET("/statistics", h.Statistics)
		tests.GET("/sample", h.Sample)
		tests.GET("/practice", h.Practice)
		tests.POST("/practice/score", h.ScorePractice)
	}
}

func (h *QuizHandler) GenerateTest(c *gin.Context) {
	count, err := intQuery(c, "count", 0, 1)
	if err != nil {
		c.Error(err)
		return
	}
	result, err := h.Service.GenerateTest(c.Request.Context(), c.Query("userId"), count)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *QuizHandler) ScoreTest(c *gin.Context) {
	var req service.ScoreRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	results, err := h.Service.ScoreTest(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, results)
}

// ScorePractice scores a bank practice set; saved results are stored as
// practice sessions.
func (h *QuizHandler) ScorePractice(c *gin.Context) {
	var req service.ScoreRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}
	req.TestType = models.TestTypePractice
	results, err := h.Service.ScoreTest(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, results)
}

func (h *QuizHandler) Progress(c *gin.Context) {
	progress, err := h.Service.Progress(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, progress)
}

func (h *QuizHandler) ResetProgress(c *gin.Context) {
	if err := h.Service.ResetProgress(c.Request.Context(), c.Param("userId")); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Progress reset successfully", nil)
}

func (h *QuizHandler) Statistics(c *gin.Context) {
	respond(c, http.StatusOK, h.Service.Statistics())
}

func (h *QuizHandler) Sample(c *gin.Context) {
	count, err := intQuery(c, "count", 0, 1)
	if err != nil {
		c.Error(err)
		return
	}
	questions, err := h.Service.Sample(count)
	if err != nil {
		c.Error(err)
		return
	}
	respondCount(c, questions, len(questions))
}

func (h *QuizHandler) Practice(c *gin.Context) {
	count, err := intQuery(c, "count", 0, 1)
	if err != nil {
		c.Error(err)
		return
	}
	balanced := boolQuery(c, "balanced")
	questions, err := h.Service.Practice(c.Query("category"), count, balanced != nil && *balanced)
	if err != nil {
		c.Error(err)
		return
	}
	respondCount(c, questions, len(questions))
}
