package handlers

import (
	"net/http"

	"iqscalar-service/internal/models"
	"iqscalar-service/internal/repository"
	"iqscalar-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	Service *service.QuestionService
}

func NewQuestionHandler(s *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{Service: s}
}

func (h *QuestionHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	questions := rg.Group("/questions")
	{
		questions.GET("", h.ListQuestions)
		questions.GET("/categories", h.Categories)
		questions.GET("/stats", h.Stats)
		questions.GET("/:id", h.GetQuestion)
		questions.POST("", admin, h.CreateQuestion)
		questions.PUT("/:id", admin, h.UpdateQuestion)
		questions.DELETE("/:id", admin, h.DeleteQuestion)
	}
}

func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, err := pageQuery(c, 20)
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

	questions, pagination, err := h.Service.ListQuestions(c.Request.Context(), service.QuestionQuery{
		Filter: repository.QuestionFilter{
			Category:   c.Query("category"),
			Difficulty: difficulty,
			Search:     c.Query("search"),
		},
		Page:   page,
		Random: random != nil && *random,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, questions, pagination)
}

func (h *QuestionHandler) Categories(c *gin.Context) {
	categories, err := h.Service.Categories(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, categories)
}

func (h *QuestionHandler) Stats(c *gin.Context) {
	stats, err := h.Service.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, stats)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.Service.GetQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, question)
}

func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var question models.Question
	if err := bindJSON(c, &question); err != nil {
		c.Error(err)
		return
	}
	if err := h.Service.CreateQuestion(c.Request.Context(), &question); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, question)
}

func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var patch map[string]interface{}
	if err := bindJSON(c, &patch); err != nil {
		c.Error(err)
		return
	}
	question, err := h.Service.UpdateQuestion(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, question)
}

func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	if err := h.Service.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Question deleted successfully", nil)
}
