package handlers

import (
	"net/http"

	"iqscalar-service/internal/learning"

	"github.com/gin-gonic/gin"
)

type LearningHandler struct {
	Library *learning.Library
}

func NewLearningHandler(lib *learning.Library) *LearningHandler {
	return &LearningHandler{Library: lib}
}

func (h *LearningHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/learning", h.Topics)
	rg.GET("/learning/:slug", h.Topic)
}

func (h *LearningHandler) Topics(c *gin.Context) {
	topics := h.Library.Summaries()
	respondCount(c, topics, len(topics))
}

func (h *LearningHandler) Topic(c *gin.Context) {
	topic, err := h.Library.Topic(c.Param("slug"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, topic)
}
