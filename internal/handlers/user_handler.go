package handlers

import (
	"net/http"

	"iqscalar-service/internal/models"
	"iqscalar-service/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Service  *service.UserService
	Sessions *service.TestSessionService
}

func NewUserHandler(s *service.UserService, sessions *service.TestSessionService) *UserHandler {
	return &UserHandler{Service: s, Sessions: sessions}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.GET("", admin, h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/external/:externalId", h.GetByExternalID)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", admin, h.DeleteUser)
		users.GET("/:id/profile", h.Profile)
		users.GET("/:id/leaderboard", h.LeaderboardPosition)
		users.GET("/:id/best-scores", h.BestScores)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := pageQuery(c, 20)
	if err != nil {
		c.Error(err)
		return
	}
	users, pagination, err := h.Service.ListUsers(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		c.Error(err)
		return
	}
	respondPage(c, users, pagination)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.Service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *UserHandler) GetByExternalID(c *gin.Context) {
	user, err := h.Service.GetByExternalID(c.Request.Context(), c.Param("externalId"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var user models.User
	if err := bindJSON(c, &user); err != nil {
		c.Error(err)
		return
	}
	if err := h.Service.CreateUser(c.Request.Context(), &user); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var patch map[string]interface{}
	if err := bindJSON(c, &patch); err != nil {
		c.Error(err)
		return
	}
	user, err := h.Service.UpdateUser(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.Service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "User and associated data deleted successfully", nil)
}

func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.Service.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, profile)
}

func (h *UserHandler) LeaderboardPosition(c *gin.Context) {
	position, err := h.Service.LeaderboardPosition(c.Request.Context(), c.Param("id"), c.DefaultQuery("period", "all"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, position)
}

func (h *UserHandler) BestScores(c *gin.Context) {
	scores, err := h.Sessions.BestScores(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, scores)
}
