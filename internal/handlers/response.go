package handlers

import (
	"net/http"
	"strconv"

	"iqscalar-service/internal/apperror"
	"iqscalar-service/internal/models"
	"iqscalar-service/internal/service"

	"github.com/gin-gonic/gin"
)

const maxPageLimit = 100

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondMessage(c *gin.Context, message string, data interface{}) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func respondPage(c *gin.Context, data interface{}, p models.Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": p})
}

func respondCount(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": count})
}

// intQuery reads an optional integer query parameter that must be at least min.
func intQuery(c *gin.Context, key string, def, min int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, apperror.Validation("%s must be an integer of at least %d", key, min)
	}
	return n, nil
}

func pageQuery(c *gin.Context, defaultLimit int) (models.Page, error) {
	page, err := intQuery(c, "page", 1, 1)
	if err != nil {
		return models.Page{}, err
	}
	limit, err := intQuery(c, "limit", defaultLimit, 1)
	if err != nil {
		return models.Page{}, err
	}
	if limit > maxPageLimit {
		return models.Page{}, apperror.Validation("limit must not exceed %d", maxPageLimit)
	}
	return models.Page{Number: page, Limit: limit}, nil
}

// boolQuery returns nil when the parameter is absent or not a boolean.
func boolQuery(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.Validation("invalid request body: %s", err.Error())
	}
	return nil
}

func clientInfo(c *gin.Context) service.ClientInfo {
	return service.ClientInfo{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
