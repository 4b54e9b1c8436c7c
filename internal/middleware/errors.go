package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"iqscalar-service/internal/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns the last error a handler attached with c.Error into the
// JSON error envelope. Server errors keep their message; the stack is only
// added in development.
func ErrorHandler(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.Status(err)

		body := gin.H{"success": false, "message": err.Error()}
		if status >= http.StatusInternalServerError {
			log.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
			if development {
				body["stack"] = string(debug.Stack())
			}
		}
		c.JSON(status, body)
	}
}

// Recovery answers 500 when a handler panics.
func Recovery(development bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("Panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		body := gin.H{"success": false, "message": fmt.Sprint(recovered)}
		if development {
			body["stack"] = string(debug.Stack())
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": fmt.Sprintf("Route %s not found", c.Request.URL.Path),
	})
}
