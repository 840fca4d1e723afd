package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"arena/internal/models"
)

// Recovery convertit les panics en 500 avec la forme d'erreur wire
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithFields(logrus.Fields{
					"panic":      r,
					"path":       c.Request.URL.Path,
					"request_id": c.GetString(ContextRequestID),
					"stack":      string(debug.Stack()),
				}).Error("Panic recovered")

				c.JSON(http.StatusInternalServerError, models.ErrorResponse{
					Error:     "an unexpected error occurred",
					Code:      models.CodeInternal,
					RequestID: c.GetString(ContextRequestID),
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
