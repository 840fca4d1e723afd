package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"arena/internal/models"
)

// Timeout borne la durée d'une requête via le contexte. Les handlers qui
// respectent le contexte échouent proprement; la réponse est traduite en
// 408 si le deadline est la cause
func Timeout(limit time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), limit)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.JSON(http.StatusRequestTimeout, models.ErrorResponse{
				Error:     "request timed out",
				Code:      models.CodeRequestTimeout,
				RequestID: c.GetString(ContextRequestID),
			})
			c.Abort()
		}
	}
}
