package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextRequestID clé de contexte du request id
const ContextRequestID = "request_id"

// HeaderRequestID en-tête de corrélation
const HeaderRequestID = "X-Request-ID"

// RequestID attache un identifiant de corrélation à chaque requête; celui
// du client est réutilisé s'il en fournit un
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(ContextRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}
