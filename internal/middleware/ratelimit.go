package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"arena/internal/config"
	"arena/internal/models"
)

// RateLimiter limiteur par client basé sur des token buckets
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
	cleanup  time.Duration
}

// NewRateLimiter crée un limiteur par client et démarre son nettoyage
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:    cfg.BurstSize,
		cleanup:  cfg.CleanupInterval,
	}

	go rl.cleanupRoutine()

	return rl
}

// limiterFor retourne le limiteur d'un client, créé au besoin
func (rl *RateLimiter) limiterFor(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[clientID]
	if !ok {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[clientID] = limiter
	}

	return limiter
}

// cleanupRoutine purge périodiquement les limiteurs inactifs
func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		// Supprimer les limiters qui ont tous leurs tokens (inactifs)
		for key, limiter := range rl.limiters {
			if limiter.Tokens() >= float64(rl.burst) {
				delete(rl.limiters, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware applique la limite par client; l'agent authentifié est
// limité par identité, les anonymes par IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.ClientIP()
		if agent := GetAgent(c); agent != nil {
			clientID = agent.ID.String()
		}

		if !rl.limiterFor(clientID).Allow() {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:     "rate limit exceeded",
				Code:      models.CodeRateLimited,
				RequestID: c.GetString(ContextRequestID),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
