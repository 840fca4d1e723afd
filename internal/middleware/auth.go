package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"arena/internal/config"
	"arena/internal/models"
	"arena/internal/service"
	"arena/internal/utils"
)

// Clés de contexte gin
const (
	ContextAgent   = "agent"
	ContextOwnerID = "owner_id"
)

// cacheEntry snapshot d'agent résolu, avec expiration
type cacheEntry struct {
	agent     *models.Agent
	expiresAt time.Time
}

// AuthCache cache TTL de résolution credential -> agent. Le TTL est court:
// les stats d'agent peuvent être légèrement périmées, jamais l'identité.
type AuthCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	maxSize int
	ttl     time.Duration
}

// NewAuthCache crée un cache d'authentification borné
func NewAuthCache(cfg *config.AuthConfig) *AuthCache {
	return &AuthCache{
		entries: make(map[string]cacheEntry),
		maxSize: cfg.CacheSize,
		ttl:     cfg.CacheTTL,
	}
}

// get retourne l'agent caché pour un digest, nil si absent ou expiré
func (c *AuthCache) get(digest string) *models.Agent {
	c.mu.RLock()
	entry, ok := c.entries[digest]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.agent
}

// put insère un agent résolu; un cache plein est vidé d'un bloc
func (c *AuthCache) put(digest string, agent *models.Agent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.entries = make(map[string]cacheEntry)
	}
	c.entries[digest] = cacheEntry{agent: agent, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate retire toutes les entrées d'un agent (rotation de webhook,
// changement de statut)
func (c *AuthCache) Invalidate(agentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for digest, entry := range c.entries {
		if entry.agent.ID.String() == agentID {
			delete(c.entries, digest)
		}
	}
}

// APIKeyAuth authentifie les agents par leur clé API Bearer
func APIKeyAuth(agentService service.AgentServiceInterface, cache *AuthCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		digest := utils.HashAPIKey(apiKey)
		if agent := cache.get(digest); agent != nil {
			c.Set(ContextAgent, agent)
			c.Next()
			return
		}

		agent, err := agentService.Authenticate(apiKey)
		if err != nil {
			ae := models.AsArenaError(err)

			logrus.WithFields(logrus.Fields{
				"ip":         c.ClientIP(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(ContextRequestID),
			}).Warn("API key authentication failed")

			c.JSON(ae.Status, models.ErrorResponse{
				Error:     ae.Message,
				Code:      ae.Code,
				RequestID: c.GetString(ContextRequestID),
			})
			c.Abort()
			return
		}

		cache.put(digest, agent)
		c.Set(ContextAgent, agent)
		c.Next()
	}
}

// OptionalAPIKeyAuth résout l'agent si un Bearer est présenté, mais laisse
// passer les requêtes anonymes. Un credential fourni et invalide reste
// refusé: anonyme et mal authentifié sont deux choses différentes.
func OptionalAPIKeyAuth(agentService service.AgentServiceInterface, cache *AuthCache) gin.HandlerFunc {
	authenticated := APIKeyAuth(agentService, cache)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authenticated(c)
	}
}

// OwnerClaims claims des sessions propriétaires (humains)
type OwnerClaims struct {
	OwnerID string `json:"owner_id"`
	jwt.RegisteredClaims
}

// OwnerAuth authentifie les propriétaires humains par JWT. Les tokens sont
// émis par la plateforme amont; ce service ne fait que les valider.
func OwnerAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		claims := &OwnerClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid || claims.OwnerID == "" {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextOwnerID, claims.OwnerID)
		c.Next()
	}
}

// GetAgent extrait l'agent authentifié du contexte
func GetAgent(c *gin.Context) *models.Agent {
	value, ok := c.Get(ContextAgent)
	if !ok {
		return nil
	}
	agent, _ := value.(*models.Agent)
	return agent
}

// bearerToken extrait le token Bearer de l'en-tête Authorization
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// abortUnauthorized répond 401 avec la forme d'erreur wire
func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:     message,
		Code:      models.CodeUnauthorized,
		RequestID: c.GetString(ContextRequestID),
	})
	c.Abort()
}
