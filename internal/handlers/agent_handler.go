package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arena/internal/config"
	"arena/internal/middleware"
	"arena/internal/models"
	"arena/internal/service"
)

// AgentHandler gère les requêtes HTTP liées aux agents
type AgentHandler struct {
	agentService service.AgentServiceInterface
	authCache    *middleware.AuthCache
	config       *config.Config
}

// NewAgentHandler crée un nouveau handler d'agents
func NewAgentHandler(agentService service.AgentServiceInterface, authCache *middleware.AuthCache, cfg *config.Config) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
		authCache:    authCache,
		config:       cfg,
	}
}

// Register crée un agent; la clé API n'est retournée qu'ici
func (h *AgentHandler) Register(c *gin.Context) {
	var req models.RegisterAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	resp, err := h.agentService.Register(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Connect crée une identité bot liée au propriétaire de la session
func (h *AgentHandler) Connect(c *gin.Context) {
	var req models.ConnectAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	// L'owner de la session JWT prime sur celui du corps
	if ownerID := c.GetString(middleware.ContextOwnerID); ownerID != "" {
		req.OwnerID = ownerID
	}

	resp, err := h.agentService.Connect(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Me retourne le profil de l'agent authentifié
func (h *AgentHandler) Me(c *gin.Context) {
	agent := middleware.GetAgent(c)
	c.JSON(http.StatusOK, agent.PublicView())
}

// UpdateWebhook fait tourner l'endpoint webhook de l'agent authentifié
func (h *AgentHandler) UpdateWebhook(c *gin.Context) {
	agent := middleware.GetAgent(c)

	var req models.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.agentService.UpdateWebhook(agent, &req); err != nil {
		respondError(c, err)
		return
	}

	// Le snapshot caché porte l'ancien secret
	h.authCache.Invalidate(agent.ID.String())

	c.JSON(http.StatusOK, gin.H{"status": "webhook_updated"})
}

// Leaderboard retourne le classement ELO
func (h *AgentHandler) Leaderboard(c *gin.Context) {
	var req models.LeaderboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidation(c, err)
		return
	}

	entries, err := h.agentService.Leaderboard(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// GetAgent retourne la vue publique d'un agent par id
func (h *AgentHandler) GetAgent(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		respondValidation(c, err)
		return
	}

	agent, err := h.agentService.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, agent.PublicView())
}
