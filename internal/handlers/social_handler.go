package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arena/internal/models"
	"arena/internal/repository"
)

// SocialHandler expose la consommation des tokens sociaux one-shot émis
// en fin de combat (collaborateur social externe)
type SocialHandler struct {
	tokenRepo repository.TokenRepositoryInterface
}

// NewSocialHandler crée un nouveau handler de tokens sociaux
func NewSocialHandler(tokenRepo repository.TokenRepositoryInterface) *SocialHandler {
	return &SocialHandler{tokenRepo: tokenRepo}
}

// consumeTokenRequest corps de consommation d'un token
type consumeTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Consume consomme un token one-shot; un token inconnu, expiré ou déjà
// consommé répond 404 sans distinction
func (h *SocialHandler) Consume(c *gin.Context) {
	var req consumeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	token, err := h.tokenRepo.Consume(req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	if token == nil {
		respondError(c, models.ErrNotFound("token is not valid"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agentId":  token.AgentID,
		"battleId": token.BattleID,
	})
}
