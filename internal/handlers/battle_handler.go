package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"arena/internal/config"
	"arena/internal/middleware"
	"arena/internal/models"
	"arena/internal/service"
)

// BattleHandler gère les requêtes HTTP liées aux combats et à la file
type BattleHandler struct {
	battleService service.BattleServiceInterface
	matchmaker    service.MatchmakerServiceInterface
	config        *config.Config
}

// NewBattleHandler crée un nouveau handler de combats
func NewBattleHandler(
	battleService service.BattleServiceInterface,
	matchmaker service.MatchmakerServiceInterface,
	cfg *config.Config,
) *BattleHandler {
	return &BattleHandler{
		battleService: battleService,
		matchmaker:    matchmaker,
		config:        cfg,
	}
}

// JoinQueue entre dans la file de matchmaking
func (h *BattleHandler) JoinQueue(c *gin.Context) {
	agent := middleware.GetAgent(c)

	if err := h.matchmaker.JoinQueue(agent); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "queued"})
}

// LeaveQueue sort de la file de matchmaking
func (h *BattleHandler) LeaveQueue(c *gin.Context) {
	agent := middleware.GetAgent(c)

	removed, err := h.matchmaker.LeaveQueue(agent)
	if err != nil {
		respondError(c, err)
		return
	}
	if !removed {
		respondError(c, models.ErrNotFound("agent is not in the queue"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "left_queue"})
}

// Challenge défie directement un autre agent
func (h *BattleHandler) Challenge(c *gin.Context) {
	agent := middleware.GetAgent(c)

	var req models.ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		respondValidation(c, fmt.Errorf("invalid target id"))
		return
	}

	view, err := h.battleService.Challenge(agent, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// Accept accepte un défi en attente
func (h *BattleHandler) Accept(c *gin.Context) {
	agent := middleware.GetAgent(c)

	battleID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondValidation(c, err)
		return
	}

	resp, err := h.battleService.Accept(agent, battleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ChooseMove soumet le move du tour courant
func (h *BattleHandler) ChooseMove(c *gin.Context) {
	agent := middleware.GetAgent(c)

	battleID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondValidation(c, err)
		return
	}

	var req models.ChooseMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	view, err := h.battleService.SubmitMove(agent, battleID, req.MoveID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Surrender abandonne le combat en cours
func (h *BattleHandler) Surrender(c *gin.Context) {
	agent := middleware.GetAgent(c)

	battleID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondValidation(c, err)
		return
	}

	view, err := h.battleService.Surrender(agent, battleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetActive retourne le combat en cours de l'agent authentifié
func (h *BattleHandler) GetActive(c *gin.Context) {
	agent := middleware.GetAgent(c)

	view, err := h.battleService.GetActive(agent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetBattle retourne la vue d'un combat
func (h *BattleHandler) GetBattle(c *gin.Context) {
	agent := middleware.GetAgent(c)

	battleID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondValidation(c, err)
		return
	}

	view, err := h.battleService.GetView(battleID, agent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetTurns retourne le log de tours d'un combat
func (h *BattleHandler) GetTurns(c *gin.Context) {
	battleID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondValidation(c, err)
		return
	}

	turns, err := h.battleService.Turns(battleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"turns": turns})
}

// History retourne les combats terminés de l'agent authentifié
func (h *BattleHandler) History(c *gin.Context) {
	agent := middleware.GetAgent(c)

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	views, err := h.battleService.History(agent, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"battles": views})
}

// parseUUIDParam parse un paramètre de chemin UUID
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s parameter", name)
	}
	return id, nil
}
