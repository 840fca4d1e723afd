package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"arena/internal/catalog"
	"arena/internal/config"
	"arena/internal/models"
	"arena/internal/monitoring"
	"arena/internal/repository"
	"arena/internal/utils"
	"arena/internal/webhook"
)

// Somme imposée des six stats de base
const baseStatsBudget = 100

// AgentServiceInterface définit les méthodes du service agent
type AgentServiceInterface interface {
	Register(req *models.RegisterAgentRequest) (*models.RegisterAgentResponse, error)
	Connect(req *models.ConnectAgentRequest) (*models.RegisterAgentResponse, error)
	GetByID(id uuid.UUID) (*models.Agent, error)
	Authenticate(apiKey string) (*models.Agent, error)
	UpdateWebhook(agent *models.Agent, req *models.UpdateWebhookRequest) error
	Leaderboard(req *models.LeaderboardRequest) ([]models.LeaderboardEntry, error)
}

// AgentService implémente l'interface AgentServiceInterface
type AgentService struct {
	agentRepo  repository.AgentRepositoryInterface
	dispatcher webhook.DispatcherInterface
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewAgentService crée une nouvelle instance du service agent
func NewAgentService(
	agentRepo repository.AgentRepositoryInterface,
	dispatcher webhook.DispatcherInterface,
	cfg *config.Config,
	metrics *monitoring.Metrics,
) AgentServiceInterface {
	return &AgentService{
		agentRepo:  agentRepo,
		dispatcher: dispatcher,
		config:     cfg,
		metrics:    metrics,
	}
}

// Register crée un agent et retourne son credential en clair, une seule fois
func (s *AgentService) Register(req *models.RegisterAgentRequest) (*models.RegisterAgentResponse, error) {
	return s.create(req, nil)
}

// Connect crée une identité bot liée à un propriétaire externe
func (s *AgentService) Connect(req *models.ConnectAgentRequest) (*models.RegisterAgentResponse, error) {
	var ownerID *string
	if req.OwnerID != "" {
		ownerID = &req.OwnerID
	}
	return s.create(&req.RegisterAgentRequest, ownerID)
}

// create validation, émission des credentials puis insertion
func (s *AgentService) create(req *models.RegisterAgentRequest, ownerID *string) (*models.RegisterAgentResponse, error) {
	if err := s.validateBuild(req); err != nil {
		return nil, err
	}

	existing, err := s.agentRepo.GetByName(req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check name availability: %w", err)
	}
	if existing != nil {
		return nil, models.ErrConflict(models.CodeNameTaken, "agent name is already taken")
	}

	apiKey, err := utils.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to issue credentials: %w", err)
	}

	playMode := models.PlayModeAuto
	if req.PlayMode == string(models.PlayModeManual) {
		playMode = models.PlayModeManual
	}

	webhookSecret := req.WebhookSecret
	if req.WebhookURL != "" && webhookSecret == "" {
		webhookSecret, err = utils.SecureToken(32)
		if err != nil {
			return nil, fmt.Errorf("failed to issue webhook secret: %w", err)
		}
	}

	now := time.Now()
	agent := &models.Agent{
		ID:            uuid.New(),
		Name:          req.Name,
		APIKeyHash:    utils.HashAPIKey(apiKey),
		OwnerID:       ownerID,
		WebhookURL:    req.WebhookURL,
		WebhookSecret: webhookSecret,
		ElementalType: req.ElementalType,
		BaseHP:        req.BaseStats.HP,
		BaseAttack:    req.BaseStats.Attack,
		BaseDefense:   req.BaseStats.Defense,
		BaseSpAtk:     req.BaseStats.SpAtk,
		BaseSpDef:     req.BaseStats.SpDef,
		BaseSpeed:     req.BaseStats.Speed,
		Nature:        req.Nature,
		Ability:       req.Ability,
		Move1:         req.Moves[0],
		Move2:         req.Moves[1],
		Move3:         req.Moves[2],
		Move4:         req.Moves[3],
		Level:         1,
		XP:            0,
		Elo:           1000,
		Status:        models.AgentActive,
		PlayMode:      playMode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.agentRepo.Create(agent); err != nil {
		return nil, fmt.Errorf("failed to register agent: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AgentsRegistered.Inc()
	}

	logrus.WithFields(logrus.Fields{
		"agent_id": agent.ID,
		"name":     agent.Name,
		"type":     agent.ElementalType,
	}).Info("Agent registered")

	return &models.RegisterAgentResponse{
		Agent:  agent.PublicView(),
		APIKey: apiKey,
	}, nil
}

// GetByID récupère un agent; erreur typée si inconnu
func (s *AgentService) GetByID(id uuid.UUID) (*models.Agent, error) {
	agent, err := s.agentRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	if agent == nil {
		return nil, models.ErrNotFound("agent not found")
	}
	return agent, nil
}

// Authenticate résout une clé API en agent via son digest
func (s *AgentService) Authenticate(apiKey string) (*models.Agent, error) {
	if apiKey == "" {
		return nil, models.ErrUnauthorized("missing api key")
	}

	agent, err := s.agentRepo.GetByAPIKeyHash(utils.HashAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate agent: %w", err)
	}
	if agent == nil {
		return nil, models.ErrUnauthorized("invalid api key")
	}
	if agent.Status == models.AgentBanned {
		return nil, models.ErrForbidden("agent is banned")
	}
	if !agent.IsActive() {
		return nil, models.ErrUnauthorized("agent is inactive")
	}

	return agent, nil
}

// UpdateWebhook remplace l'endpoint webhook d'un agent puis envoie un ping
// signé avec le nouveau secret
func (s *AgentService) UpdateWebhook(agent *models.Agent, req *models.UpdateWebhookRequest) error {
	if err := utils.ValidateWebhookURL(req.WebhookURL, s.config.Server.IsProduction()); err != nil {
		return models.ErrValidation(err.Error())
	}

	if err := s.agentRepo.UpdateWebhook(agent.ID, req.WebhookURL, req.WebhookSecret); err != nil {
		return fmt.Errorf("failed to rotate webhook: %w", err)
	}

	logrus.WithField("agent_id", agent.ID).Info("Webhook endpoint rotated")

	s.dispatcher.Enqueue(req.WebhookURL, req.WebhookSecret, &models.WebhookPayload{
		Event:     models.WebhookPing,
		Timestamp: time.Now(),
	})

	return nil
}

// Leaderboard retourne le classement ELO paginé
func (s *AgentService) Leaderboard(req *models.LeaderboardRequest) ([]models.LeaderboardEntry, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	agents, err := s.agentRepo.Leaderboard(limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(agents))
	for i, agent := range agents {
		if req.Type != "" && agent.ElementalType != req.Type {
			continue
		}
		if req.MinElo > 0 && agent.Elo < req.MinElo {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			Rank:  req.Offset + i + 1,
			Agent: agent.PublicView(),
		})
	}

	return entries, nil
}

// validateBuild vérifie la cohérence d'un build d'agent contre le catalogue
func (s *AgentService) validateBuild(req *models.RegisterAgentRequest) error {
	if !catalog.IsValidType(req.ElementalType) {
		return models.ErrValidation(fmt.Sprintf("unknown elemental type %q", req.ElementalType))
	}

	if req.BaseStats.Sum() != baseStatsBudget {
		return models.ErrValidation(fmt.Sprintf("base stats must sum to %d, got %d", baseStatsBudget, req.BaseStats.Sum()))
	}

	if _, ok := catalog.GetNature(req.Nature); !ok {
		return models.ErrValidation(fmt.Sprintf("unknown nature %q", req.Nature))
	}

	if !catalog.IsAbilityInPool(req.ElementalType, req.Ability) {
		return models.ErrValidation(fmt.Sprintf("ability %q is not available to type %s", req.Ability, req.ElementalType))
	}

	seen := make(map[string]bool, len(req.Moves))
	for _, moveID := range req.Moves {
		if seen[moveID] {
			return models.ErrValidation(fmt.Sprintf("duplicate move %q", moveID))
		}
		seen[moveID] = true

		if !catalog.IsMoveInPool(req.ElementalType, moveID) {
			return models.ErrValidation(fmt.Sprintf("move %q is not available to type %s", moveID, req.ElementalType))
		}
	}

	if req.WebhookURL != "" {
		if err := utils.ValidateWebhookURL(req.WebhookURL, s.config.Server.IsProduction()); err != nil {
			return models.ErrValidation(err.Error())
		}
	}

	return nil
}
