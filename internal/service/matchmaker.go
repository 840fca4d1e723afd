package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"arena/internal/config"
	"arena/internal/database"
	"arena/internal/models"
	"arena/internal/monitoring"
	"arena/internal/repository"
)

// MatchmakerServiceInterface définit les méthodes du service de matchmaking
type MatchmakerServiceInterface interface {
	JoinQueue(agent *models.Agent) error
	LeaveQueue(agent *models.Agent) (bool, error)
	Drain() error
	StartMatchmakingRoutine(stop <-chan struct{})
}

// matchedPair résultat d'un appariement, notifié après commit
type matchedPair struct {
	battle *models.Battle
	agentA *models.Agent
	agentB *models.Agent
}

// MatchmakerService implémente l'interface MatchmakerServiceInterface
type MatchmakerService struct {
	db            *database.DB
	queueRepo     repository.QueueRepositoryInterface
	agentRepo     repository.AgentRepositoryInterface
	battleRepo    repository.BattleRepositoryInterface
	battleService BattleServiceInterface
	config        *config.Config
	metrics       *monitoring.Metrics
}

// NewMatchmakerService crée une nouvelle instance du service de matchmaking
func NewMatchmakerService(
	db *database.DB,
	queueRepo repository.QueueRepositoryInterface,
	agentRepo repository.AgentRepositoryInterface,
	battleRepo repository.BattleRepositoryInterface,
	battleService BattleServiceInterface,
	cfg *config.Config,
	metrics *monitoring.Metrics,
) MatchmakerServiceInterface {
	return &MatchmakerService{
		db:            db,
		queueRepo:     queueRepo,
		agentRepo:     agentRepo,
		battleRepo:    battleRepo,
		battleService: battleService,
		config:        cfg,
		metrics:       metrics,
	}
}

// JoinQueue ajoute un agent à la file de matchmaking
func (s *MatchmakerService) JoinQueue(agent *models.Agent) error {
	if !agent.IsActive() {
		return models.ErrConflict(models.CodeInvalidState, "agent cannot battle")
	}

	ongoing, err := s.battleRepo.FindOngoingByAgent(agent.ID)
	if err != nil {
		return fmt.Errorf("failed to check ongoing battles: %w", err)
	}
	if ongoing != nil {
		return models.ErrConflict(models.CodeAlreadyInBattle, "agent is already in a battle")
	}

	if err := s.queueRepo.Join(agent.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyQueued) {
			return models.ErrConflict(models.CodeAlreadyQueued, "agent is already in the queue")
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"agent_id": agent.ID,
		"elo":      agent.Elo,
	}).Info("Agent joined matchmaking queue")

	// Tentative d'appariement immédiate, sans attendre le tick périodique.
	// L'entrée en file a réussi: un échec de drain n'est pas remonté.
	if err := s.Drain(); err != nil {
		logrus.WithError(err).Error("Matchmaking drain failed after join")
	}

	return nil
}

// LeaveQueue retire un agent de la file; retourne false s'il n'y était pas
func (s *MatchmakerService) LeaveQueue(agent *models.Agent) (bool, error) {
	removed, err := s.queueRepo.Leave(agent.ID)
	if err != nil {
		return false, err
	}

	if removed {
		logrus.WithField("agent_id", agent.ID).Info("Agent left matchmaking queue")
	}

	return removed, nil
}

// Drain apparie les agents en file et démarre leurs combats. Les fenêtres
// ELO configurées sont essayées dans l'ordre, de la plus serrée à la plus
// large (0 = illimitée); dans chaque fenêtre l'appariement est glouton par
// ancienneté: chaque agent prend le plus ancien adversaire compatible encore
// libre. Les entrées déjà engagées dans un combat sont purgées de la file.
func (s *MatchmakerService) Drain() error {
	var pairs []matchedPair

	err := s.db.WithTx(func(tx *sqlx.Tx) error {
		entries, err := s.queueRepo.ListTx(tx)
		if err != nil {
			return err
		}

		eligible := make([]*models.QueuedAgent, 0, len(entries))
		for _, entry := range entries {
			ongoing, err := s.battleRepo.FindOngoingByAgentTx(tx, entry.AgentID)
			if err != nil {
				return err
			}
			if ongoing != nil {
				// Un défi accepté entre-temps: l'entrée est périmée
				if err := s.queueRepo.RemoveTx(tx, entry.AgentID); err != nil {
					return err
				}
				logrus.WithField("agent_id", entry.AgentID).Warn("Queued agent already in battle, entry dropped")
				continue
			}
			eligible = append(eligible, entry)
		}
		if len(eligible) < 2 {
			return nil
		}

		matched := make(map[uuid.UUID]bool, len(eligible))

		for _, window := range s.config.Matchmaking.EloWindows {
			for i := range eligible {
				if matched[eligible[i].AgentID] {
					continue
				}
				for j := i + 1; j < len(eligible); j++ {
					if matched[eligible[j].AgentID] {
						continue
					}
					if !withinWindow(eligible[i].Elo, eligible[j].Elo, window) {
						continue
					}

					agentA, err := s.agentRepo.GetByIDTx(tx, eligible[i].AgentID)
					if err != nil {
						return err
					}
					agentB, err := s.agentRepo.GetByIDTx(tx, eligible[j].AgentID)
					if err != nil {
						return err
					}
					if agentA == nil || agentB == nil {
						continue
					}

					battle, err := s.battleService.StartMatchedTx(tx, agentA, agentB)
					if err != nil {
						return err
					}

					if err := s.queueRepo.RemoveTx(tx, agentA.ID, agentB.ID); err != nil {
						return err
					}

					matched[agentA.ID] = true
					matched[agentB.ID] = true
					pairs = append(pairs, matchedPair{battle: battle, agentA: agentA, agentB: agentB})
					break
				}
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, pair := range pairs {
		logrus.WithFields(logrus.Fields{
			"battle_id":     pair.battle.ID,
			"battle_number": pair.battle.BattleNumber,
			"agent_a":       pair.agentA.ID,
			"agent_b":       pair.agentB.ID,
		}).Info("Matchmaking pairing created")

		if s.metrics != nil {
			s.metrics.MatchmakingPairs.Inc()
		}

		s.battleService.NotifyBattleStart(pair.battle, pair.agentA, pair.agentB)
	}

	if s.metrics != nil {
		if size, err := s.queueRepo.Size(); err == nil {
			s.metrics.QueueSize.Set(float64(size))
		}
	}

	return nil
}

// withinWindow compatibilité ELO de deux entrées pour une fenêtre donnée
// (0 = illimitée)
func withinWindow(eloA, eloB, window int) bool {
	if window == 0 {
		return true
	}
	gap := eloA - eloB
	if gap < 0 {
		gap = -gap
	}
	return gap <= window
}

// StartMatchmakingRoutine draine la file périodiquement jusqu'au stop
func (s *MatchmakerService) StartMatchmakingRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(s.config.Matchmaking.DrainInterval)
		defer ticker.Stop()

		logrus.WithField("interval", s.config.Matchmaking.DrainInterval).Info("Matchmaking routine started")

		for {
			select {
			case <-ticker.C:
				if err := s.Drain(); err != nil {
					logrus.WithError(err).Error("Matchmaking drain failed")
				}
			case <-stop:
				logrus.Info("Matchmaking routine stopped")
				return
			}
		}
	}()
}
