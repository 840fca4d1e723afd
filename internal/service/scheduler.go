package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"arena/internal/config"
	"arena/internal/monitoring"
	"arena/internal/repository"
)

// SchedulerServiceInterface définit les méthodes du scheduler de timeouts
type SchedulerServiceInterface interface {
	Sweep() error
	StartTimeoutRoutine(stop <-chan struct{})
}

// SchedulerService balaye périodiquement les combats dont le tour a expiré,
// les défis jamais acceptés et les tokens sociaux périmés
type SchedulerService struct {
	battleRepo    repository.BattleRepositoryInterface
	tokenRepo     repository.TokenRepositoryInterface
	battleService BattleServiceInterface
	config        *config.Config
	metrics       *monitoring.Metrics
}

// NewSchedulerService crée une nouvelle instance du scheduler
func NewSchedulerService(
	battleRepo repository.BattleRepositoryInterface,
	tokenRepo repository.TokenRepositoryInterface,
	battleService BattleServiceInterface,
	cfg *config.Config,
	metrics *monitoring.Metrics,
) SchedulerServiceInterface {
	return &SchedulerService{
		battleRepo:    battleRepo,
		tokenRepo:     tokenRepo,
		battleService: battleService,
		config:        cfg,
		metrics:       metrics,
	}
}

// Sweep un passage complet: tours expirés, défis périmés, tokens expirés
func (s *SchedulerService) Sweep() error {
	now := time.Now()

	if s.metrics != nil {
		s.metrics.SchedulerSweeps.Inc()
	}

	// Tours expirés: résolution forcée avec skip des côtés muets
	stale, err := s.battleRepo.FindStale(now.Add(-s.config.Battle.TurnTimeout))
	if err != nil {
		return err
	}
	for _, battle := range stale {
		if err := s.battleService.ForceResolve(battle.ID); err != nil {
			logrus.WithError(err).WithField("battle_id", battle.ID).Error("Failed to force-resolve stale battle")
		}
	}

	// Défis jamais acceptés
	expired, err := s.battleRepo.FindExpiredChallenges(now.Add(-s.config.Battle.ChallengeExpiry))
	if err != nil {
		return err
	}
	for _, battle := range expired {
		if err := s.battleRepo.Cancel(battle.ID); err != nil {
			logrus.WithError(err).WithField("battle_id", battle.ID).Error("Failed to cancel expired challenge")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"battle_id":     battle.ID,
			"battle_number": battle.BattleNumber,
		}).Info("Expired challenge cancelled")
	}

	// Tokens sociaux périmés
	deleted, err := s.tokenRepo.DeleteExpired(now)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logrus.WithField("count", deleted).Debug("Expired social tokens purged")
	}

	return nil
}

// StartTimeoutRoutine lance le balayage périodique jusqu'au stop
func (s *SchedulerService) StartTimeoutRoutine(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(s.config.Battle.SchedulerTick)
		defer ticker.Stop()

		logrus.WithFields(logrus.Fields{
			"tick":         s.config.Battle.SchedulerTick,
			"turn_timeout": s.config.Battle.TurnTimeout,
		}).Info("Timeout scheduler started")

		for {
			select {
			case <-ticker.C:
				if err := s.Sweep(); err != nil {
					logrus.WithError(err).Error("Scheduler sweep failed")
				}
			case <-stop:
				logrus.Info("Timeout scheduler stopped")
				return
			}
		}
	}()
}
