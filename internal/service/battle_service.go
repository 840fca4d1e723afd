package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"arena/internal/config"
	"arena/internal/database"
	"arena/internal/engine"
	"arena/internal/models"
	"arena/internal/monitoring"
	"arena/internal/repository"
	"arena/internal/webhook"
)

// Raisons de fin de combat sur le wire
const (
	EndReasonKnockout    = "knockout"
	EndReasonForfeit     = "forfeit"
	EndReasonTimeout     = "timeout"
	EndReasonSurrendered = "opponent_surrendered"
)

// BattleServiceInterface définit les méthodes du service battle
type BattleServiceInterface interface {
	Challenge(challenger *models.Agent, targetID uuid.UUID) (*models.BattleView, error)
	Accept(agent *models.Agent, battleID uuid.UUID) (*models.AcceptChallengeResponse, error)
	SubmitMove(agent *models.Agent, battleID uuid.UUID, moveID string) (*models.BattleView, error)
	Surrender(agent *models.Agent, battleID uuid.UUID) (*models.BattleView, error)
	GetActive(agent *models.Agent) (*models.BattleView, error)
	GetView(battleID uuid.UUID, viewer *models.Agent) (*models.BattleView, error)
	History(agent *models.Agent, limit int) ([]*models.BattleView, error)
	Turns(battleID uuid.UUID) ([]models.TurnLogView, error)

	// Utilisé par le matchmaker dans sa transaction d'appariement
	StartMatchedTx(tx *sqlx.Tx, agentA, agentB *models.Agent) (*models.Battle, error)
	NotifyBattleStart(battle *models.Battle, agentA, agentB *models.Agent)

	// Utilisé par le scheduler de timeouts
	ForceResolve(battleID uuid.UUID) error
}

// BattleService implémente l'interface BattleServiceInterface
type BattleService struct {
	db         *database.DB
	battleRepo repository.BattleRepositoryInterface
	agentRepo  repository.AgentRepositoryInterface
	queueRepo  repository.QueueRepositoryInterface
	tokenRepo  repository.TokenRepositoryInterface
	dispatcher webhook.DispatcherInterface
	config     *config.Config
	metrics    *monitoring.Metrics
	rng        engine.RNG
}

// NewBattleService crée une nouvelle instance du service battle
func NewBattleService(
	db *database.DB,
	battleRepo repository.BattleRepositoryInterface,
	agentRepo repository.AgentRepositoryInterface,
	queueRepo repository.QueueRepositoryInterface,
	tokenRepo repository.TokenRepositoryInterface,
	dispatcher webhook.DispatcherInterface,
	cfg *config.Config,
	metrics *monitoring.Metrics,
	rng engine.RNG,
) BattleServiceInterface {
	return &BattleService{
		db:         db,
		battleRepo: battleRepo,
		agentRepo:  agentRepo,
		queueRepo:  queueRepo,
		tokenRepo:  tokenRepo,
		dispatcher: dispatcher,
		config:     cfg,
		metrics:    metrics,
		rng:        rng,
	}
}

// battleEnd notifications différées après commit de la transaction
type battleEnd struct {
	battle     *models.Battle
	state      *models.BattleState
	winnerSide string
	reason     string
	notifyOnly string                   // si non vide, seul ce côté reçoit battle_end
	outcomes   map[string]battleOutcome // par côté
	tokens     map[string]string        // par côté
	upset      bool
}

// Challenge émet un défi direct vers un autre agent
func (s *BattleService) Challenge(challenger *models.Agent, targetID uuid.UUID) (*models.BattleView, error) {
	if challenger.ID == targetID {
		return nil, models.ErrValidation("an agent cannot challenge itself")
	}

	target, err := s.agentRepo.GetByID(targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge target: %w", err)
	}
	if target == nil {
		return nil, models.ErrNotFound("target agent not found")
	}
	if !target.IsActive() {
		return nil, models.ErrConflict(models.CodeInvalidState, "target agent cannot battle")
	}

	// Un participant par combat: ni combat en cours, ni place dans la file
	// de matchmaking (le matchmaker pourrait l'apparier en parallèle)
	for _, agentID := range []uuid.UUID{challenger.ID, targetID} {
		ongoing, err := s.battleRepo.FindOngoingByAgent(agentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check ongoing battles: %w", err)
		}
		if ongoing != nil {
			return nil, models.ErrConflict(models.CodeAlreadyInBattle, "agent is already in a battle")
		}

		queued, err := s.queueRepo.Contains(agentID)
		if err != nil {
			return nil, fmt.Errorf("failed to check queue membership: %w", err)
		}
		if queued {
			return nil, models.ErrConflict(models.CodeAlreadyQueued, "agent is waiting in the matchmaking queue")
		}
	}

	battle := &models.Battle{
		ID:           uuid.New(),
		AgentAID:     challenger.ID,
		AgentBID:     targetID,
		Status:       models.BattlePending,
		CurrentPhase: models.PhaseChallenge,
		StateBlob:    "{}",
		CreatedAt:    time.Now(),
	}

	err = s.db.WithTx(func(tx *sqlx.Tx) error {
		return s.battleRepo.CreateTx(tx, battle)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"battle_id":  battle.ID,
		"challenger": challenger.ID,
		"target":     targetID,
	}).Info("Challenge issued")

	challengerView := challenger.PublicView()
	s.dispatcher.Enqueue(target.WebhookURL, target.WebhookSecret, &models.WebhookPayload{
		Event:        models.WebhookBattleChallenge,
		BattleID:     battle.ID,
		BattleNumber: battle.BattleNumber,
		Challenger:   &challengerView,
		Timestamp:    time.Now(),
	})

	view := s.buildView(battle, challenger, target, challenger)
	return &view, nil
}

// Accept accepte un défi en attente; le combat démarre immédiatement
func (s *BattleService) Accept(agent *models.Agent, battleID uuid.UUID) (*models.AcceptChallengeResponse, error) {
	battle, err := s.battleRepo.GetByID(battleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load battle: %w", err)
	}
	if battle == nil {
		return nil, models.ErrNotFound("battle not found")
	}
	if battle.AgentBID != agent.ID {
		return nil, models.ErrForbidden("only the challenged agent can accept")
	}
	if battle.Status != models.BattlePending || battle.CurrentPhase != models.PhaseChallenge {
		return nil, models.ErrConflict(models.CodeInvalidState, "challenge is no longer pending")
	}

	challenger, err := s.agentRepo.GetByID(battle.AgentAID)
	if err != nil {
		return nil, fmt.Errorf("failed to load challenger: %w", err)
	}
	if challenger == nil || !challenger.IsActive() {
		return nil, models.ErrConflict(models.CodeInvalidState, "challenger is no longer available")
	}

	state := engine.NewBattleState(challenger, agent)
	blob, err := models.MarshalState(state)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(func(tx *sqlx.Tx) error {
		return s.battleRepo.ActivateTx(tx, battle.ID, blob)
	})
	if err != nil {
		return nil, err
	}

	battle.Status = models.BattleActive
	battle.CurrentPhase = models.PhaseWaiting
	battle.StateBlob = blob
	now := time.Now()
	battle.StartedAt = &now
	battle.LastTurnAt = &now

	if s.metrics != nil {
		s.metrics.BattlesStarted.Inc()
	}

	logrus.WithFields(logrus.Fields{
		"battle_id":     battle.ID,
		"battle_number": battle.BattleNumber,
	}).Info("Challenge accepted, battle started")

	s.NotifyBattleStart(battle, challenger, agent)

	view := s.buildView(battle, challenger, agent, agent)
	return &models.AcceptChallengeResponse{
		Status:      "battle_started",
		BattleID:    battle.ID,
		BattleState: view,
	}, nil
}

// StartMatchedTx crée un combat déjà actif entre deux agents appariés,
// dans la transaction d'appariement du matchmaker
func (s *BattleService) StartMatchedTx(tx *sqlx.Tx, agentA, agentB *models.Agent) (*models.Battle, error) {
	state := engine.NewBattleState(agentA, agentB)
	blob, err := models.MarshalState(state)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	battle := &models.Battle{
		ID:           uuid.New(),
		AgentAID:     agentA.ID,
		AgentBID:     agentB.ID,
		Status:       models.BattleActive,
		CurrentPhase: models.PhaseWaiting,
		StateBlob:    blob,
		CreatedAt:    now,
		StartedAt:    &now,
		LastTurnAt:   &now,
	}

	if err := s.battleRepo.CreateTx(tx, battle); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BattlesStarted.Inc()
	}

	return battle, nil
}

// NotifyBattleStart envoie le webhook battle_start aux deux participants
func (s *BattleService) NotifyBattleStart(battle *models.Battle, agentA, agentB *models.Agent) {
	state, err := models.UnmarshalState(battle.StateBlob)
	if err != nil {
		logrus.WithError(err).WithField("battle_id", battle.ID).Error("Failed to unmarshal state for notification")
		return
	}

	agents := map[string]*models.Agent{models.SideA: agentA, models.SideB: agentB}
	matchups := map[string]float64{models.SideA: state.MatchupAtoB, models.SideB: state.MatchupBtoA}

	for side, agent := range agents {
		own := state.Side(side).OwnView()
		opp := state.Side(models.Opposite(side)).OpponentView()

		s.dispatcher.Enqueue(agent.WebhookURL, agent.WebhookSecret, &models.WebhookPayload{
			Event:        models.WebhookBattleStart,
			BattleID:     battle.ID,
			BattleNumber: battle.BattleNumber,
			YourSide:     side,
			YourLobster:  &own,
			Opponent:     &opp,
			TypeMatchup:  matchups[side],
			Timestamp:    time.Now(),
		})
	}
}

// SubmitMove enregistre le move d'un participant; quand les deux moves
// sont présents, le tour est résolu dans la même transaction
func (s *BattleService) SubmitMove(agent *models.Agent, battleID uuid.UUID, moveID string) (*models.BattleView, error) {
	var (
		battle *models.Battle
		state  *models.BattleState
		end    *battleEnd
		turned bool
	)

	err := s.db.WithTx(func(tx *sqlx.Tx) error {
		var err error
		battle, err = s.battleRepo.GetByIDTx(tx, battleID)
		if err != nil {
			return err
		}
		if battle == nil {
			return models.ErrNotFound("battle not found")
		}

		side := battle.SideOf(agent.ID)
		if side == "" {
			return models.ErrForbidden("agent is not a participant of this battle")
		}
		if battle.Status != models.BattleActive {
			return models.ErrConflict(models.CodeInvalidState, "battle is not active")
		}

		state, err = models.UnmarshalState(battle.StateBlob)
		if err != nil {
			return err
		}

		pending := battle.PendingMoveA
		if side == models.SideB {
			pending = battle.PendingMoveB
		}
		if pending != nil {
			return models.ErrConflict(models.CodeAlreadySubmitted, "move already submitted for this turn")
		}

		ms := state.Side(side).MoveByID(moveID)
		if ms == nil {
			return models.NewError(models.CodeInvalidMove, "move is not in this agent's moveset", http.StatusBadRequest)
		}
		if ms.CurrentPP <= 0 {
			return models.NewError(models.CodeNoPP, "move has no PP remaining", http.StatusConflict)
		}

		if err := s.battleRepo.SetPendingMoveTx(tx, battle.ID, side, &moveID); err != nil {
			return err
		}
		if side == models.SideA {
			battle.PendingMoveA = &moveID
		} else {
			battle.PendingMoveB = &moveID
		}

		// Les deux moves présents: résolution du tour
		if battle.PendingMoveA != nil && battle.PendingMoveB != nil {
			turned = true
			end, err = s.resolveTurnTx(tx, battle, state, battle.PendingMoveA, battle.PendingMoveB)
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if turned {
		s.afterTurn(battle, state, end)
	}

	view, err := s.GetView(battle.ID, agent)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Surrender abandon volontaire; l'adversaire gagne immédiatement
func (s *BattleService) Surrender(agent *models.Agent, battleID uuid.UUID) (*models.BattleView, error) {
	var end *battleEnd

	err := s.db.WithTx(func(tx *sqlx.Tx) error {
		battle, err := s.battleRepo.GetByIDTx(tx, battleID)
		if err != nil {
			return err
		}
		if battle == nil {
			return models.ErrNotFound("battle not found")
		}

		side := battle.SideOf(agent.ID)
		if side == "" {
			return models.ErrForbidden("agent is not a participant of this battle")
		}
		if battle.Status != models.BattleActive {
			return models.ErrConflict(models.CodeInvalidState, "battle is not active")
		}

		state, err := models.UnmarshalState(battle.StateBlob)
		if err != nil {
			return err
		}

		end, err = s.finishTx(tx, battle, state, models.Opposite(side), EndReasonSurrendered, models.BattleForfeited)
		if err != nil {
			return err
		}

		// Celui qui abandonne a déjà sa réponse; seul l'adversaire est notifié
		end.notifyOnly = models.Opposite(side)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"battle_id": battleID,
		"agent_id":  agent.ID,
	}).Info("Agent surrendered")

	s.notifyBattleEnd(end)

	return s.GetView(battleID, agent)
}

// ForceResolve résout un tour expiré: les côtés sans move soumis sont
// passés, leurs compteurs de timeouts consécutifs incrémentés, et le
// combat est forfait au-delà de la limite
func (s *BattleService) ForceResolve(battleID uuid.UUID) error {
	var (
		battle *models.Battle
		state  *models.BattleState
		end    *battleEnd
		turned bool
	)

	err := s.db.WithTx(func(tx *sqlx.Tx) error {
		var err error
		battle, err = s.battleRepo.GetByIDTx(tx, battleID)
		if err != nil {
			return err
		}
		if battle == nil || battle.Status != models.BattleActive {
			// Résolu entre le balayage et la transaction
			return nil
		}

		// Re-vérification de l'expiration dans la transaction: un tour a pu
		// être résolu entre le balayage et la prise du verrou, et un combat
		// dont les deux moves sont soumis n'a rien à forcer
		if battle.CurrentPhase != models.PhaseWaiting ||
			battle.LastTurnAt == nil ||
			time.Since(*battle.LastTurnAt) < s.config.Battle.TurnTimeout ||
			(battle.PendingMoveA != nil && battle.PendingMoveB != nil) {
			return nil
		}

		state, err = models.UnmarshalState(battle.StateBlob)
		if err != nil {
			return err
		}

		// Compteurs de timeouts consécutifs par côté
		moves := map[string]*string{
			models.SideA: battle.PendingMoveA,
			models.SideB: battle.PendingMoveB,
		}
		for side, move := range moves {
			if move == nil {
				state.Side(side).Timeouts++
			} else {
				state.Side(side).Timeouts = 0
			}
		}

		limit := s.config.Battle.MaxConsecutiveTimeouts
		timedOutA := state.SideA.Timeouts >= limit
		timedOutB := state.SideB.Timeouts >= limit

		switch {
		case timedOutA && timedOutB:
			// Double abandon silencieux: pas de vainqueur
			end, err = s.finishTx(tx, battle, state, "", EndReasonTimeout, models.BattleTimeout)
			return err
		case timedOutA:
			// Forfait par timeouts consécutifs: l'autre côté gagne
			end, err = s.finishTx(tx, battle, state, models.SideB, EndReasonForfeit, models.BattleFinished)
			return err
		case timedOutB:
			end, err = s.finishTx(tx, battle, state, models.SideA, EndReasonForfeit, models.BattleFinished)
			return err
		}

		turned = true
		end, err = s.resolveTurnTx(tx, battle, state, moves[models.SideA], moves[models.SideB])
		return err
	})
	if err != nil {
		return err
	}

	if turned && battle != nil {
		s.afterTurn(battle, state, end)
	} else if end != nil {
		s.notifyBattleEnd(end)
	}

	return nil
}

// resolveTurnTx fait tourner le moteur sur un tour et persiste le résultat
func (s *BattleService) resolveTurnTx(tx *sqlx.Tx, battle *models.Battle, state *models.BattleState, moveA, moveB *string) (*battleEnd, error) {
	events, winner, err := engine.ResolveTurn(state, moveA, moveB, s.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve turn: %w", err)
	}

	// Un move soumis remet le compteur de timeouts à zéro
	if moveA != nil {
		state.SideA.Timeouts = 0
	}
	if moveB != nil {
		state.SideB.Timeouts = 0
	}

	blob, err := models.MarshalState(state)
	if err != nil {
		return nil, err
	}

	eventsBlob, err := models.MarshalEvents(events)
	if err != nil {
		return nil, err
	}

	turn := &models.BattleTurn{
		ID:         uuid.New(),
		BattleID:   battle.ID,
		TurnNumber: state.TurnNumber,
		MoveA:      moveA,
		MoveB:      moveB,
		Events:     eventsBlob,
		HPA:        state.SideA.CurrentHP,
		HPB:        state.SideB.CurrentHP,
		CreatedAt:  time.Now(),
	}
	if err := s.battleRepo.AppendTurnTx(tx, turn); err != nil {
		return nil, err
	}

	battle.TurnNumber = state.TurnNumber
	battle.StateBlob = blob
	battle.PendingMoveA = nil
	battle.PendingMoveB = nil

	if s.metrics != nil {
		s.metrics.TurnsResolved.Inc()
	}

	if winner == "" {
		if err := s.battleRepo.ApplyTurnTx(tx, battle); err != nil {
			return nil, err
		}
		battle.CurrentPhase = models.PhaseWaiting
		return &battleEnd{battle: battle, state: state}, nil
	}

	return s.finishTx(tx, battle, state, winner, EndReasonKnockout, models.BattleFinished)
}

// finishTx applique la progression des deux agents, émet les tokens
// sociaux et fait passer le combat à son état terminal, le tout dans la
// transaction de résolution
func (s *BattleService) finishTx(tx *sqlx.Tx, battle *models.Battle, state *models.BattleState, winnerSide, reason string, status models.BattleStatus) (*battleEnd, error) {
	end := &battleEnd{
		battle:     battle,
		state:      state,
		winnerSide: winnerSide,
		reason:     reason,
		outcomes:   make(map[string]battleOutcome, 2),
		tokens:     make(map[string]string, 2),
	}

	agentA, err := s.agentRepo.GetByIDTx(tx, battle.AgentAID)
	if err != nil {
		return nil, err
	}
	agentB, err := s.agentRepo.GetByIDTx(tx, battle.AgentBID)
	if err != nil {
		return nil, err
	}
	if agentA == nil || agentB == nil {
		return nil, fmt.Errorf("battle participant missing")
	}

	// Progression uniquement quand il y a un vainqueur
	if winnerSide != "" {
		winner, loser := agentA, agentB
		if winnerSide == models.SideB {
			winner, loser = agentB, agentA
		}

		end.upset = winner.Elo < loser.Elo-upsetEloGap

		// Snapshots: la progression du premier ne doit pas fausser celle
		// du second
		winnerSnap := *winner
		loserSnap := *loser

		end.outcomes[winnerSide] = applyProgression(winner, &loserSnap, true)
		end.outcomes[models.Opposite(winnerSide)] = applyProgression(loser, &winnerSnap, false)

		if err := s.agentRepo.UpdateResultsTx(tx, winner); err != nil {
			return nil, err
		}
		if err := s.agentRepo.UpdateResultsTx(tx, loser); err != nil {
			return nil, err
		}

		battle.WinnerID = &winner.ID
	} else {
		end.outcomes[models.SideA] = battleOutcome{agent: agentA, newElo: agentA.Elo}
		end.outcomes[models.SideB] = battleOutcome{agent: agentB, newElo: agentB.Elo}
	}

	battle.Status = status
	blob, err := models.MarshalState(state)
	if err != nil {
		return nil, err
	}
	battle.StateBlob = blob

	if err := s.battleRepo.FinishTx(tx, battle); err != nil {
		return nil, err
	}

	for _, side := range []string{models.SideA, models.SideB} {
		agent := end.outcomes[side].agent
		token, err := s.issueSocialTokenTx(tx, agent.ID, battle.ID)
		if err != nil {
			return nil, err
		}
		end.tokens[side] = token
	}

	if s.metrics != nil {
		s.metrics.BattlesFinished.WithLabelValues(reason).Inc()
	}

	logrus.WithFields(logrus.Fields{
		"battle_id":     battle.ID,
		"battle_number": battle.BattleNumber,
		"winner_side":   winnerSide,
		"reason":        reason,
	}).Info("Battle finished")

	return end, nil
}

// afterTurn notifications post-commit d'un tour résolu
func (s *BattleService) afterTurn(battle *models.Battle, state *models.BattleState, end *battleEnd) {
	if end != nil && battle.IsTerminal() {
		s.notifyBattleEnd(end)
		return
	}

	// Tour intermédiaire: battle_turn aux deux participants
	s.notifyBattleTurn(battle, state)
}

// notifyBattleTurn envoie le webhook battle_turn aux deux participants
func (s *BattleService) notifyBattleTurn(battle *models.Battle, state *models.BattleState) {
	turns, err := s.battleRepo.GetTurns(battle.ID)
	if err != nil || len(turns) == 0 {
		logrus.WithError(err).WithField("battle_id", battle.ID).Error("Failed to load turn for notification")
		return
	}
	last := turns[len(turns)-1]

	events, err := models.UnmarshalEvents(last.Events)
	if err != nil {
		logrus.WithError(err).Error("Failed to unmarshal turn events")
		return
	}

	for _, side := range []string{models.SideA, models.SideB} {
		agent, err := s.agentRepo.GetByID(state.Side(side).AgentID)
		if err != nil || agent == nil {
			continue
		}

		own := state.Side(side).OwnView()
		opp := state.Side(models.Opposite(side)).OpponentView()

		s.dispatcher.Enqueue(agent.WebhookURL, agent.WebhookSecret, &models.WebhookPayload{
			Event:        models.WebhookBattleTurn,
			BattleID:     battle.ID,
			BattleNumber: battle.BattleNumber,
			TurnNumber:   state.TurnNumber,
			YourSide:     side,
			YourLobster:  &own,
			Opponent:     &opp,
			Events:       events,
			Timestamp:    time.Now(),
		})
	}
}

// notifyBattleEnd envoie le webhook battle_end enrichi aux deux participants
func (s *BattleService) notifyBattleEnd(end *battleEnd) {
	if end == nil {
		return
	}

	battle := end.battle
	state := end.state

	var lastEvents []models.TurnEvent
	if turns, err := s.battleRepo.GetTurns(battle.ID); err == nil && len(turns) > 0 {
		if ev, err := models.UnmarshalEvents(turns[len(turns)-1].Events); err == nil {
			lastEvents = ev
		}
	}

	closeMatch := end.winnerSide != "" && isCloseMatch(state, end.winnerSide)

	for _, side := range []string{models.SideA, models.SideB} {
		if end.notifyOnly != "" && side != end.notifyOnly {
			continue
		}

		outcome := end.outcomes[side]
		agent := outcome.agent
		opponentID := state.Side(models.Opposite(side)).AgentID

		won := end.winnerSide == side

		rank, err := s.agentRepo.Rank(agent.Elo)
		if err != nil {
			rank = 0
		}

		h2h, err := s.battleRepo.HeadToHead(agent.ID, opponentID)
		if err != nil || h2h == nil {
			h2h = &models.HeadToHead{}
		}

		// Revanche: première victoire après au moins une défaite face à
		// cet adversaire
		revenge := won && h2h.Losses > 0 && h2h.Wins == 1

		ctx := &models.BattleEndContext{
			Won:        won,
			Reason:     end.reason,
			CloseMatch: closeMatch,
			NewElo:     outcome.newElo,
			EloDelta:   outcome.eloDelta,
			Rank:       rank,
			HeadToHead: *h2h,
			Revenge:    revenge,
			Upset:      won && end.upset,
			Milestones: milestones(outcome, rank, won && end.upset, revenge),
		}

		own := state.Side(side).OwnView()
		opp := state.Side(models.Opposite(side)).OpponentView()

		s.dispatcher.Enqueue(agent.WebhookURL, agent.WebhookSecret, &models.WebhookPayload{
			Event:        models.WebhookBattleEnd,
			BattleID:     battle.ID,
			BattleNumber: battle.BattleNumber,
			TurnNumber:   state.TurnNumber,
			YourSide:     side,
			YourLobster:  &own,
			Opponent:     &opp,
			Events:       lastEvents,
			Context:      ctx,
			SocialToken:  end.tokens[side],
			Timestamp:    time.Now(),
		})
	}
}

// GetActive retourne le combat en cours d'un agent
func (s *BattleService) GetActive(agent *models.Agent) (*models.BattleView, error) {
	battle, err := s.battleRepo.FindOngoingByAgent(agent.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find active battle: %w", err)
	}
	if battle == nil {
		return nil, models.ErrNotFound("no ongoing battle")
	}

	return s.GetView(battle.ID, agent)
}

// GetView construit la vue d'un combat pour un viewer donné; un
// participant voit son propre côté en détail
func (s *BattleService) GetView(battleID uuid.UUID, viewer *models.Agent) (*models.BattleView, error) {
	battle, err := s.battleRepo.GetByID(battleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load battle: %w", err)
	}
	if battle == nil {
		return nil, models.ErrNotFound("battle not found")
	}

	agentA, err := s.agentRepo.GetByID(battle.AgentAID)
	if err != nil || agentA == nil {
		return nil, fmt.Errorf("failed to load battle participant: %w", err)
	}
	agentB, err := s.agentRepo.GetByID(battle.AgentBID)
	if err != nil || agentB == nil {
		return nil, fmt.Errorf("failed to load battle participant: %w", err)
	}

	view := s.buildView(battle, agentA, agentB, viewer)
	return &view, nil
}

// History retourne les combats terminés d'un agent
func (s *BattleService) History(agent *models.Agent, limit int) ([]*models.BattleView, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	battles, err := s.battleRepo.History(agent.ID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*models.BattleView, 0, len(battles))
	for _, battle := range battles {
		view, err := s.GetView(battle.ID, agent)
		if err != nil {
			continue
		}
		views = append(views, view)
	}

	return views, nil
}

// Turns retourne le log de tours désérialisé d'un combat
func (s *BattleService) Turns(battleID uuid.UUID) ([]models.TurnLogView, error) {
	battle, err := s.battleRepo.GetByID(battleID)
	if err != nil {
		return nil, err
	}
	if battle == nil {
		return nil, models.ErrNotFound("battle not found")
	}

	turns, err := s.battleRepo.GetTurns(battleID)
	if err != nil {
		return nil, err
	}

	views := make([]models.TurnLogView, 0, len(turns))
	for _, turn := range turns {
		events, err := models.UnmarshalEvents(turn.Events)
		if err != nil {
			return nil, err
		}
		views = append(views, models.TurnLogView{
			TurnNumber: turn.TurnNumber,
			MoveA:      turn.MoveA,
			MoveB:      turn.MoveB,
			Events:     events,
			HPA:        turn.HPA,
			HPB:        turn.HPB,
			CreatedAt:  turn.CreatedAt,
		})
	}

	return views, nil
}

// buildView assemble la vue wire d'un combat
func (s *BattleService) buildView(battle *models.Battle, agentA, agentB, viewer *models.Agent) models.BattleView {
	view := models.BattleView{
		ID:           battle.ID,
		BattleNumber: battle.BattleNumber,
		Status:       string(battle.Status),
		CurrentPhase: string(battle.CurrentPhase),
		TurnNumber:   battle.TurnNumber,
		AgentA:       agentA.PublicView(),
		AgentB:       agentB.PublicView(),
		WinnerID:     battle.WinnerID,
		CreatedAt:    battle.CreatedAt,
		EndedAt:      battle.EndedAt,
	}

	if viewer == nil {
		return view
	}

	side := battle.SideOf(viewer.ID)
	if side == "" || battle.StateBlob == "" || battle.StateBlob == "{}" {
		return view
	}

	state, err := models.UnmarshalState(battle.StateBlob)
	if err != nil {
		logrus.WithError(err).WithField("battle_id", battle.ID).Error("Failed to unmarshal battle state")
		return view
	}

	own := state.Side(side).OwnView()
	opp := state.Side(models.Opposite(side)).OpponentView()

	view.YourSide = side
	view.You = &own
	view.Opponent = &opp

	pending := battle.PendingMoveA
	if side == models.SideB {
		pending = battle.PendingMoveB
	}
	view.MoveSubmitted = pending != nil

	return view
}
