package service

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"arena/internal/models"
	"arena/internal/utils"
)

// Constantes de progression
const (
	eloKFactor = 32
	eloFloor   = 100

	winXPBase        = 50
	winXPPerLevel    = 10
	lossXPBase       = 15
	lossXPPerLevel   = 5
	xpPerLevelFactor = 100

	upsetEloGap        = 100
	closeMatchHPMargin = 0.15
	topRankThreshold   = 10
)

// battleOutcome résultat calculé d'un combat, côté d'un participant
type battleOutcome struct {
	agent    *models.Agent
	won      bool
	eloDelta int
	newElo   int
	levelUps int
}

// eloExpected score attendu du joueur A contre le joueur B
func eloExpected(eloA, eloB int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(eloB-eloA)/400.0))
}

// eloDelta variation ELO d'un joueur pour un résultat donné
func eloDelta(elo, opponentElo int, won bool) int {
	score := 0.0
	if won {
		score = 1.0
	}
	return int(math.Round(eloKFactor * (score - eloExpected(elo, opponentElo))))
}

// applyProgression applique XP, niveau, ELO et stats de victoire à un agent.
// Mutation en mémoire; la persistance passe par UpdateResultsTx.
func applyProgression(agent, opponent *models.Agent, won bool) battleOutcome {
	outcome := battleOutcome{agent: agent, won: won}

	// XP et niveau
	gained := lossXPBase + lossXPPerLevel*opponent.Level
	if won {
		gained = winXPBase + winXPPerLevel*opponent.Level
	}
	agent.XP += gained

	for agent.XP >= agent.Level*xpPerLevelFactor {
		agent.XP -= agent.Level * xpPerLevelFactor
		agent.Level++
		outcome.levelUps++
	}

	// ELO, plancher à 100
	delta := eloDelta(agent.Elo, opponent.Elo, won)
	newElo := agent.Elo + delta
	if newElo < eloFloor {
		newElo = eloFloor
	}
	outcome.eloDelta = newElo - agent.Elo
	outcome.newElo = newElo
	agent.Elo = newElo

	// Stats de combat
	agent.Fights++
	if won {
		agent.Wins++
		agent.WinStreak++
	} else {
		agent.WinStreak = 0
	}

	return outcome
}

// milestones étapes franchies par un agent sur ce combat
func milestones(outcome battleOutcome, preRank int, upset, revenge bool) []string {
	var ms []string

	if outcome.won {
		switch outcome.agent.WinStreak {
		case 3:
			ms = append(ms, "win_streak_3")
		case 5:
			ms = append(ms, "win_streak_5")
		case 10:
			ms = append(ms, "win_streak_10")
		}
		if upset {
			ms = append(ms, "upset_win")
		}
		if revenge {
			ms = append(ms, "revenge_win")
		}
		if preRank <= topRankThreshold {
			ms = append(ms, "top_10_clash")
		}
	}

	if outcome.levelUps > 0 {
		switch outcome.agent.Level {
		case 5:
			ms = append(ms, "level_5")
		case 10:
			ms = append(ms, "level_10")
		case 20:
			ms = append(ms, "level_20")
		}
	}

	return ms
}

// issueSocialTokenTx émet le token one-shot de fin de combat d'un agent
func (s *BattleService) issueSocialTokenTx(tx *sqlx.Tx, agentID, battleID uuid.UUID) (string, error) {
	token, err := utils.SecureToken(24)
	if err != nil {
		return "", fmt.Errorf("failed to generate social token: %w", err)
	}

	now := time.Now()
	st := &models.SocialToken{
		Token:     token,
		AgentID:   agentID,
		BattleID:  battleID,
		Consumed:  false,
		ExpiresAt: now.Add(s.config.Battle.SocialTokenTTL),
		CreatedAt: now,
	}

	if err := s.tokenRepo.CreateTx(tx, st); err != nil {
		return "", err
	}

	return token, nil
}

// isCloseMatch un combat est serré si le vainqueur finit sous la marge de HP
func isCloseMatch(state *models.BattleState, winnerSide string) bool {
	winner := state.Side(winnerSide)
	if winner.MaxHP == 0 {
		return false
	}
	return float64(winner.CurrentHP)/float64(winner.MaxHP) <= closeMatchHPMargin
}
