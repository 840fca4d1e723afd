package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arena/internal/database"
	"arena/internal/models"
	"arena/internal/utils"
)

var (
	testDBOnce sync.Once
	testDBConn *database.DB
	testDBErr  error
)

// testDB partage une seule connexion en mémoire pour tout le paquet:
// le DSN cache=shared expose la même base à toutes les connexions du
// binaire de test
func testDB(t *testing.T) *database.DB {
	t.Helper()

	testDBOnce.Do(func() {
		testDBConn, testDBErr = database.NewTestConnection()
		if testDBErr != nil {
			return
		}
		testDBErr = database.RunMigrations(testDBConn)
	})
	require.NoError(t, testDBErr)

	return testDBConn
}

// seedAgent insère un agent valide avec un nom unique (la base est
// partagée entre les tests du paquet)
func seedAgent(t *testing.T, db *database.DB, elo int) *models.Agent {
	t.Helper()

	now := time.Now()
	agent := &models.Agent{
		ID:            uuid.New(),
		Name:          "agent-" + uuid.NewString()[:8],
		APIKeyHash:    utils.HashAPIKey("cck_" + uuid.NewString()),
		ElementalType: "WATER",
		BaseHP:        20,
		BaseAttack:    20,
		BaseDefense:   15,
		BaseSpAtk:     20,
		BaseSpDef:     15,
		BaseSpeed:     10,
		Nature:        "balanced",
		Ability:       "Torrent",
		Move1:         "surf",
		Move2:         "aqua_jet",
		Move3:         "recover",
		Move4:         "focus_strike",
		Level:         1,
		Elo:           elo,
		Status:        models.AgentActive,
		PlayMode:      models.PlayModeAuto,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	require.NoError(t, NewAgentRepository(db).Create(agent))
	return agent
}

// seedBattle crée un défi pending entre deux agents
func seedBattle(t *testing.T, db *database.DB, a, b uuid.UUID) *models.Battle {
	t.Helper()

	battle := &models.Battle{
		ID:           uuid.New(),
		AgentAID:     a,
		AgentBID:     b,
		Status:       models.BattlePending,
		CurrentPhase: models.PhaseChallenge,
		StateBlob:    "{}",
		CreatedAt:    time.Now(),
	}

	repo := NewBattleRepository(db)
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.CreateTx(tx, battle)
	}))

	return battle
}

func TestAgentCreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewAgentRepository(db)

	created := seedAgent(t, db, 1000)

	byID, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, created.Name, byID.Name)
	assert.Equal(t, created.Elo, byID.Elo)
	assert.Equal(t, [4]string{"surf", "aqua_jet", "recover", "focus_strike"}, byID.Moves())

	byName, err := repo.GetByName(created.Name)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, created.ID, byName.ID)

	byHash, err := repo.GetByAPIKeyHash(created.APIKeyHash)
	require.NoError(t, err)
	require.NotNil(t, byHash)
	assert.Equal(t, created.ID, byHash.ID)

	// Absent = nil, pas d'erreur
	missing, err := repo.GetByID(uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.GetByName("nobody-" + uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAgentCreateDuplicateName(t *testing.T) {
	db := testDB(t)
	repo := NewAgentRepository(db)

	first := seedAgent(t, db, 1000)

	dup := *first
	dup.ID = uuid.New()
	dup.APIKeyHash = utils.HashAPIKey("cck_" + uuid.NewString())
	assert.Error(t, repo.Create(&dup))
}

func TestAgentUpdateWebhook(t *testing.T) {
	db := testDB(t)
	repo := NewAgentRepository(db)

	agent := seedAgent(t, db, 1000)

	require.NoError(t, repo.UpdateWebhook(agent.ID, "https://bots.example.com/hook", "whsec_abc"))

	reloaded, err := repo.GetByID(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://bots.example.com/hook", reloaded.WebhookURL)
	assert.Equal(t, "whsec_abc", reloaded.WebhookSecret)

	assert.Error(t, repo.UpdateWebhook(uuid.New(), "https://x.example.com", "s"))
}

func TestAgentUpdateResults(t *testing.T) {
	db := testDB(t)
	repo := NewAgentRepository(db)

	agent := seedAgent(t, db, 1000)
	agent.Elo = 1016
	agent.Wins = 1
	agent.Fights = 1
	agent.WinStreak = 1
	agent.XP = 60

	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.UpdateResultsTx(tx, agent)
	}))

	reloaded, err := repo.GetByID(agent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1016, reloaded.Elo)
	assert.Equal(t, 1, reloaded.Wins)
	assert.Equal(t, 1, reloaded.Fights)
	assert.Equal(t, 1, reloaded.WinStreak)
	assert.Equal(t, 60, reloaded.XP)
}

func TestAgentLeaderboardAndRank(t *testing.T) {
	db := testDB(t)
	repo := NewAgentRepository(db)

	// ELOs bien au-dessus du reste de la base partagée
	top := seedAgent(t, db, 9500)
	second := seedAgent(t, db, 9400)
	third := seedAgent(t, db, 9300)
	benched := seedAgent(t, db, 9200)
	require.NoError(t, repo.UpdateStatus(benched.ID, models.AgentInactive))

	board, err := repo.Leaderboard(3, 0)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, top.ID, board[0].ID)
	assert.Equal(t, second.ID, board[1].ID)
	assert.Equal(t, third.ID, board[2].ID)

	// Les agents inactifs sont exclus du classement
	for _, entry := range board {
		assert.NotEqual(t, benched.ID, entry.ID)
	}

	offset, err := repo.Leaderboard(3, 1)
	require.NoError(t, err)
	require.NotEmpty(t, offset)
	assert.Equal(t, second.ID, offset[0].ID)

	rank, err := repo.Rank(9500)
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	rank, err = repo.Rank(9350)
	require.NoError(t, err)
	assert.Equal(t, 3, rank)

	count, err := repo.CountActive()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 3)
}

func TestBattleNumbersAreSequential(t *testing.T) {
	db := testDB(t)

	a := seedAgent(t, db, 1000)
	b := seedAgent(t, db, 1000)

	first := seedBattle(t, db, a.ID, b.ID)
	second := seedBattle(t, db, a.ID, b.ID)

	assert.Positive(t, first.BattleNumber)
	assert.Equal(t, first.BattleNumber+1, second.BattleNumber)
}

func TestBattleActivate(t *testing.T) {
	db := testDB(t)
	repo := NewBattleRepository(db)

	a := seedAgent(t, db, 1000)
	b := seedAgent(t, db, 1000)
	battle := seedBattle(t, db, a.ID, b.ID)

	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.ActivateTx(tx, battle.ID, `{"turnNumber":0}`)
	}))

	reloaded, err := repo.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BattleActive, reloaded.Status)
	assert.Equal(t, models.PhaseWaiting, reloaded.CurrentPhase)
	assert.Equal(t, `{"turnNumber":0}`, reloaded.StateBlob)
	assert.NotNil(t, reloaded.StartedAt)
	assert.NotNil(t, reloaded.LastTurnAt)

	// Un combat déjà actif ne peut pas être activé une seconde fois
	err = db.WithTx(func(tx *sqlx.Tx) error {
		return repo.ActivateTx(tx, battle.ID, "{}")
	})
	assert.ErrorContains(t, err, "not pending")
}

func TestBattlePendingMovesAndTurns(t *testing.T) {
	db := testDB(t)
	repo := NewBattleRepository(db)

	a := seedAgent(t, db, 1000)
	b := seedAgent(t, db, 1000)
	battle := seedBattle(t, db, a.ID, b.ID)

	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.ActivateTx(tx, battle.ID, "{}")
	}))

	surf := "surf"
	heal := "recover"
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		if err := repo.SetPendingMoveTx(tx, battle.ID, models.SideA, &surf); err != nil {
			return err
		}
		return repo.SetPendingMoveTx(tx, battle.ID, models.SideB, &heal)
	}))

	reloaded, err := repo.GetByID(battle.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.PendingMoveA)
	require.NotNil(t, reloaded.PendingMoveB)
	assert.Equal(t, "surf", *reloaded.PendingMoveA)
	assert.Equal(t, "recover", *reloaded.PendingMoveB)

	// ApplyTurnTx avance le tour et efface les moves en attente
	reloaded.TurnNumber = 1
	reloaded.StateBlob = `{"turnNumber":1}`
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		if err := repo.ApplyTurnTx(tx, reloaded); err != nil {
			return err
		}
		return repo.AppendTurnTx(tx, &models.BattleTurn{
			ID:         uuid.New(),
			BattleID:   battle.ID,
			TurnNumber: 1,
			MoveA:      &surf,
			MoveB:      &heal,
			Events:     "[]",
			HPA:        70,
			HPB:        85,
			CreatedAt:  time.Now(),
		})
	}))

	reloaded, err = repo.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.TurnNumber)
	assert.Nil(t, reloaded.PendingMoveA)
	assert.Nil(t, reloaded.PendingMoveB)

	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.AppendTurnTx(tx, &models.BattleTurn{
			ID:         uuid.New(),
			BattleID:   battle.ID,
			TurnNumber: 2,
			Events:     "[]",
			HPA:        55,
			HPB:        85,
			CreatedAt:  time.Now(),
		})
	}))

	turns, err := repo.GetTurns(battle.ID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, 1, turns[0].TurnNumber)
	assert.Equal(t, 2, turns[1].TurnNumber)
	assert.Equal(t, 70, turns[0].HPA)
}

func TestBattleLookups(t *testing.T) {
	db := testDB(t)
	repo := NewBattleRepository(db)

	a := seedAgent(t, db, 1000)
	b := seedAgent(t, db, 1000)
	battle := seedBattle(t, db, a.ID, b.ID)

	ongoing, err := repo.FindOngoingByAgent(a.ID)
	require.NoError(t, err)
	require.NotNil(t, ongoing)
	assert.Equal(t, battle.ID, ongoing.ID)

	ongoing, err = repo.FindOngoingByAgent(b.ID)
	require.NoError(t, err)
	require.NotNil(t, ongoing)

	// Le défi est indexé challenger -> challenged, pas l'inverse
	challenge, err := repo.FindPendingChallenge(b.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, challenge)
	assert.Equal(t, battle.ID, challenge.ID)

	challenge, err = repo.FindPendingChallenge(a.ID, b.ID)
	require.NoError(t, err)
	assert.Nil(t, challenge)

	require.NoError(t, repo.Cancel(battle.ID))

	reloaded, err := repo.GetByID(battle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BattleCancelled, reloaded.Status)

	ongoing, err = repo.FindOngoingByAgent(a.ID)
	require.NoError(t, err)
	assert.Nil(t, ongoing)
}

func TestBattleHeadToHead(t *testing.T) {
	db := testDB(t)
	repo := NewBattleRepository(db)

	a := seedAgent(t, db, 1000)
	b := seedAgent(t, db, 1000)

	finish := func(winner uuid.UUID) {
		battle := seedBattle(t, db, a.ID, b.ID)
		battle.Status = models.BattleFinished
		battle.WinnerID = &winner
		require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
			return repo.FinishTx(tx, battle)
		}))
	}

	finish(a.ID)
	finish(a.ID)
	finish(b.ID)

	h2h, err := repo.HeadToHead(a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, h2h.Wins)
	assert.Equal(t, 1, h2h.Losses)

	// Symétrique depuis l'autre côté
	h2h, err = repo.HeadToHead(b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, h2h.Wins)
	assert.Equal(t, 2, h2h.Losses)
}

func TestBattleHistory(t *testing.T) {
	db := testDB(t)
	repo := NewBattleRepository(db)

	a := seedAgent(t, db, 1000)
	b := seedAgent(t, db, 1000)

	first := seedBattle(t, db, a.ID, b.ID)
	first.Status = models.BattleFinished
	first.WinnerID = &a.ID
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.FinishTx(tx, first)
	}))

	time.Sleep(5 * time.Millisecond)

	second := seedBattle(t, db, a.ID, b.ID)
	second.Status = models.BattleForfeited
	second.WinnerID = &b.ID
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.FinishTx(tx, second)
	}))

	// Un défi encore pending n'apparaît pas dans l'historique
	seedBattle(t, db, a.ID, b.ID)

	history, err := repo.History(a.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
}

func TestBattleSchedulerSweeps(t *testing.T) {
	db := testDB(t)
	repo := NewBattleRepository(db)

	a := seedAgent(t, db, 1000)
	b := seedAgent(t, db, 1000)

	stale := seedBattle(t, db, a.ID, b.ID)
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.ActivateTx(tx, stale.ID, "{}")
	}))

	// On vieillit le combat à la main
	_, err := db.Exec(`UPDATE battles SET last_turn_at = ? WHERE id = ?`,
		time.Now().Add(-2*time.Hour), stale.ID)
	require.NoError(t, err)

	found, err := repo.FindStale(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(found))
	for _, bt := range found {
		ids = append(ids, bt.ID)
	}
	assert.Contains(t, ids, stale.ID)

	// Un combat vieilli dont les deux moves sont déjà soumis n'a rien à
	// forcer: il n'est pas balayé
	resolved := seedBattle(t, db, a.ID, b.ID)
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.ActivateTx(tx, resolved.ID, "{}")
	}))
	_, err = db.Exec(`
		UPDATE battles
		SET last_turn_at = ?, pending_move_a = 'surf', pending_move_b = 'surf'
		WHERE id = ?`,
		time.Now().Add(-2*time.Hour), resolved.ID)
	require.NoError(t, err)

	found, err = repo.FindStale(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	ids = ids[:0]
	for _, bt := range found {
		ids = append(ids, bt.ID)
	}
	assert.Contains(t, ids, stale.ID)
	assert.NotContains(t, ids, resolved.ID)

	// Défi expiré jamais accepté
	c := seedAgent(t, db, 1000)
	d := seedAgent(t, db, 1000)
	expired := seedBattle(t, db, c.ID, d.ID)
	_, err = db.Exec(`UPDATE battles SET created_at = ? WHERE id = ?`,
		time.Now().Add(-10*time.Minute), expired.ID)
	require.NoError(t, err)

	challenges, err := repo.FindExpiredChallenges(time.Now().Add(-5 * time.Minute))
	require.NoError(t, err)
	ids = ids[:0]
	for _, bt := range challenges {
		ids = append(ids, bt.ID)
	}
	assert.Contains(t, ids, expired.ID)
	assert.NotContains(t, ids, stale.ID)
}

func TestQueueJoinLeave(t *testing.T) {
	db := testDB(t)
	repo := NewQueueRepository(db)

	agent := seedAgent(t, db, 1000)

	before, err := repo.Size()
	require.NoError(t, err)

	require.NoError(t, repo.Join(agent.ID))
	assert.ErrorIs(t, repo.Join(agent.ID), ErrAlreadyQueued)

	in, err := repo.Contains(agent.ID)
	require.NoError(t, err)
	assert.True(t, in)

	size, err := repo.Size()
	require.NoError(t, err)
	assert.Equal(t, before+1, size)

	removed, err := repo.Leave(agent.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Leave(agent.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	in, err = repo.Contains(agent.ID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestQueueListOldestFirst(t *testing.T) {
	db := testDB(t)
	repo := NewQueueRepository(db)

	early := seedAgent(t, db, 1200)
	late := seedAgent(t, db, 1300)

	require.NoError(t, repo.Join(early.ID))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.Join(late.ID))

	var entries []*models.QueuedAgent
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		var err error
		entries, err = repo.ListTx(tx)
		return err
	}))

	positions := map[uuid.UUID]int{}
	for i, e := range entries {
		positions[e.AgentID] = i
	}
	require.Contains(t, positions, early.ID)
	require.Contains(t, positions, late.ID)
	assert.Less(t, positions[early.ID], positions[late.ID])

	for _, e := range entries {
		if e.AgentID == early.ID {
			assert.Equal(t, 1200, e.Elo)
		}
	}

	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.RemoveTx(tx, early.ID, late.ID)
	}))

	in, err := repo.Contains(early.ID)
	require.NoError(t, err)
	assert.False(t, in)
}

func TestTokenConsumeOnce(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)

	a := seedAgent(t, db, 1000)
	b := seedAgent(t, db, 1000)
	battle := seedBattle(t, db, a.ID, b.ID)

	token := &models.SocialToken{
		Token:     fmt.Sprintf("st_%s", uuid.NewString()),
		AgentID:   a.ID,
		BattleID:  battle.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.CreateTx(tx, token)
	}))

	consumed, err := repo.Consume(token.Token)
	require.NoError(t, err)
	require.NotNil(t, consumed)
	assert.Equal(t, a.ID, consumed.AgentID)
	assert.True(t, consumed.Consumed)

	// One-shot: la seconde consommation échoue silencieusement
	consumed, err = repo.Consume(token.Token)
	require.NoError(t, err)
	assert.Nil(t, consumed)

	consumed, err = repo.Consume("st_unknown")
	require.NoError(t, err)
	assert.Nil(t, consumed)
}

func TestTokenDeleteExpired(t *testing.T) {
	db := testDB(t)
	repo := NewTokenRepository(db)

	a := seedAgent(t, db, 1000)
	b := seedAgent(t, db, 1000)
	battle := seedBattle(t, db, a.ID, b.ID)

	expired := &models.SocialToken{
		Token:     fmt.Sprintf("st_%s", uuid.NewString()),
		AgentID:   a.ID,
		BattleID:  battle.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, db.WithTx(func(tx *sqlx.Tx) error {
		return repo.CreateTx(tx, expired)
	}))

	deleted, err := repo.DeleteExpired(time.Now())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(1))

	// Un token expiré ne se consomme plus de toute façon
	consumed, err := repo.Consume(expired.Token)
	require.NoError(t, err)
	assert.Nil(t, consumed)
}
