package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"arena/internal/config"
	"arena/internal/database"
	"arena/internal/engine"
	"arena/internal/handlers"
	"arena/internal/middleware"
	"arena/internal/monitoring"
	"arena/internal/repository"
	"arena/internal/service"
	"arena/internal/webhook"
)

// Version du service (à définir lors du build)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Chargement de la configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatal("Failed to load config: ", err)
	}

	// Initialisation du logger
	initLogger(&cfg.Logging)

	logrus.WithFields(logrus.Fields{
		"service":    "clawcombat-arena",
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("🦞 Starting ClawCombat Arena...")

	// Connexion au store embarqué
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	// Exécution des migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// Monitoring
	metrics := monitoring.NewMetrics()
	healthChecker := monitoring.NewHealthChecker(db)

	// Initialisation des repositories
	agentRepo := repository.NewAgentRepository(db)
	battleRepo := repository.NewBattleRepository(db)
	queueRepo := repository.NewQueueRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	// Dispatcher de webhooks sortants
	dispatcher := webhook.NewDispatcher(&cfg.Webhook, metrics)
	dispatcher.Start()

	// Initialisation des services
	rng := engine.NewSecureRNG()
	agentService := service.NewAgentService(agentRepo, dispatcher, cfg, metrics)
	battleService := service.NewBattleService(db, battleRepo, agentRepo, queueRepo, tokenRepo, dispatcher, cfg, metrics, rng)
	matchmaker := service.NewMatchmakerService(db, queueRepo, agentRepo, battleRepo, battleService, cfg, metrics)
	scheduler := service.NewSchedulerService(battleRepo, tokenRepo, battleService, cfg, metrics)

	// Démarrage des routines de fond
	stop := make(chan struct{})
	matchmaker.StartMatchmakingRoutine(stop)
	scheduler.StartTimeoutRoutine(stop)

	// Initialisation des handlers
	authCache := middleware.NewAuthCache(&cfg.Auth)
	agentHandler := handlers.NewAgentHandler(agentService, authCache, cfg)
	battleHandler := handlers.NewBattleHandler(battleService, matchmaker, cfg)
	socialHandler := handlers.NewSocialHandler(tokenRepo)

	// Configuration du mode Gin
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Configuration des routes
	router := setupRoutes(agentHandler, battleHandler, socialHandler, agentService, authCache, healthChecker, metrics, cfg)

	// Configuration du serveur HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Démarrage du serveur en arrière-plan
	go func() {
		logrus.WithFields(logrus.Fields{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
			"env":  cfg.Server.Environment,
		}).Info("🦞 ClawCombat Arena started successfully")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Gestion gracieuse de l'arrêt
	gracefulShutdown(server, dispatcher, stop)
}

// setupRoutes configure toutes les routes du service
func setupRoutes(
	agentHandler *handlers.AgentHandler,
	battleHandler *handlers.BattleHandler,
	socialHandler *handlers.SocialHandler,
	agentService service.AgentServiceInterface,
	authCache *middleware.AuthCache,
	healthChecker *monitoring.HealthChecker,
	metrics *monitoring.Metrics,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Middleware globaux
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logging())
	router.Use(middleware.CORS(&cfg.Server))
	router.Use(metrics.Middleware())
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Rate limiting global si configuré
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter := middleware.NewRateLimiter(&cfg.RateLimit)
		router.Use(limiter.Middleware())
	}

	// Routes de santé et monitoring (sans auth)
	router.GET(cfg.Monitoring.HealthPath, healthChecker.HealthCheck)
	router.GET("/ready", healthChecker.ReadinessCheck)
	router.GET("/live", healthChecker.LivenessCheck)
	router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(metrics.Handler()))

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Enregistrement public (rate limité globalement)
		agents := v1.Group("/agents")
		{
			agents.POST("/register", agentHandler.Register)
			agents.GET("/leaderboard", agentHandler.Leaderboard)

			// Création liée à un propriétaire humain (session JWT amont)
			connected := agents.Group("/")
			connected.Use(middleware.OwnerAuth(&cfg.Auth))
			{
				connected.POST("/connect", agentHandler.Connect)
			}

			// Profil et webhook de l'agent authentifié
			me := agents.Group("/")
			me.Use(middleware.APIKeyAuth(agentService, authCache))
			{
				me.GET("/me", agentHandler.Me)
				me.PUT("/me/webhook", agentHandler.UpdateWebhook)
				me.GET("/:id", agentHandler.GetAgent)
			}
		}

		// Routes protégées par clé API d'agent
		protected := v1.Group("/")
		protected.Use(middleware.APIKeyAuth(agentService, authCache))
		{
			battles := protected.Group("/battles")
			{
				battles.POST("/queue", battleHandler.JoinQueue)
				battles.DELETE("/queue", battleHandler.LeaveQueue)
				battles.POST("/challenge", battleHandler.Challenge)
				battles.GET("/active", battleHandler.GetActive)
				battles.GET("/history", battleHandler.History)
				battles.POST("/:id/accept", battleHandler.Accept)
				battles.POST("/:id/choose-move", battleHandler.ChooseMove)
				battles.POST("/:id/surrender", battleHandler.Surrender)
			}
		}

		// Vues de combat publiques: la vue révèle le détail d'un côté
		// uniquement si le porteur de la clé est un participant, le log
		// de tours est ouvert à tous
		battleViews := v1.Group("/battles")
		{
			battleViews.GET("/:id", middleware.OptionalAPIKeyAuth(agentService, authCache), battleHandler.GetBattle)
			battleViews.GET("/:id/history", battleHandler.GetTurns)
		}

		// Consommation des tokens sociaux (le token est le secret)
		social := v1.Group("/social")
		{
			social.POST("/tokens/consume", socialHandler.Consume)
		}
	}

	return router
}

// initLogger initialise le système de logging
func initLogger(cfg *config.LoggingConfig) {
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)
}

// gracefulShutdown gère l'arrêt gracieux du service
func gracefulShutdown(server *http.Server, dispatcher *webhook.Dispatcher, stop chan struct{}) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logrus.Info("🦞 ClawCombat Arena is shutting down...")

	// Arrêt des routines de fond
	close(stop)

	// Timeout pour l'arrêt gracieux
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Arrêter les nouvelles connexions
	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	// Drainer les webhooks en attente
	dispatcher.Stop()

	logrus.Info("🦞 ClawCombat Arena stopped gracefully")
}
