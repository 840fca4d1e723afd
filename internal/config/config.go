package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config structure principale de configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Battle      BattleConfig      `mapstructure:"battle"`
	Matchmaking MatchmakingConfig `mapstructure:"matchmaking"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig configuration du serveur HTTP
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	Debug          bool          `mapstructure:"debug"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig configuration du store SQLite embarqué
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
}

// AuthConfig configuration de l'authentification
type AuthConfig struct {
	// Secret JWT pour les sessions propriétaires (humains)
	JWTSecret      string        `mapstructure:"jwt_secret"`
	ExpirationTime time.Duration `mapstructure:"expiration_time"`
	// Cache de résolution credential -> agent
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// BattleConfig configuration du moteur de combat
type BattleConfig struct {
	TurnTimeout            time.Duration `mapstructure:"turn_timeout"`
	MaxConsecutiveTimeouts int           `mapstructure:"max_consecutive_timeouts"`
	SchedulerTick          time.Duration `mapstructure:"scheduler_tick"`
	ChallengeExpiry        time.Duration `mapstructure:"challenge_expiry"`
	SocialTokenTTL         time.Duration `mapstructure:"social_token_ttl"`
}

// MatchmakingConfig configuration du matchmaking
type MatchmakingConfig struct {
	// Fenêtres ELO élargissantes testées dans l'ordre; 0 = illimitée
	EloWindows    []int         `mapstructure:"elo_windows"`
	DrainInterval time.Duration `mapstructure:"drain_interval"`
}

// WebhookConfig configuration du dispatcher de webhooks
type WebhookConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	QueueSize      int           `mapstructure:"queue_size"`
	Workers        int           `mapstructure:"workers"`
}

// RateLimitConfig configuration du rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	BurstSize         int           `mapstructure:"burst_size"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// MonitoringConfig configuration du monitoring
type MonitoringConfig struct {
	MetricsPath string `mapstructure:"metrics_path"`
	HealthPath  string `mapstructure:"health_path"`
}

// LoggingConfig configuration des logs
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig charge la configuration depuis les variables d'environnement
func LoadConfig() (*Config, error) {
	// Configuration par défaut
	config := &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			Environment:    "development",
			Debug:          true,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			RequestTimeout: 30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Path:         "./data/arena.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			BusyTimeout:  5 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:      "change-me-in-production-minimum-32-characters!!",
			ExpirationTime: 24 * time.Hour,
			CacheSize:      4096,
			CacheTTL:       5 * time.Minute,
		},
		Battle: BattleConfig{
			TurnTimeout:            30 * time.Second,
			MaxConsecutiveTimeouts: 3,
			SchedulerTick:          10 * time.Second,
			ChallengeExpiry:        5 * time.Minute,
			SocialTokenTTL:         24 * time.Hour,
		},
		Matchmaking: MatchmakingConfig{
			EloWindows:    []int{100, 200, 350, 500, 0},
			DrainInterval: 15 * time.Second,
		},
		Webhook: WebhookConfig{
			Timeout:        10 * time.Second,
			MaxRetries:     3,
			InitialBackoff: 1 * time.Second,
			QueueSize:      1024,
			Workers:        8,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
			BurstSize:         20,
			CleanupInterval:   5 * time.Minute,
		},
		Monitoring: MonitoringConfig{
			MetricsPath: "/metrics",
			HealthPath:  "/health",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	// Configuration Viper
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Mapping des variables d'environnement
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.environment", "NODE_ENV")
	viper.BindEnv("server.debug", "SERVER_DEBUG")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	viper.BindEnv("server.request_timeout", "SERVER_REQUEST_TIMEOUT")
	viper.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")

	viper.BindEnv("database.path", "DATABASE_URL")
	viper.BindEnv("database.max_open_conns", "DATABASE_MAX_OPEN_CONNS")
	viper.BindEnv("database.max_idle_conns", "DATABASE_MAX_IDLE_CONNS")
	viper.BindEnv("database.busy_timeout", "DATABASE_BUSY_TIMEOUT")

	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("auth.expiration_time", "JWT_EXPIRATION_TIME")
	viper.BindEnv("auth.cache_size", "AUTH_CACHE_SIZE")
	viper.BindEnv("auth.cache_ttl", "AUTH_CACHE_TTL")

	viper.BindEnv("battle.turn_timeout", "BATTLE_TURN_TIMEOUT")
	viper.BindEnv("battle.max_consecutive_timeouts", "BATTLE_MAX_CONSECUTIVE_TIMEOUTS")
	viper.BindEnv("battle.scheduler_tick", "BATTLE_SCHEDULER_TICK")
	viper.BindEnv("battle.challenge_expiry", "BATTLE_CHALLENGE_EXPIRY")
	viper.BindEnv("battle.social_token_ttl", "BATTLE_SOCIAL_TOKEN_TTL")

	viper.BindEnv("matchmaking.drain_interval", "MATCHMAKING_DRAIN_INTERVAL")

	viper.BindEnv("webhook.timeout", "WEBHOOK_TIMEOUT")
	viper.BindEnv("webhook.max_retries", "WEBHOOK_MAX_RETRIES")
	viper.BindEnv("webhook.initial_backoff", "WEBHOOK_INITIAL_BACKOFF")
	viper.BindEnv("webhook.queue_size", "WEBHOOK_QUEUE_SIZE")
	viper.BindEnv("webhook.workers", "WEBHOOK_WORKERS")

	viper.BindEnv("rate_limit.requests_per_minute", "RATE_LIMIT_REQUESTS_PER_MINUTE")
	viper.BindEnv("rate_limit.burst_size", "RATE_LIMIT_BURST_SIZE")

	viper.BindEnv("monitoring.metrics_path", "MONITORING_METRICS_PATH")
	viper.BindEnv("monitoring.health_path", "MONITORING_HEALTH_PATH")

	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("logging.format", "LOG_FORMAT")

	// Charger le fichier de configuration s'il existe
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Merger avec la configuration par défaut
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validation
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate valide la configuration
func (c *Config) Validate() error {
	// Validation serveur
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Validation JWT
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters long")
	}

	// Validation database
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	// Validation du moteur de combat
	if c.Battle.TurnTimeout <= 0 {
		return fmt.Errorf("turn timeout must be positive")
	}
	if c.Battle.MaxConsecutiveTimeouts < 1 {
		return fmt.Errorf("max consecutive timeouts must be at least 1")
	}
	if c.Battle.SchedulerTick <= 0 || c.Battle.SchedulerTick > 10*time.Second {
		return fmt.Errorf("scheduler tick must be positive and at most 10s")
	}

	// Validation matchmaking
	if len(c.Matchmaking.EloWindows) == 0 {
		return fmt.Errorf("at least one ELO window is required")
	}

	// Validation webhook
	if c.Webhook.MaxRetries < 1 {
		return fmt.Errorf("webhook max retries must be at least 1")
	}
	if c.Webhook.Workers < 1 {
		return fmt.Errorf("webhook workers must be at least 1")
	}

	return nil
}

// IsProduction retourne true si l'environnement est production
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// GetDSN retourne la chaîne de connexion SQLite avec les pragmas requis
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=%d",
		c.Path, c.BusyTimeout.Milliseconds(),
	)
}
