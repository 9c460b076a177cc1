package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Session      SessionConfig
	Timeout      TimeoutConfig
	Suspension   SuspensionConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret              string
	PendingTokenTTLMinutes int
	DemoPassword           string
	BcryptCost             int
}

// SessionConfig selects and tunes the session repository.
// Backend is one of "memory", "redis", "postgres".
type SessionConfig struct {
	Backend    string
	CookieName string
	TTLMinutes int
}

// TimeoutConfig parameterizes the inactivity state machine.
type TimeoutConfig struct {
	IdleThresholdMinutes int
	WarningMinutes       int
	HardDeadlineMinutes  int
	TickSeconds          int
}

// SuspensionConfig tunes the suspension-flag watcher.
type SuspensionConfig struct {
	PollSeconds    int
	SupportContact string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "portal-session-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              getEnv("AUTH_JWT_SECRET", "dev-secret"),
			PendingTokenTTLMinutes: getEnvAsInt("AUTH_PENDING_TOKEN_TTL_MINUTES", 10),
			DemoPassword:           getEnv("AUTH_DEMO_PASSWORD", "password123"),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Session: SessionConfig{
			Backend:    getEnv("SESSION_BACKEND", "memory"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "portal_session"),
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 720),
		},
		Timeout: TimeoutConfig{
			IdleThresholdMinutes: getEnvAsInt("SESSION_IDLE_THRESHOLD_MINUTES", 25),
			WarningMinutes:       getEnvAsInt("SESSION_WARNING_MINUTES", 5),
			HardDeadlineMinutes:  getEnvAsInt("SESSION_HARD_DEADLINE_MINUTES", 30),
			TickSeconds:          getEnvAsInt("SESSION_TICK_SECONDS", 1),
		},
		Suspension: SuspensionConfig{
			PollSeconds:    getEnvAsInt("SUSPENSION_POLL_SECONDS", 5),
			SupportContact: getEnv("SUSPENSION_SUPPORT_CONTACT", "support@portal.example.com"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TTL returns the session record lifetime used by persistent stores.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// PendingTokenTTL returns the lifetime of the pending-login token.
func (a AuthConfig) PendingTokenTTL() time.Duration {
	if a.PendingTokenTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(a.PendingTokenTTLMinutes) * time.Minute
}

// IdleThreshold returns the idle duration before the warning phase begins.
func (t TimeoutConfig) IdleThreshold() time.Duration {
	return time.Duration(t.IdleThresholdMinutes) * time.Minute
}

// WarningDuration returns the warning countdown length.
func (t TimeoutConfig) WarningDuration() time.Duration {
	return time.Duration(t.WarningMinutes) * time.Minute
}

// HardDeadline returns the absolute idle duration before forced logout.
func (t TimeoutConfig) HardDeadline() time.Duration {
	return time.Duration(t.HardDeadlineMinutes) * time.Minute
}

// TickInterval returns the tracker tick granularity.
func (t TimeoutConfig) TickInterval() time.Duration {
	if t.TickSeconds <= 0 {
		return time.Second
	}
	return time.Duration(t.TickSeconds) * time.Second
}

// PollInterval returns how often the suspension watcher re-reads flags.
func (s SuspensionConfig) PollInterval() time.Duration {
	if s.PollSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.PollSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
