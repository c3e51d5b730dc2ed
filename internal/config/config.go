package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is only accepted when APP_ENV is development.
const DefaultJWTSecret = "dev-secret"

// Classifier providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Classifier   ClassifierConfig
	Pagination   PaginationConfig
	IDs          IDConfig
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

// PostgresConfig holds DB connection values. An empty DSN selects the in-memory store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AuthConfig defines admin authentication parameters.
type AuthConfig struct {
	JWTSecret          string
	SessionHours       int
	BcryptCost         int
	AdminPasswordHash  string
	AdminPassword      string
	LoginMaxAttempts   int
	LoginWindowSeconds int
}

// ClassifierConfig configures the remote text-classification call.
type ClassifierConfig struct {
	Provider        string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	BaseURL         string
	TimeoutSeconds  int
	MaxTokens       int
	LocalOnly       bool
}

// PaginationConfig holds default page sizes for listings.
type PaginationConfig struct {
	TicketsPerPage      int
	AdminTicketsPerPage int
	FixedPerPage        int
}

// IDConfig configures the snowflake id generator.
type IDConfig struct {
	NodeID int64
}

// NotificationConfig configures the lifecycle event webhook. An empty URL disables it.
type NotificationConfig struct {
	WebhookURL            string
	WebhookTimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
// When CONFIG_FILE names a YAML file its keys (snake case of the env names) act as a
// lower-precedence source beneath the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(src.getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  src.getEnv("APP_NAME", "helpdesk-triage"),
			Env:                   src.getEnv("APP_ENV", "development"),
			Host:                  src.getEnv("APP_HOST", "0.0.0.0"),
			Port:                  src.getEnv("APP_PORT", "8080"),
			Version:               src.getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: src.getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            src.getEnv("POSTGRES_DSN", ""),
			MaxConns:       int32(src.getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(src.getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  src.getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  src.getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(src.getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(src.getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Enabled:  src.getEnvAsBool("REDIS_ENABLED", true),
			Addr:     src.getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: src.getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:    src.getEnv("LOG_LEVEL", "info"),
			Encoding: src.getEnv("LOG_ENCODING", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:          src.getEnv("AUTH_JWT_SECRET", DefaultJWTSecret),
			SessionHours:       src.getEnvAsInt("SESSION_HOURS", 1),
			BcryptCost:         src.getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AdminPasswordHash:  src.getEnv("ADMIN_PASSWORD_HASH", ""),
			AdminPassword:      src.getEnv("ADMIN_PASSWORD", ""),
			LoginMaxAttempts:   src.getEnvAsInt("AUTH_LOGIN_MAX_ATTEMPTS", 5),
			LoginWindowSeconds: src.getEnvAsInt("AUTH_LOGIN_WINDOW_SECONDS", 900),
		},
		Classifier: ClassifierConfig{
			Provider:        strings.ToLower(src.getEnv("CLASSIFIER_PROVIDER", ProviderOpenAI)),
			OpenAIAPIKey:    src.getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     src.getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			AnthropicAPIKey: src.getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  src.getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			BaseURL:         src.getEnv("CLASSIFIER_BASE_URL", ""),
			TimeoutSeconds:  src.getEnvAsInt("CLASSIFIER_TIMEOUT_SECONDS", 15),
			MaxTokens:       src.getEnvAsInt("CLASSIFIER_MAX_TOKENS", 200),
			LocalOnly:       src.getEnvAsBool("CLASSIFIER_LOCAL_ONLY", false),
		},
		Pagination: PaginationConfig{
			TicketsPerPage:      src.getEnvAsInt("TICKETS_PER_PAGE", 10),
			AdminTicketsPerPage: src.getEnvAsInt("ADMIN_TICKETS_PER_PAGE", 15),
			FixedPerPage:        src.getEnvAsInt("FIXED_PER_PAGE", 15),
		},
		IDs: IDConfig{
			NodeID: int64(src.getEnvAsInt("SNOWFLAKE_NODE_ID", 1)),
		},
		Notification: NotificationConfig{
			WebhookURL:            src.getEnv("NOTIFY_WEBHOOK_URL", ""),
			WebhookTimeoutSeconds: src.getEnvAsInt("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", 5),
		},
	}

	switch cfg.Classifier.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("invalid CLASSIFIER_PROVIDER: %q", cfg.Classifier.Provider)
	}

	if cfg.App.Env != "development" && cfg.Auth.JWTSecret == DefaultJWTSecret {
		return nil, fmt.Errorf("AUTH_JWT_SECRET must be set when APP_ENV is %q", cfg.App.Env)
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

// SessionTTL returns how long an admin token stays valid.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionHours <= 0 {
		return time.Hour
	}
	return time.Duration(a.SessionHours) * time.Hour
}

// LoginWindow returns the failed-login counting window.
func (a AuthConfig) LoginWindow() time.Duration {
	if a.LoginWindowSeconds <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(a.LoginWindowSeconds) * time.Second
}

// WebhookTimeout bounds a single webhook delivery.
func (n NotificationConfig) WebhookTimeout() time.Duration {
	if n.WebhookTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.WebhookTimeoutSeconds) * time.Second
}

// Timeout bounds a single remote classification call. It is always finite.
func (c ClassifierConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// source resolves keys from the environment first, then from an optional YAML file.
type source struct {
	file map[string]string
}

func newSource(path string) (source, error) {
	src := source{file: map[string]string{}}
	if path == "" {
		return src, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return src, fmt.Errorf("read config file %s: %w", path, err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return src, fmt.Errorf("parse config file %s: %w", path, err)
	}
	for key, val := range raw {
		if val == nil {
			continue
		}
		src.file[strings.ToUpper(key)] = fmt.Sprint(val)
	}
	return src, nil
}

func (s source) lookup(key string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return s.file[key]
}

func (s source) getEnv(key, fallback string) string {
	if val := s.lookup(key); val != "" {
		return val
	}
	return fallback
}

func (s source) getEnvAsInt(key string, fallback int) int {
	val := s.lookup(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) getEnvAsBool(key string, fallback bool) bool {
	val := s.lookup(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
