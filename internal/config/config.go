package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the portal client.
type Config struct {
	App          AppConfig
	Backend      BackendConfig
	Storage      StorageConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Fallback     FallbackConfig
}

// AppConfig controls the local gateway.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
	// CORSOrigins lists origins allowed to call the gateway from a browser.
	CORSOrigins string
	// RequestTimeoutSeconds bounds each gateway request; zero disables it.
	RequestTimeoutSeconds int
	// Offline switches the facade to the no-backend demo mode.
	Offline bool
}

// BackendConfig describes the helpdesk backend the client talks to.
type BackendConfig struct {
	BaseURL            string
	Generation         string
	TimeoutSeconds     int
	DefaultLanguage    string
	DefaultSource      string
	CategoryNames      map[string]string
	DepartmentNames    map[string]string
	ClarifyThreshold   float64
	HealthCheckOnStart bool
}

// StorageConfig selects the key-value backend behind the session store.
type StorageConfig struct {
	Driver string
	Dir    string
	Prefix string
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

// AuthConfig defines offline demo authentication parameters.
type AuthConfig struct {
	DemoSecret          string
	DemoTokenTTLMinutes int
	BcryptCost          int
}

// NotificationConfig controls notification polling.
type NotificationConfig struct {
	PollIntervalSeconds int
	LogLimit            int
}

// FallbackConfig carries per-endpoint overrides, e.g. "metrics.get=soft_empty".
type FallbackConfig struct {
	Overrides map[string]string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	threshold, err := strconv.ParseFloat(getEnv("HELPDESK_CLARIFY_THRESHOLD", "0.7"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HELPDESK_CLARIFY_THRESHOLD: %w", err)
	}

	generation := strings.ToLower(getEnv("HELPDESK_API_GENERATION", "current"))
	if generation != "current" && generation != "legacy" {
		return nil, fmt.Errorf("invalid HELPDESK_API_GENERATION %q", generation)
	}

	driver := strings.ToLower(getEnv("STORAGE_DRIVER", "file"))
	switch driver {
	case "memory", "file", "redis", "postgres":
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", driver)
	}

	overrides, err := parsePairs(os.Getenv("HELPDESK_FALLBACK"))
	if err != nil {
		return nil, fmt.Errorf("invalid HELPDESK_FALLBACK: %w", err)
	}
	categories, err := parsePairs(os.Getenv("HELPDESK_CATEGORY_NAMES"))
	if err != nil {
		return nil, fmt.Errorf("invalid HELPDESK_CATEGORY_NAMES: %w", err)
	}
	departments, err := parsePairs(os.Getenv("HELPDESK_DEPARTMENT_NAMES"))
	if err != nil {
		return nil, fmt.Errorf("invalid HELPDESK_DEPARTMENT_NAMES: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "127.0.0.1"),
			Port:                  getEnv("APP_PORT", "3004"),
			Version:               getEnv("APP_VERSION", "dev"),
			CORSOrigins:           getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
			RequestTimeoutSeconds: getEnvAsInt("APP_REQUEST_TIMEOUT_SECONDS", 30),
			Offline:               getEnvAsBool("HELPDESK_OFFLINE", false),
		},
		Backend: BackendConfig{
			BaseURL:            strings.TrimRight(getEnv("HELPDESK_API_URL", "http://localhost:8002"), "/"),
			Generation:         generation,
			TimeoutSeconds:     getEnvAsInt("HELPDESK_HTTP_TIMEOUT_SECONDS", 0),
			DefaultLanguage:    getEnv("HELPDESK_TICKET_LANGUAGE", "ru"),
			DefaultSource:      getEnv("HELPDESK_TICKET_SOURCE", "portal"),
			CategoryNames:      categories,
			DepartmentNames:    departments,
			ClarifyThreshold:   threshold,
			HealthCheckOnStart: getEnvAsBool("HELPDESK_HEALTHCHECK_ON_START", true),
		},
		Storage: StorageConfig{
			Driver: driver,
			Dir:    getEnv("STORAGE_DIR", defaultStateDir()),
			Prefix: getEnv("STORAGE_PREFIX", "helpdesk:"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
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
			DemoSecret:          getEnv("AUTH_DEMO_SECRET", "offline-demo-secret"),
			DemoTokenTTLMinutes: getEnvAsInt("AUTH_DEMO_TOKEN_TTL_MINUTES", 24*60),
			BcryptCost:          getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Notification: NotificationConfig{
			PollIntervalSeconds: getEnvAsInt("NOTIFY_POLL_INTERVAL_SECONDS", 10),
			LogLimit:            getEnvAsInt("NOTIFY_LOG_LIMIT", 50),
		},
		Fallback: FallbackConfig{
			Overrides: overrides,
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the gateway per-request timeout; zero means none.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-request timeout; zero means none.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// PollInterval returns the notification polling interval.
func (n NotificationConfig) PollInterval() time.Duration {
	if n.PollIntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n.PollIntervalSeconds) * time.Second
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "helpdesk-portal")
	}
	return ".helpdesk"
}

// parsePairs reads "k=v,k2=v2" lists.
func parsePairs(raw string) (map[string]string, error) {
	out := map[string]string{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("malformed pair %q", part)
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return out, nil
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
