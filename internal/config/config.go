package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/spec-kit/okta-import/internal/domain"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Okta         OktaConfig
	Provisioning ProvisioningConfig
	Import       ImportConfig
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
	MigrationsDir  string
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

// AuthConfig defines administrator authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	BootstrapName         string
	BootstrapEmail        string
	BootstrapPassword     string
}

// OktaConfig holds the Okta management API connection values.
type OktaConfig struct {
	OrgURL                string
	APIToken              string
	RequestTimeoutSeconds int
	RateLimitMaxRetries   int
	Activate              bool
	CreateAsProvider      bool
}

// ProvisioningConfig holds the administrator supplied defaults for new accounts.
type ProvisioningConfig struct {
	DefaultFirstName string
	DefaultLastName  string
	DefaultPassword  string
	DefaultQuestion  string
	DefaultAnswer    string
	DefaultAppID     string
}

// ImportConfig toggles the optional import behaviors.
type ImportConfig struct {
	DropInvalidEmails      bool
	SkipExisting           bool
	CheckPasswordPerEmail  bool
	AccountCacheTTLSeconds int
	MaxEmailsPerBatch      int
	ListLimit              int
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
			Name:                  getEnv("APP_NAME", "okta-import"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 120),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
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
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapName:         getEnv("ADMIN_BOOTSTRAP_NAME", "Administrator"),
			BootstrapEmail:        os.Getenv("ADMIN_BOOTSTRAP_EMAIL"),
			BootstrapPassword:     os.Getenv("ADMIN_BOOTSTRAP_PASSWORD"),
		},
		Okta: OktaConfig{
			OrgURL:                os.Getenv("OKTA_ORG_URL"),
			APIToken:              os.Getenv("OKTA_API_TOKEN"),
			RequestTimeoutSeconds: getEnvAsInt("OKTA_REQUEST_TIMEOUT_SECONDS", 30),
			RateLimitMaxRetries:   getEnvAsInt("OKTA_RATE_LIMIT_MAX_RETRIES", 2),
			Activate:              getEnvAsBool("OKTA_ACTIVATE", false),
			CreateAsProvider:      getEnvAsBool("OKTA_CREATE_AS_PROVIDER", false),
		},
		Provisioning: ProvisioningConfig{
			DefaultFirstName: os.Getenv("OKTA_DEFAULT_FNAME"),
			DefaultLastName:  os.Getenv("OKTA_DEFAULT_LNAME"),
			DefaultPassword:  os.Getenv("OKTA_DEFAULT_PASSWORD"),
			DefaultQuestion:  os.Getenv("OKTA_DEFAULT_QUESTION"),
			DefaultAnswer:    os.Getenv("OKTA_DEFAULT_ANSWER"),
			DefaultAppID:     os.Getenv("OKTA_DEFAULT_APP_ID"),
		},
		Import: ImportConfig{
			DropInvalidEmails:      getEnvAsBool("IMPORT_DROP_INVALID_EMAILS", true),
			SkipExisting:           getEnvAsBool("IMPORT_SKIP_EXISTING", true),
			CheckPasswordPerEmail:  getEnvAsBool("IMPORT_CHECK_PASSWORD_PER_EMAIL", false),
			AccountCacheTTLSeconds: getEnvAsInt("IMPORT_ACCOUNT_CACHE_TTL_SECONDS", 300),
			MaxEmailsPerBatch:      getEnvAsInt("IMPORT_MAX_EMAILS_PER_BATCH", 1000),
			ListLimit:              getEnvAsInt("IMPORT_LIST_LIMIT", 50),
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

// Enabled reports whether enough Okta settings are present to build a client.
func (o OktaConfig) Enabled() bool {
	return o.OrgURL != "" && o.APIToken != ""
}

// Defaults returns a snapshot of the provisioning defaults.
func (p ProvisioningConfig) Defaults() domain.ProvisioningDefaults {
	return domain.ProvisioningDefaults{
		FirstName: p.DefaultFirstName,
		LastName:  p.DefaultLastName,
		Password:  p.DefaultPassword,
		Question:  p.DefaultQuestion,
		Answer:    p.DefaultAnswer,
		AppID:     p.DefaultAppID,
	}
}

// AccountCacheTTL returns how long account lookups stay cached.
func (i ImportConfig) AccountCacheTTL() time.Duration {
	if i.AccountCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(i.AccountCacheTTLSeconds) * time.Second
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
