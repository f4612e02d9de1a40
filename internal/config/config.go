package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Credential resolution modes.
const (
	AuthModeGoTrue = "gotrue"
	AuthModeJWT    = "jwt"
)

// DotenvFiles are loaded in order before the environment is parsed.
// Variables already present in the environment win.
var DotenvFiles = []string{".env.local", ".env"}

var portPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

type Config struct {
	// Server
	Port                       string `envconfig:"PORT" default:"8080"`
	AppEnv                     string `envconfig:"APP_ENV" default:"development"`
	CORSOrigins                string `envconfig:"CORS_ORIGINS" default:"*"`
	RateLimitPerMinute         int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	GenerateRateLimitPerMinute int    `envconfig:"GENERATE_RATE_LIMIT_PER_MINUTE" default:"10"`

	// Database
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"flashdeck"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"flashdeck.db"`

	// Identity provider
	AuthMode               string        `envconfig:"AUTH_MODE" default:"gotrue"`
	SupabaseURL            string        `envconfig:"SUPABASE_URL"`
	SupabaseAnonKey        string        `envconfig:"SUPABASE_ANON_KEY"`
	SupabaseServiceRoleKey string        `envconfig:"SUPABASE_SERVICE_ROLE_KEY"`
	SupabaseJWTSecret      string        `envconfig:"SUPABASE_JWT_SECRET"`
	AuthTimeout            time.Duration `envconfig:"AUTH_TIMEOUT" default:"10s"`

	// AI provider (OpenAI-compatible chat completions)
	OpenAIAPIKey      string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIModel       string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	AITimeout         time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	MaxGeneratedCards int           `envconfig:"MAX_GENERATED_CARDS" default:"50"`

	// Observability
	SentryDSN              string        `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate float64       `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"0.2"`
	LogRetention           time.Duration `envconfig:"LOG_RETENTION" default:"720h"`

	// Test user seeding (CLI only)
	TestUserEmail    string `envconfig:"TEST_USER_EMAIL" default:"test@example.com"`
	TestUserPassword string `envconfig:"TEST_USER_PASSWORD" default:"test123"`
}

// Load reads dotenv files, parses the environment and validates the result.
func Load() (*Config, error) {
	if err := loadDotenv(DotenvFiles...); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv parses the process environment without touching dotenv files.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadDotenv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	postgres := c.DBDriver == DriverPostgres
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Match(portPattern)),
		validation.Field(&c.DBDriver, validation.Required, validation.In(DriverPostgres, DriverSQLite)),
		validation.Field(&c.DBHost, validation.When(postgres, validation.Required)),
		validation.Field(&c.DBPassword, validation.When(postgres, validation.Required)),
		validation.Field(&c.DBName, validation.When(postgres, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(c.DBDriver == DriverSQLite, validation.Required)),
		validation.Field(&c.AuthMode, validation.Required, validation.In(AuthModeGoTrue, AuthModeJWT)),
		validation.Field(&c.SupabaseURL, validation.When(c.AuthMode == AuthModeGoTrue, validation.Required)),
		validation.Field(&c.SupabaseAnonKey, validation.When(c.AuthMode == AuthModeGoTrue, validation.Required)),
		validation.Field(&c.SupabaseJWTSecret, validation.When(c.AuthMode == AuthModeJWT, validation.Required)),
		validation.Field(&c.MaxGeneratedCards, validation.Required, validation.Min(1), validation.Max(200)),
		validation.Field(&c.RateLimitPerMinute, validation.Required, validation.Min(1)),
		validation.Field(&c.GenerateRateLimitPerMinute, validation.Required, validation.Min(1)),
		validation.Field(&c.SentryTracesSampleRate, validation.Min(0.0), validation.Max(1.0)),
	)
}

// GenerationConfigured reports whether provider credentials are present.
func (c *Config) GenerationConfigured() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}
