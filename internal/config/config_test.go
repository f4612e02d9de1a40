package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "APP_ENV", "DB_DRIVER", "DB_PASSWORD", "SQLITE_PATH", "AUTH_MODE",
	"SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_JWT_SECRET", "OPENAI_API_KEY",
	"MAX_GENERATED_CARDS", "AI_TIMEOUT",
}

// clearEnv unsets the variables FromEnv reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, AuthModeGoTrue, cfg.AuthMode)
	assert.Equal(t, "flashdeck.db", cfg.SQLitePath)
	assert.Equal(t, 50, cfg.MaxGeneratedCards)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.False(t, cfg.GenerationConfigured())
}

func TestFromEnvValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without password": {"DB_DRIVER": "postgres", "SUPABASE_URL": "u", "SUPABASE_ANON_KEY": "k"},
		"unknown driver":            {"DB_DRIVER": "mysql", "SUPABASE_URL": "u", "SUPABASE_ANON_KEY": "k"},
		"unknown auth mode":         {"DB_DRIVER": "sqlite", "AUTH_MODE": "magic"},
		"gotrue without url":        {"DB_DRIVER": "sqlite", "SUPABASE_ANON_KEY": "k"},
		"jwt without secret":        {"DB_DRIVER": "sqlite", "AUTH_MODE": "jwt"},
		"bad port":                  {"DB_DRIVER": "sqlite", "PORT": "http", "SUPABASE_URL": "u", "SUPABASE_ANON_KEY": "k"},
		"card ceiling":              {"DB_DRIVER": "sqlite", "MAX_GENERATED_CARDS": "0", "SUPABASE_URL": "u", "SUPABASE_ANON_KEY": "k"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnvJWTMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, AuthModeJWT, cfg.AuthMode)
	assert.True(t, cfg.GenerationConfigured())
}

func TestLoadDotenv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	shared := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("OPENAI_API_KEY=from-local\n"), 0o600))
	require.NoError(t, os.WriteFile(shared, []byte("OPENAI_API_KEY=from-shared\nSQLITE_PATH=shared.db\n"), 0o600))

	require.NoError(t, loadDotenv(local, shared, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "from-local", os.Getenv("OPENAI_API_KEY"))
	assert.Equal(t, "shared.db", os.Getenv("SQLITE_PATH"))
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
