// Package testutil holds in-memory stores and fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/services"
)

// NewDB returns a migrated in-memory SQLite store private to t. Foreign
// keys are enforced. The pool has one connection, so code under test must
// not use the outer handle inside a transaction callback.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// Config returns a valid configuration for in-process servers.
func Config() *config.Config {
	return &config.Config{
		Port:                       "0",
		AppEnv:                     "test",
		CORSOrigins:                "*",
		RateLimitPerMinute:         1000,
		GenerateRateLimitPerMinute: 1000,
		DBDriver:                   config.DriverSQLite,
		SQLitePath:                 ":memory:",
		AuthMode:                   config.AuthModeGoTrue,
		SupabaseURL:                "http://gotrue.invalid",
		SupabaseAnonKey:            "anon",
		AuthTimeout:                time.Second,
		OpenAIAPIKey:               "test-key",
		OpenAIModel:                "test-model",
		AITimeout:                  time.Second,
		MaxGeneratedCards:          50,
		LogRetention:               720 * time.Hour,
	}
}

// Tokens maps bearer tokens to identities.
type Tokens map[string]*identity.Identity

func (p Tokens) Resolve(_ context.Context, token string) (*identity.Identity, error) {
	if id, ok := p[token]; ok {
		return id, nil
	}
	return nil, identity.ErrInvalidToken
}

// NewUser returns a fresh identity.
func NewUser(email string) *identity.Identity {
	return &identity.Identity{ID: uuid.New(), Email: email}
}

// StubGenerator returns canned output and records prompts.
type StubGenerator struct {
	Output       *services.GeneratedDeck
	Err          error
	Unconfigured bool

	mu      sync.Mutex
	prompts []string
}

func (g *StubGenerator) Configured() bool { return !g.Unconfigured }

func (g *StubGenerator) Generate(_ context.Context, prompt string) (*services.GeneratedDeck, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Output, nil
}

func (g *StubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *StubGenerator) LastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

// Cards builds n generated cards with the given difficulty.
func Cards(n int, difficulty string) *services.GeneratedDeck {
	out := &services.GeneratedDeck{}
	for i := 0; i < n; i++ {
		out.Cards = append(out.Cards, services.GeneratedCard{
			Front:      fmt.Sprintf("Question %d", i+1),
			Back:       fmt.Sprintf("Answer %d", i+1),
			Difficulty: difficulty,
			Tags:       []string{"generated"},
		})
	}
	return out
}

// FailInserts makes every INSERT into table fail while *on is true.
func FailInserts(t testing.TB, db *gorm.DB, table string, on *bool) {
	t.Helper()
	name := "testutil:fail_" + table + "_" + uuid.NewString()
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if *on && tx.Statement.Table == table {
			_ = tx.AddError(fmt.Errorf("injected insert failure on %s", table))
		}
	})
	require.NoError(t, err)
}
