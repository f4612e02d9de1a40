package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/app"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the HTTP API",
		RunE:  runServe,
	}

	root := &cobra.Command{
		Use:           "server",
		Short:         "Flashcard deck API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(serve, newMigrateCmd(), newUsersCmd())
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	logging.Setup("production")
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return app.Run(cmd.Context(), cfg)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.AppEnv)

			db, err := database.Connect(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			slog.Info("migrations applied")
			return nil
		},
	}
}

func newUsersCmd() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage identity provider test users",
	}

	var email, password string
	users.PersistentFlags().StringVar(&email, "email", "", "user email (default TEST_USER_EMAIL)")
	users.PersistentFlags().StringVar(&password, "password", "", "user password (default TEST_USER_PASSWORD)")

	seed := func(fn func(context.Context, identity.UserAdmin, string, string) (*identity.Identity, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.AppEnv)
			if cfg.SupabaseURL == "" || cfg.SupabaseServiceRoleKey == "" {
				return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")
			}
			if email == "" {
				email = cfg.TestUserEmail
			}
			if password == "" {
				password = cfg.TestUserPassword
			}

			admin := identity.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.AuthTimeout)
			user, err := fn(cmd.Context(), admin, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user ready: %s (%s)\n", user.Email, user.ID)
			return nil
		}
	}

	users.AddCommand(
		&cobra.Command{
			Use:   "create-test",
			Short: "Create the test user, or reset its password if it exists",
			RunE:  seed(identity.EnsureUser),
		},
		&cobra.Command{
			Use:   "reset-test",
			Short: "Delete and recreate the test user",
			RunE:  seed(identity.ResetUser),
		},
	)
	return users
}
