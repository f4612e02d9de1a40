package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// UserAdmin is the subset of the admin API the seeding helpers need.
type UserAdmin interface {
	CreateUser(ctx context.Context, email, password string) (*Identity, error)
	FindUserByEmail(ctx context.Context, email string) (*Identity, error)
	UpdatePassword(ctx context.Context, id Identity, password string) error
	DeleteUser(ctx context.Context, id Identity) error
}

// EnsureUser creates a confirmed user, or resets the password when the
// email is already registered.
func EnsureUser(ctx context.Context, admin UserAdmin, email, password string) (*Identity, error) {
	user, err := admin.CreateUser(ctx, email, password)
	if err == nil {
		slog.Info("test user created", "user_id", user.ID, "email", email)
		return user, nil
	}
	if !errors.Is(err, ErrEmailTaken) {
		return nil, err
	}

	existing, err := admin.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find existing user: %w", err)
	}
	if err := admin.UpdatePassword(ctx, *existing, password); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	slog.Info("test user password reset", "user_id", existing.ID, "email", email)
	return existing, nil
}

// ResetUser deletes the user if present and creates it again.
func ResetUser(ctx context.Context, admin UserAdmin, email, password string) (*Identity, error) {
	existing, err := admin.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		if err := admin.DeleteUser(ctx, *existing); err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("delete user: %w", err)
		}
		slog.Info("test user deleted", "user_id", existing.ID, "email", email)
	case !errors.Is(err, ErrUserNotFound):
		return nil, fmt.Errorf("find existing user: %w", err)
	}

	user, err := admin.CreateUser(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	slog.Info("test user recreated", "user_id", user.ID, "email", email)
	return user, nil
}
