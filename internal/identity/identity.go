// Package identity resolves bearer credentials into caller identities and
// guards handlers that need one.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidToken           = errors.New("invalid or expired token")
)

// Identity is the caller as reported by the identity provider.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Provider exchanges an opaque access token for an identity.
type Provider interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

const localsKey = "identity"

// Set stores id on the request.
func Set(c *fiber.Ctx, id *Identity) {
	c.Locals(localsKey, id)
}

// FromCtx returns the resolved identity, or nil when the request carries none.
func FromCtx(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(localsKey).(*Identity)
	return id
}

// Require returns the caller or ErrAuthenticationRequired.
func Require(c *fiber.Ctx) (*Identity, error) {
	id := FromCtx(c)
	if id == nil {
		return nil, ErrAuthenticationRequired
	}
	return id, nil
}

// BearerToken extracts the token from an Authorization header value.
// It returns "" for a missing or malformed header.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
