package middleware

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/identity"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Credentials picks the resolver for cfg.AuthMode. Neither variant rejects a
// request; handlers decide with identity.Require.
func Credentials(cfg *config.Config, provider identity.Provider) fiber.Handler {
	if cfg.AuthMode == config.AuthModeJWT {
		return JWTCredentials(cfg.SupabaseJWTSecret)
	}
	return Authenticate(provider)
}

// Authenticate exchanges the bearer token with provider. Any failure leaves
// the request anonymous.
func Authenticate(provider identity.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := identity.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Next()
		}

		id, err := provider.Resolve(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) {
				slog.Debug("bearer token rejected", "path", c.Path())
			} else {
				slog.Warn("identity provider lookup failed",
					"path", c.Path(),
					"trace_id", c.Locals("requestid"),
					"error", err,
				)
			}
			return c.Next()
		}

		identity.Set(c, id)
		return c.Next()
	}
}

// JWTCredentials verifies provider-issued HS256 access tokens locally.
func JWTCredentials(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return c.Next()
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.Next()
			}
			if id, err := identity.FromClaims(claims); err == nil {
				identity.Set(c, id)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if !errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				slog.Debug("access token rejected", "path", c.Path(), "error", err)
			}
			return c.Next()
		},
	})
}
