package identity

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// FromClaims builds an identity from a verified provider access token.
// The subject must be the user's UUID.
func FromClaims(claims jwt.MapClaims) (*Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return &Identity{ID: id, Email: email}, nil
}
