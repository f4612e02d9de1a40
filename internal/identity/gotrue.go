package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// GoTrueClient resolves tokens against a GoTrue (Supabase Auth) server.
type GoTrueClient struct {
	client *resty.Client
}

func NewGoTrueClient(baseURL, anonKey string, timeout time.Duration) *GoTrueClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("apikey", anonKey).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &GoTrueClient{client: c}
}

func (g *GoTrueClient) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var user gotrueUser
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("gotrue request: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized, resp.StatusCode() == http.StatusForbidden:
		return nil, ErrInvalidToken
	case resp.StatusCode() != http.StatusOK:
		return nil, fmt.Errorf("gotrue status %d: %s", resp.StatusCode(), resp.String())
	}

	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("gotrue returned invalid user id %q: %w", user.ID, err)
	}
	return &Identity{ID: id, Email: user.Email}, nil
}
