package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

const adminPageSize = 100

var _ UserAdmin = (*AdminClient)(nil)

// AdminClient talks to the GoTrue admin API with the service-role key.
// It is used by the CLI only.
type AdminClient struct {
	client *resty.Client
}

type adminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type adminUserList struct {
	Users []adminUser `json:"users"`
}

type gotrueError struct {
	Code      interface{} `json:"code"`
	ErrorCode string      `json:"error_code"`
	Msg       string      `json:"msg"`
	Message   string      `json:"message"`
}

func (e gotrueError) text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

func NewAdminClient(baseURL, serviceRoleKey string, timeout time.Duration) *AdminClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("apikey", serviceRoleKey).
		SetAuthToken(serviceRoleKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &AdminClient{client: c}
}

// CreateUser creates a confirmed email/password user.
func (a *AdminClient) CreateUser(ctx context.Context, email, password string) (*Identity, error) {
	var user adminUser
	var apiErr gotrueError
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"email":         email,
			"password":      password,
			"email_confirm": true,
		}).
		SetResult(&user).
		SetError(&apiErr).
		Post("/auth/v1/admin/users")
	if err != nil {
		return nil, fmt.Errorf("create user request: %w", err)
	}
	if resp.IsError() {
		if isEmailTaken(resp.StatusCode(), apiErr) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user status %d: %s", resp.StatusCode(), apiErr.text())
	}
	return toIdentity(user)
}

// FindUserByEmail pages through the user list until email matches.
func (a *AdminClient) FindUserByEmail(ctx context.Context, email string) (*Identity, error) {
	for page := 1; ; page++ {
		var list adminUserList
		resp, err := a.client.R().
			SetContext(ctx).
			SetQueryParam("page", fmt.Sprint(page)).
			SetQueryParam("per_page", fmt.Sprint(adminPageSize)).
			SetResult(&list).
			Get("/auth/v1/admin/users")
		if err != nil {
			return nil, fmt.Errorf("list users request: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("list users status %d: %s", resp.StatusCode(), resp.String())
		}
		for _, u := range list.Users {
			if strings.EqualFold(u.Email, email) {
				return toIdentity(u)
			}
		}
		if len(list.Users) < adminPageSize {
			return nil, ErrUserNotFound
		}
	}
}

func (a *AdminClient) UpdatePassword(ctx context.Context, user Identity, password string) error {
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"password": password}).
		Put("/auth/v1/admin/users/" + user.ID.String())
	if err != nil {
		return fmt.Errorf("update user request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrUserNotFound
	}
	if resp.IsError() {
		return fmt.Errorf("update user status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (a *AdminClient) DeleteUser(ctx context.Context, user Identity) error {
	resp, err := a.client.R().
		SetContext(ctx).
		Delete("/auth/v1/admin/users/" + user.ID.String())
	if err != nil {
		return fmt.Errorf("delete user request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrUserNotFound
	}
	if resp.IsError() {
		return fmt.Errorf("delete user status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func isEmailTaken(status int, e gotrueError) bool {
	if e.ErrorCode == "email_exists" || e.Code == "email_exists" {
		return true
	}
	return status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(e.text()), "registered")
}

func toIdentity(u adminUser) (*Identity, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", u.ID, err)
	}
	return &Identity{ID: id, Email: u.Email}, nil
}
