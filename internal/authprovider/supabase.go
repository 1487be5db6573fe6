package authprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"hoctap-backend/internal/services"
)

const requestTimeout = 10 * time.Second

var statusPattern = regexp.MustCompile(`response status code (\d{3})`)

// Supabase talks to the GoTrue auth API of a Supabase project. The service
// role key authorizes admin calls such as account creation.
type Supabase struct {
	client     gotrue.Client
	serviceKey string
}

var _ services.IdentityProvider = (*Supabase)(nil)

// NewSupabase builds a client for baseURL, the project URL without the
// /auth/v1 suffix.
func NewSupabase(baseURL, serviceKey string) *Supabase {
	client := gotrue.New("", serviceKey).
		WithCustomGoTrueURL(strings.TrimRight(baseURL, "/") + "/auth/v1").
		WithClient(http.Client{Timeout: requestTimeout})
	return &Supabase{client: client, serviceKey: serviceKey}
}

func (s *Supabase) SignIn(ctx context.Context, email, password string) (services.ProviderSession, error) {
	if err := ctx.Err(); err != nil {
		return services.ProviderSession{}, err
	}
	resp, err := s.client.SignInWithEmailPassword(email, password)
	if err != nil {
		return services.ProviderSession{}, classify("sign in", err)
	}
	return sessionFrom(resp), nil
}

func (s *Supabase) SignOut(ctx context.Context, accessToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if accessToken == "" {
		return nil
	}
	if err := s.client.WithToken(accessToken).Logout(); err != nil {
		return classify("sign out", err)
	}
	return nil
}

func (s *Supabase) Refresh(ctx context.Context, refreshToken string) (services.ProviderSession, error) {
	if err := ctx.Err(); err != nil {
		return services.ProviderSession{}, err
	}
	resp, err := s.client.RefreshToken(refreshToken)
	if err != nil {
		return services.ProviderSession{}, classify("refresh", err)
	}
	return sessionFrom(resp), nil
}

// CreateUser registers a confirmed account and returns its provider id.
func (s *Supabase) CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.client.WithToken(s.serviceKey).AdminCreateUser(types.AdminCreateUserRequest{
		Email:        email,
		Password:     &password,
		EmailConfirm: true,
		UserMetadata: metadata,
	})
	if err != nil {
		return "", classify("create user", err)
	}
	return resp.ID.String(), nil
}

func (s *Supabase) DeleteUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.client.WithToken(s.serviceKey).AdminDeleteUser(types.AdminDeleteUserRequest{UserID: id}); err != nil {
		return classify("delete user", err)
	}
	return nil
}

func sessionFrom(resp *types.TokenResponse) services.ProviderSession {
	expiresAt := resp.ExpiresAt
	if expiresAt == 0 && resp.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix()
	}
	return services.ProviderSession{
		UserID:       resp.User.ID.String(),
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiresAt,
	}
}

// classify maps GoTrue failures onto the provider sentinels. The client only
// reports status codes inside the error text.
func classify(op string, err error) error {
	if errors.Is(err, types.ErrInvalidTokenRequest) {
		return fmt.Errorf("%s: %w", op, services.ErrProviderRejected)
	}
	status := statusOf(err)
	msg := strings.ToLower(err.Error())
	switch {
	case status == http.StatusUnprocessableEntity, status != 0 && strings.Contains(msg, "already"):
		return fmt.Errorf("%s: %w", op, services.ErrProviderUserExists)
	case status == http.StatusBadRequest, status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, services.ErrProviderRejected)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func statusOf(err error) int {
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	code, _ := strconv.Atoi(m[1])
	return code
}
