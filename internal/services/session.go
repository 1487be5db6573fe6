package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"hoctap-backend/internal/logger"
	"hoctap-backend/internal/models"
)

// IdentityProvider is the external credential authority. Passwords never
// reach the local database.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (ProviderSession, error)
	SignOut(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (ProviderSession, error)
	CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (string, error)
	DeleteUser(ctx context.Context, userID string) error
}

type ProviderSession struct {
	UserID       string `json:"-"`
	Email        string `json:"-"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

var (
	ErrProviderRejected   = errors.New("identity provider rejected request")
	ErrProviderUserExists = errors.New("identity provider user already exists")
)

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt int64           `json:"expiresAt"`
	Session   ProviderSession `json:"session"`
	Principal Principal       `json:"principal"`
	Profile   interface{}     `json:"user"`
}

type RegisterInput struct {
	Email    string
	Password string
	FullName *string
}

type AuthService struct {
	store    AccountStore
	provider IdentityProvider
	tokens   TokenService
	log      *logger.Logger
}

func NewAuthService(store AccountStore, provider IdentityProvider, tokens TokenService, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{store: store, provider: provider, tokens: tokens, log: log}
}

func (s *AuthService) Tokens() TokenService {
	return s.tokens
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	return s.login(ctx, models.PrincipalAdmin, email, password)
}

func (s *AuthService) UserLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	return s.login(ctx, models.PrincipalUser, email, password)
}

func (s *AuthService) login(ctx context.Context, kind, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrValidation(MsgInvalidPayload,
			FieldError{Field: "email", Message: MsgRequired},
			FieldError{Field: "password", Message: MsgRequired})
	}
	session, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, s.providerError(err, MsgInvalidCredentials)
	}
	principal, profile, err := s.resolveProfile(ctx, kind, session.UserID)
	if err != nil {
		if IsKind(err, KindNoAccess) {
			s.revoke(ctx, session.AccessToken)
		}
		return nil, err
	}
	return s.issue(principal, profile, session)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrValidation(MsgInvalidPayload, FieldError{Field: "refreshToken", Message: MsgRequired})
	}
	session, err := s.provider.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, s.providerError(err, MsgUnauthenticated)
	}
	principal, profile, err := s.resolveProfile(ctx, models.PrincipalAdmin, session.UserID)
	if IsKind(err, KindNoAccess) {
		principal, profile, err = s.resolveProfile(ctx, models.PrincipalUser, session.UserID)
	}
	if err != nil {
		if IsKind(err, KindNoAccess) {
			s.revoke(ctx, session.AccessToken)
		}
		return nil, err
	}
	return s.issue(principal, profile, session)
}

func (s *AuthService) Logout(ctx context.Context, providerAccessToken string) error {
	if strings.TrimSpace(providerAccessToken) == "" {
		return nil
	}
	if err := s.provider.SignOut(ctx, providerAccessToken); err != nil {
		s.log.Warn("provider sign-out failed", "error", err)
	}
	return nil
}

func (s *AuthService) AdminRegister(ctx context.Context, in RegisterInput) (models.AdminUser, error) {
	email, authID, err := s.registerWithProvider(ctx, models.PrincipalAdmin, in)
	if err != nil {
		return models.AdminUser{}, err
	}
	now := time.Now().UTC()
	admin := models.AdminUser{
		ID:         uuid.NewString(),
		AuthUserID: authID,
		Email:      email,
		FullName:   NormalizeOptional(in.FullName),
		Role:       models.PrincipalAdmin,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateAdmin(ctx, &admin); err != nil {
		s.discardProviderUser(ctx, authID)
		return models.AdminUser{}, conflictFromStore(err)
	}
	s.log.Info("admin registered", "admin_id", admin.ID)
	return admin, nil
}

func (s *AuthService) UserRegister(ctx context.Context, in RegisterInput) (models.User, error) {
	email, authID, err := s.registerWithProvider(ctx, models.PrincipalUser, in)
	if err != nil {
		return models.User{}, err
	}
	now := time.Now().UTC()
	user := models.User{
		ID:         uuid.NewString(),
		AuthUserID: authID,
		Email:      email,
		FullName:   NormalizeOptional(in.FullName),
		Role:       models.PrincipalUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		s.discardProviderUser(ctx, authID)
		return models.User{}, conflictFromStore(err)
	}
	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) registerWithProvider(ctx context.Context, kind string, in RegisterInput) (string, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return "", "", ErrValidation(MsgInvalidPayload,
			FieldError{Field: "email", Message: MsgRequired},
			FieldError{Field: "password", Message: MsgRequired})
	}
	var exists bool
	var err error
	if kind == models.PrincipalAdmin {
		exists, err = s.store.AdminEmailExists(ctx, email)
	} else {
		exists, err = s.store.UserEmailExists(ctx, email)
	}
	if err != nil {
		return "", "", err
	}
	if exists {
		return "", "", ErrConflict(MsgEmailExists)
	}
	metadata := map[string]interface{}{"type": kind}
	if name := NormalizeOptional(in.FullName); name != nil {
		metadata["full_name"] = *name
	}
	authID, err := s.provider.CreateUser(ctx, email, in.Password, metadata)
	if err != nil {
		if errors.Is(err, ErrProviderUserExists) {
			return "", "", ErrConflict(MsgEmailExists)
		}
		return "", "", s.providerError(err, MsgRegistrationRejected)
	}
	return email, authID, nil
}

func (s *AuthService) Profile(ctx context.Context, p Principal) (interface{}, error) {
	switch p.Type {
	case models.PrincipalAdmin:
		admin, err := s.store.GetAdmin(ctx, p.ID)
		if err != nil {
			return nil, notFoundOr(err, MsgAccountNotFound)
		}
		return admin, nil
	case models.PrincipalUser:
		user, err := s.store.GetUser(ctx, p.ID)
		if err != nil {
			return nil, notFoundOr(err, MsgAccountNotFound)
		}
		return user, nil
	default:
		return nil, ErrUnauthorized(MsgUnauthenticated)
	}
}

func (s *AuthService) resolveProfile(ctx context.Context, kind, authUserID string) (Principal, interface{}, error) {
	if kind == models.PrincipalAdmin {
		admin, err := s.store.FindAdminByAuthID(ctx, authUserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return Principal{}, nil, ErrNoAccess()
			}
			return Principal{}, nil, err
		}
		return Principal{ID: admin.ID, Email: admin.Email, Role: admin.Role, Type: models.PrincipalAdmin}, admin, nil
	}
	user, err := s.store.FindUserByAuthID(ctx, authUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Principal{}, nil, ErrNoAccess()
		}
		return Principal{}, nil, err
	}
	return Principal{ID: user.ID, Email: user.Email, Role: user.Role, Type: models.PrincipalUser}, user, nil
}

func (s *AuthService) issue(p Principal, profile interface{}, session ProviderSession) (*LoginResult, error) {
	token, exp, err := s.tokens.CreateAccessToken(p)
	if err != nil {
		return nil, WrapError(err, "sign access token")
	}
	return &LoginResult{Token: token, ExpiresAt: exp, Session: session, Principal: p, Profile: profile}, nil
}

func (s *AuthService) revoke(ctx context.Context, accessToken string) {
	if accessToken == "" {
		return
	}
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		s.log.Warn("provider sign-out after denied login failed", "error", err)
	}
}

func (s *AuthService) discardProviderUser(ctx context.Context, authID string) {
	if err := s.provider.DeleteUser(ctx, authID); err != nil {
		s.log.Warn("provider user left without local account", "auth_user_id", authID, "error", err)
	}
}

func (s *AuthService) providerError(err error, rejectedMsg string) error {
	if errors.Is(err, ErrProviderRejected) {
		return ErrUnauthorized(rejectedMsg)
	}
	s.log.Error("identity provider call failed", "error", err)
	return WrapError(err, "identity provider")
}
