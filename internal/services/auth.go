package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hoctap-backend/internal/models"
)

type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Type  string `json:"type"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.PrincipalAdmin || p.Type == models.PrincipalAdmin
}

func (p Principal) IsUser() bool {
	return p.Type == models.PrincipalUser
}

type TokenService struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

func (t TokenService) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

func (t TokenService) CreateAccessToken(p Principal) (string, int64, error) {
	now := t.now()
	exp := now.Add(t.TTL)
	claims := jwt.MapClaims{
		"iss":   t.Issuer,
		"sub":   p.ID,
		"id":    p.ID,
		"email": p.Email,
		"role":  p.Role,
		"type":  p.Type,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	return signed, exp.Unix(), err
}

func (t TokenService) ParseToken(tokenStr string) (Principal, error) {
	claims := jwt.MapClaims{}
	opts := []jwt.ParserOption{
		jwt.WithIssuer(t.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if t.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(t.now))
	}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrUnauthorized(MsgTokenExpired)
		}
		return Principal{}, ErrUnauthorized(MsgUnauthenticated)
	}
	p := Principal{
		ID:    claimString(claims, "id"),
		Email: claimString(claims, "email"),
		Role:  claimString(claims, "role"),
		Type:  claimString(claims, "type"),
	}
	if p.ID == "" {
		p.ID = claimString(claims, "sub")
	}
	if p.ID == "" || p.Type == "" {
		return Principal{}, ErrUnauthorized(MsgUnauthenticated)
	}
	return p, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	value, ok := claims[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
