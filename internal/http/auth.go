package httpapi

import (
	"context"
	"net/http"
	"strings"

	"hoctap-backend/internal/services"
)

type contextKey string

const ctxPrincipal contextKey = "principal"

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

func WithAuth(tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				WriteError(w, http.StatusUnauthorized, services.MsgUnauthenticated)
				return
			}
			principal, err := tokens.ParseToken(tokenStr)
			if err != nil {
				status, msg := http.StatusUnauthorized, services.MsgUnauthenticated
				if serr, ok := services.AsServiceError(err); ok {
					status, msg = serr.Status, serr.Message
				}
				WriteError(w, status, msg)
				return
			}
			ctx := context.WithValue(r.Context(), ctxPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentPrincipal(r *http.Request) (services.Principal, bool) {
	p, ok := r.Context().Value(ctxPrincipal).(services.Principal)
	return p, ok
}

// RequireAdmin trusts the claims alone; no database round trip.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := CurrentPrincipal(r)
		if !ok {
			WriteError(w, http.StatusUnauthorized, services.MsgUnauthenticated)
			return
		}
		if !p.IsAdmin() {
			WriteError(w, http.StatusForbidden, services.MsgForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := CurrentPrincipal(r)
		if !ok {
			WriteError(w, http.StatusUnauthorized, services.MsgUnauthenticated)
			return
		}
		if !p.IsUser() {
			WriteError(w, http.StatusForbidden, services.MsgForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
