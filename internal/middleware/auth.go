package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/service"
)

type contextKey string

const claimsKey contextKey = "session-claims"

// TokenParser validates session tokens; implemented by the auth service
type TokenParser interface {
	ParseToken(tokenString string) (*service.Claims, error)
}

// Authenticate parses a Bearer token when present and stores the claims in
// the request context. Requests without a token pass through anonymously.
func Authenticate(parser TokenParser, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.ParseToken(token)
			if err != nil {
				logger.Debug("rejected session token", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous requests
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFrom(r.Context()); !ok {
			writeAuthError(w, http.StatusUnauthorized, "ابتدا وارد حساب کاربری خود شوید")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose session role is not admin. Admin access
// is a role on the account, never a hard-coded identity.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "ابتدا وارد حساب کاربری خود شوید")
			return
		}
		if claims.Role != models.RoleAdmin {
			writeAuthError(w, http.StatusForbidden, "شما به این بخش دسترسی ندارید")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFrom returns the session claims stored by Authenticate
func ClaimsFrom(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok
}

// UserIDFrom returns the signed-in user's id
func UserIDFrom(ctx context.Context) (uint, bool) {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
