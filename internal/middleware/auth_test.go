package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bazaarchi/storefront/internal/models"
	"github.com/bazaarchi/storefront/internal/service"
	"github.com/golang-jwt/jwt/v5"
)

// stubParser maps raw token strings to claims
type stubParser struct {
	tokens map[string]*service.Claims
}

func (s *stubParser) ParseToken(tokenString string) (*service.Claims, error) {
	claims, ok := s.tokens[tokenString]
	if !ok {
		return nil, errors.New("bad token")
	}
	return claims, nil
}

func newStubParser() *stubParser {
	return &stubParser{tokens: map[string]*service.Claims{
		"customer-token": {
			Phone:            "09123456789",
			Role:             models.RoleCustomer,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "7"},
		},
		"admin-token": {
			Phone:            "09351112233",
			Role:             models.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
		},
	}}
}

// echoUserID terminates the chain and reports what the context resolved to
func echoUserID(t *testing.T, gotID *uint, gotOK *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotID, *gotOK = UserIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func runChain(t *testing.T, authHeader string, guards ...func(http.Handler) http.Handler) (*httptest.ResponseRecorder, uint, bool) {
	t.Helper()

	var gotID uint
	var gotOK bool
	handler := echoUserID(t, &gotID, &gotOK)
	for i := len(guards) - 1; i >= 0; i-- {
		handler = guards[i](handler)
	}
	handler = Authenticate(newStubParser(), slog.New(slog.NewTextHandler(io.Discard, nil)))(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr, gotID, gotOK
}

func TestAuthenticate_ValidToken(t *testing.T) {
	rr, gotID, gotOK := runChain(t, "Bearer customer-token")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !gotOK || gotID != 7 {
		t.Errorf("user id = %d (ok %v), want 7", gotID, gotOK)
	}
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	for name, header := range map[string]string{
		"no header":     "",
		"not bearer":    "Basic abc",
		"garbage token": "Bearer nope",
	} {
		rr, _, gotOK := runChain(t, header)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", name, rr.Code, http.StatusOK)
		}
		if gotOK {
			t.Errorf("%s: expected anonymous context", name)
		}
	}
}

func TestRequireUser(t *testing.T) {
	rr, _, _ := runChain(t, "", RequireUser)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	rr, gotID, _ := runChain(t, "Bearer customer-token", RequireUser)
	if rr.Code != http.StatusOK {
		t.Errorf("signed in: status = %d, want %d", rr.Code, http.StatusOK)
	}
	if gotID != 7 {
		t.Errorf("user id = %d, want 7", gotID)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"customer", "Bearer customer-token", http.StatusForbidden},
		{"admin", "Bearer admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, _, _ := runChain(t, tt.header, RequireAdmin)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}
