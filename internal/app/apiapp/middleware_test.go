package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "github.com/upskillhq/backend/internal/services/auth"
)

func TestAuthMiddlewarePopulatesIdentity(t *testing.T) {
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	token, _, err := jwtManager.GenerateAccessToken(7, "ravi@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/plan", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	AuthMiddleware(jwtManager, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("identity missing in context")
		}
		if identity.AccountID != 7 || identity.Email != "ravi@example.com" {
			t.Fatalf("unexpected identity: %+v", identity)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/v1/plan", nil)
	rr := httptest.NewRecorder()

	AuthMiddleware(jwtManager, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsForgedToken(t *testing.T) {
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	forged := authsvc.NewJWTManager("other-secret", 15*time.Minute)
	token, _, err := forged.GenerateAccessToken(7, "ravi@example.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/plan", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	AuthMiddleware(jwtManager, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not be called with a forged token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}
