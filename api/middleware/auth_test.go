package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/chowpack/chowpack-engine/pkg/auth"
	"github.com/chowpack/chowpack-engine/pkg/config"
	"github.com/chowpack/chowpack-engine/pkg/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func TestAuthSeedsIdentityAndKeepsToken(t *testing.T) {
	t.Parallel()

	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "chowpack"}
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), userID, "unilag", time.Hour)
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	var gotUserID, gotUniversity, gotToken string
	handler := Auth(cfg, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotUniversity = UniversityFromContext(r.Context())
		gotToken = TokenFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUserID != userID.String() || gotUniversity != "unilag" {
		t.Fatalf("identity not seeded: user=%q university=%q", gotUserID, gotUniversity)
	}
	if gotToken != token {
		t.Fatal("raw bearer token must survive for upstream pass-through")
	}
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	t.Parallel()

	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "chowpack"}
	handler := Auth(cfg, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}
}
