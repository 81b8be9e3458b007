package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/servana-app/servana-backend/pkg/auth"
	"github.com/servana-app/servana-backend/pkg/config"
	"github.com/servana-app/servana-backend/pkg/enums"
	"github.com/servana-app/servana-backend/pkg/logger"
)

var testJWTConfig = config.JWTConfig{
	Secret: "test-secret",
	Issuer: "servana-test",
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func mintToken(t *testing.T, userID int64, tenantID uuid.UUID, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWTConfig, time.Now(), time.Hour, pkgAuth.AccessTokenPayload{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuth_SeedsIdentity(t *testing.T) {
	tenantID := uuid.New()
	token := mintToken(t, 42, tenantID, enums.MemberRoleClient)

	var gotUserID int64
	var gotTenantID uuid.UUID
	var gotRole enums.MemberRole
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotTenantID = TenantIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Auth(testJWTConfig, testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if gotUserID != 42 {
		t.Fatalf("expected user id 42, got %d", gotUserID)
	}
	if gotTenantID != tenantID {
		t.Fatalf("tenant id not seeded")
	}
	if gotRole != enums.MemberRoleClient {
		t.Fatalf("expected client role, got %q", gotRole)
	}
}

func TestAuth_MissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without credentials")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	Auth(testJWTConfig, testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_BadToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with a bad token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	Auth(testJWTConfig, testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_WrongSecret(t *testing.T) {
	token := mintToken(t, 42, uuid.New(), enums.MemberRoleClient)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with a forged token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	Auth(config.JWTConfig{Secret: "other-secret", Issuer: "servana-test"}, testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireElevated(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RequireElevated(testLogger())(next)

	cases := []struct {
		role enums.MemberRole
		want int
	}{
		{enums.MemberRoleAdmin, http.StatusOK},
		{enums.MemberRoleSuperAdmin, http.StatusOK},
		{enums.MemberRoleClient, http.StatusForbidden},
		{enums.MemberRoleProfessional, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/flags", nil)
		req = req.WithContext(WithIdentity(req.Context(), 1, uuid.New(), tc.role))
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("role %s: expected %d, got %d", tc.role, tc.want, rec.Code)
		}
	}
}

func TestRequireElevated_NoIdentity(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without an identity")
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/flags", nil)
	rec := httptest.NewRecorder()
	RequireElevated(testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
