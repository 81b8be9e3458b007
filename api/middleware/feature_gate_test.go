package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/servana-app/servana-backend/pkg/enums"
)

type stubFlagChecker struct {
	enabled bool
	err     error
	flag    enums.FeatureFlag
}

func (s *stubFlagChecker) IsEnabled(ctx context.Context, tenantID uuid.UUID, name enums.FeatureFlag) (bool, error) {
	s.flag = name
	return s.enabled, s.err
}

func TestFeatureGateAllowsEnabled(t *testing.T) {
	checker := &stubFlagChecker{enabled: true}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", nil)
	req = req.WithContext(WithIdentity(req.Context(), 1, uuid.New(), enums.MemberRoleClient))
	rec := httptest.NewRecorder()
	FeatureGate(checker, enums.FeatureFlagPayments, testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if checker.flag != enums.FeatureFlagPayments {
		t.Fatalf("expected payments flag checked, got %s", checker.flag)
	}
}

func TestFeatureGateBlocksDisabled(t *testing.T) {
	checker := &stubFlagChecker{enabled: false}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run when the module is switched off")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", nil)
	req = req.WithContext(WithIdentity(req.Context(), 1, uuid.New(), enums.MemberRoleClient))
	rec := httptest.NewRecorder()
	FeatureGate(checker, enums.FeatureFlagPayments, testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestFeatureGateClosesOnReadFailure(t *testing.T) {
	checker := &stubFlagChecker{err: errors.New("db down")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run when the flag cannot be read")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", nil)
	req = req.WithContext(WithIdentity(req.Context(), 1, uuid.New(), enums.MemberRoleClient))
	rec := httptest.NewRecorder()
	FeatureGate(checker, enums.FeatureFlagPayments, testLogger())(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
