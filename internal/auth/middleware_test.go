package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireUser(t *testing.T) {
	svc := newTestService()
	user := mustRegister(t, svc, "alice@example.com")
	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen *Claims
	handler := svc.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	// No token.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	// Garbage token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}

	// Valid token reaches the handler with claims attached.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("valid token: expected 204, got %d", rec.Code)
	}
	if seen == nil || seen.Sub != user.ID {
		t.Fatalf("expected claims in context, got %+v", seen)
	}
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestService()
	admin := mustRegister(t, svc, "admin@example.com")
	makeAdmin(t, svc, admin.ID)
	peon := mustRegister(t, svc, "peon@example.com")

	handler := svc.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	adminToken, err := svc.IssueToken(admin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	peonToken, err := svc.IssueToken(peon)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+peonToken)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin: expected 204, got %d", rec.Code)
	}
}

func TestClaimsFromEmptyContext(t *testing.T) {
	if claims := ClaimsFromContext(context.Background()); claims != nil {
		t.Fatalf("expected nil claims, got %+v", claims)
	}
}
