package auth

import (
	"context"
	"testing"
	"time"

	"quizdeck/internal/domain"
	"quizdeck/internal/infra/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "s3cret", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.Role != domain.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash != "" {
		t.Fatalf("password hash leaked: %+v", user)
	}

	token, logged, err := svc.Login(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || logged.ID != user.ID {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, logged)
	}
	if logged.PasswordHash != "" {
		t.Fatalf("password hash leaked on login")
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Sub != user.ID || claims.Role != domain.RoleUser || claims.Name != "Alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "s3cret", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "s3cret"); err != domain.ErrInvalidCredentials {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice@example.com", "s3cret", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice@example.com", "other", "Imposter"); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	svc := newTestService()
	other := NewService(memory.NewStore(), "different-secret", time.Hour)

	token, err := other.IssueToken(domain.User{ID: "u1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Parse(token); err == nil {
		t.Fatalf("expected foreign token to be rejected")
	}
}

func TestPromoteRequiresAdmin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	admin := mustRegister(t, svc, "admin@example.com")
	makeAdmin(t, svc, admin.ID)
	peon := mustRegister(t, svc, "peon@example.com")
	target := mustRegister(t, svc, "target@example.com")

	if err := svc.Promote(ctx, peon.ID, target.ID); err != domain.ErrForbidden {
		t.Fatalf("non-admin promote: expected ErrForbidden, got %v", err)
	}
	if err := svc.Promote(ctx, admin.ID, target.ID); err != nil {
		t.Fatalf("admin promote: %v", err)
	}
	if !svc.IsAdmin(ctx, target.ID) {
		t.Fatalf("expected target promoted to admin")
	}
	if err := svc.Promote(ctx, admin.ID, "missing"); err != domain.ErrUserNotFound {
		t.Fatalf("promote missing user: expected ErrUserNotFound, got %v", err)
	}
}

func TestDemoteRules(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	admin := mustRegister(t, svc, "admin@example.com")
	makeAdmin(t, svc, admin.ID)
	other := mustRegister(t, svc, "other@example.com")
	makeAdmin(t, svc, other.ID)

	if err := svc.Demote(ctx, admin.ID, admin.ID); err != domain.ErrSelfDemotion {
		t.Fatalf("self demotion: expected ErrSelfDemotion, got %v", err)
	}
	if err := svc.Demote(ctx, admin.ID, other.ID); err != nil {
		t.Fatalf("demote: %v", err)
	}
	if svc.IsAdmin(ctx, other.ID) {
		t.Fatalf("expected demoted user to lose admin")
	}
}

func TestAdminsListsOnlyAdmins(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	admin := mustRegister(t, svc, "admin@example.com")
	makeAdmin(t, svc, admin.ID)
	peon := mustRegister(t, svc, "peon@example.com")

	if _, err := svc.Admins(ctx, peon.ID); err != domain.ErrForbidden {
		t.Fatalf("non-admin list: expected ErrForbidden, got %v", err)
	}

	admins, err := svc.Admins(ctx, admin.ID)
	if err != nil {
		t.Fatalf("admins: %v", err)
	}
	if len(admins) != 1 || admins[0].ID != admin.ID {
		t.Fatalf("unexpected admin list: %+v", admins)
	}
	if admins[0].PasswordHash != "" {
		t.Fatalf("password hash leaked in admin list")
	}
}

func TestStaleTokenRoleIsIgnored(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	admin := mustRegister(t, svc, "admin@example.com")
	makeAdmin(t, svc, admin.ID)
	user := mustRegister(t, svc, "user@example.com")

	// Token minted before promotion still carries role user; the guard
	// decides on the stored role, not the claim.
	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != domain.RoleUser {
		t.Fatalf("expected stale role in claims, got %q", claims.Role)
	}

	if err := svc.Promote(ctx, admin.ID, user.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !svc.IsAdmin(ctx, claims.Sub) {
		t.Fatalf("expected fresh role lookup to see the promotion")
	}
}

func newTestService() *Service {
	return NewService(memory.NewStore(), "test-secret", time.Hour)
}

func mustRegister(t *testing.T, svc *Service, email string) domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), email, "s3cret", email)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func makeAdmin(t *testing.T, svc *Service, userID string) {
	t.Helper()
	if err := svc.setRole(context.Background(), userID, domain.RoleAdmin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
}
