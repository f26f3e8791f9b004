package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

type authFake struct {
	session *domain.Session
	err     error
}

func (f authFake) Login(context.Context, string, string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.session
	return &copied, nil
}

type tokenInspectorFake struct {
	userID    int64
	expiresAt time.Time
	err       error
}

func (f tokenInspectorFake) Inspect(string) (int64, time.Time, error) {
	return f.userID, f.expiresAt, f.err
}

type revocationsFake struct {
	revoked map[string]time.Time
	err     error
}

func (f *revocationsFake) Revoke(_ context.Context, token string, until time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[token] = until
	return nil
}

func (f *revocationsFake) IsRevoked(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[token]
	return ok, nil
}

var sessionNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func newSessionUseCase(auth authFake, tokens tokenInspectorFake) *SessionUseCase {
	uc := NewSessionUseCase(auth, tokens, &revocationsFake{revoked: map[string]time.Time{}})
	uc.now = func() time.Time { return sessionNow }
	return uc
}

func TestLoginFillsClaims(t *testing.T) {
	uc := newSessionUseCase(
		authFake{session: &domain.Session{Token: "tok"}},
		tokenInspectorFake{userID: 12, expiresAt: sessionNow.Add(time.Hour)},
	)

	session, err := uc.Login(context.Background(), " ms.ortiz@school.example ", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.UserID != 12 || session.Email != "ms.ortiz@school.example" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if !session.ExpiresAt.Equal(sessionNow.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", session.ExpiresAt)
	}
}

func TestLoginValidatesInput(t *testing.T) {
	uc := newSessionUseCase(authFake{session: &domain.Session{Token: "tok"}}, tokenInspectorFake{})
	if _, err := uc.Login(context.Background(), "", "secret"); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := uc.Login(context.Background(), "a@b.c", ""); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginPropagatesUnauthorized(t *testing.T) {
	uc := newSessionUseCase(
		authFake{err: domain.WrapError(domain.ErrUnauthorized, "login", errors.New("status 401"))},
		tokenInspectorFake{},
	)
	if _, err := uc.Login(context.Background(), "a@b.c", "wrong"); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthenticateAndLogout(t *testing.T) {
	uc := newSessionUseCase(authFake{}, tokenInspectorFake{userID: 12, expiresAt: sessionNow.Add(time.Hour)})

	session, err := uc.Authenticate(context.Background(), "tok")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if session.UserID != 12 {
		t.Fatalf("unexpected session: %+v", session)
	}

	if err := uc.Logout(context.Background(), session); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := uc.Authenticate(context.Background(), "tok"); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("revoked token must be rejected, got %v", err)
	}
	if _, err := uc.Authenticate(context.Background(), "other"); err != nil {
		t.Fatalf("other tokens stay valid: %v", err)
	}
}

func TestAuthenticateRejectsExpiredAndMissing(t *testing.T) {
	uc := newSessionUseCase(authFake{}, tokenInspectorFake{userID: 12, expiresAt: sessionNow.Add(-time.Minute)})
	if _, err := uc.Authenticate(context.Background(), "tok"); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expired token must be rejected, got %v", err)
	}
	if _, err := uc.Authenticate(context.Background(), "  "); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("missing token must be rejected, got %v", err)
	}

	bad := newSessionUseCase(authFake{}, tokenInspectorFake{err: errors.New("token is malformed")})
	if _, err := bad.Authenticate(context.Background(), "garbage"); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("unparseable token must be rejected, got %v", err)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	uc := newSessionUseCase(authFake{}, tokenInspectorFake{})
	if err := uc.Logout(context.Background(), nil); !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogoutRevokesUntilExpiry(t *testing.T) {
	revocations := &revocationsFake{revoked: map[string]time.Time{}}
	uc := NewSessionUseCase(authFake{}, tokenInspectorFake{}, revocations)
	uc.now = func() time.Time { return sessionNow }

	if err := uc.Logout(context.Background(), &domain.Session{Token: "a", ExpiresAt: sessionNow.Add(time.Hour)}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := uc.Logout(context.Background(), &domain.Session{Token: "b"}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !revocations.revoked["a"].Equal(sessionNow.Add(time.Hour)) {
		t.Fatalf("token a must be revoked until it expires, got %v", revocations.revoked["a"])
	}
	if !revocations.revoked["b"].Equal(sessionNow.Add(revokedTokenFallbackTTL)) {
		t.Fatalf("token without expiry must use the fallback ttl, got %v", revocations.revoked["b"])
	}
}

func TestAuthenticateFailsClosedWhenRevocationsUnavailable(t *testing.T) {
	revocations := &revocationsFake{err: domain.WrapError(domain.ErrTemporary, "check session revocation", errors.New("redis down"))}
	uc := NewSessionUseCase(authFake{}, tokenInspectorFake{userID: 1, expiresAt: sessionNow.Add(time.Hour)}, revocations)
	uc.now = func() time.Time { return sessionNow }

	if _, err := uc.Authenticate(context.Background(), "tok"); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}
