package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestAuthenticator(t *testing.T, opts ...Option) *JWTAuthenticator {
	t.Helper()
	a, err := NewJWTAuthenticator("test-secret", append([]Option{WithClock(fixedClock)}, opts...)...)
	if err != nil {
		t.Fatalf("NewJWTAuthenticator() error: %v", err)
	}
	return a
}

func TestNewJWTAuthenticatorRequiresSecret(t *testing.T) {
	if _, err := NewJWTAuthenticator("  "); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	a := newTestAuthenticator(t, WithIssuer("folio"))
	token, err := a.Issue(interfaces.Identity{Subject: "user-1", Name: "Ana", Email: "ana@example.com"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	identity, err := a.Authenticate(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if identity.Subject != "user-1" || identity.Name != "Ana" || identity.Email != "ana@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	a := newTestAuthenticator(t)
	token, err := a.Issue(interfaces.Identity{Subject: "user-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := a.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticateRejectsForeignSecret(t *testing.T) {
	other, err := NewJWTAuthenticator("other-secret", WithClock(fixedClock))
	if err != nil {
		t.Fatalf("NewJWTAuthenticator() error: %v", err)
	}
	token, err := other.Issue(interfaces.Identity{Subject: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	a := newTestAuthenticator(t)
	if _, err := a.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticateRejectsWrongIssuer(t *testing.T) {
	issuer := newTestAuthenticator(t, WithIssuer("elsewhere"))
	token, err := issuer.Issue(interfaces.Identity{Subject: "user-1"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	a := newTestAuthenticator(t, WithIssuer("folio"))
	if _, err := a.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticateRejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}

	a := newTestAuthenticator(t)
	if _, err := a.Authenticate(context.Background(), raw); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticateRejectsMissingSubject(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"name": "anon"}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}

	a := newTestAuthenticator(t)
	if _, err := a.Authenticate(context.Background(), raw); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthenticateRejectsEmptyBearer(t *testing.T) {
	a := newTestAuthenticator(t)
	for _, bearer := range []string{"", "Bearer ", "   "} {
		if _, err := a.Authenticate(context.Background(), bearer); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("bearer %q: expected ErrUnauthenticated, got %v", bearer, err)
		}
	}
}
