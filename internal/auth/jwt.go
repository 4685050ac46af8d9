// Package auth verifies bearer credentials for the upload endpoint. Token
// issuance and session management belong to the identity provider; Issue
// exists for operators and tests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	// ErrUnauthenticated is returned for missing, malformed or unverifiable credentials.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	errSecretRequired  = errors.New("auth: signing secret is required")
)

// Option customises a JWTAuthenticator.
type Option func(*JWTAuthenticator)

// WithIssuer requires tokens to carry iss.
func WithIssuer(issuer string) Option {
	return func(a *JWTAuthenticator) {
		a.issuer = strings.TrimSpace(issuer)
	}
}

// WithClock overrides the time source used for exp/nbf checks.
func WithClock(now func() time.Time) Option {
	return func(a *JWTAuthenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// JWTAuthenticator verifies HS256 tokens signed with a shared secret.
type JWTAuthenticator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

var _ interfaces.Authenticator = (*JWTAuthenticator)(nil)

func NewJWTAuthenticator(secret string, opts ...Option) (*JWTAuthenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errSecretRequired
	}
	a := &JWTAuthenticator{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

// Authenticate parses bearer, which may still carry the "Bearer " prefix.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, bearer string) (interfaces.Identity, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.Identity{}, err
	}
	raw := strings.TrimSpace(bearer)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return interfaces.Identity{}, ErrUnauthenticated
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(a.issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, parserOpts...)
	if err != nil {
		return interfaces.Identity{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if !token.Valid {
		return interfaces.Identity{}, ErrUnauthenticated
	}

	subject, _ := claims.GetSubject()
	if subject == "" {
		return interfaces.Identity{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	identity := interfaces.Identity{
		Subject: subject,
		Claims:  map[string]any(claims),
	}
	identity.Name, _ = claims["name"].(string)
	identity.Email, _ = claims["email"].(string)
	return identity, nil
}

// Issue signs a token for identity valid for ttl.
func (a *JWTAuthenticator) Issue(identity interfaces.Identity, ttl time.Duration) (string, error) {
	if strings.TrimSpace(identity.Subject) == "" {
		return "", fmt.Errorf("auth: subject is required")
	}
	now := a.now()
	claims := jwt.MapClaims{
		"sub": identity.Subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if identity.Name != "" {
		claims["name"] = identity.Name
	}
	if identity.Email != "" {
		claims["email"] = identity.Email
	}
	if a.issuer != "" {
		claims["iss"] = a.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
