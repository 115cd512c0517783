// Package auth gates the tree API behind a shared password. A successful
// login yields a bearer token; protected routes only ask a TokenVerifier
// whether a token is good, so the token scheme can change without touching
// the HTTP layer.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrAuthDisabled    = errors.New("authentication is not enabled")
	ErrUnknownScheme   = errors.New("unknown token scheme")
)

// Scheme names a token implementation.
type Scheme string

const (
	SchemeOpaque Scheme = "opaque"
	SchemeJWT    Scheme = "jwt"
)

// TokenVerifier decides whether a bearer token grants access.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) bool
}

// TokenIssuer mints a new bearer token after a successful login.
type TokenIssuer interface {
	Issue(ctx context.Context) (string, error)
}

// TokenScheme both issues and verifies tokens.
type TokenScheme interface {
	TokenIssuer
	TokenVerifier
}

// OpaqueTokens hands out random tokens and remembers them in memory. Tokens
// never expire and are forgotten when the process restarts.
type OpaqueTokens struct {
	mu     sync.RWMutex
	issued map[string]struct{}
}

// NewOpaqueTokens creates an empty token set.
func NewOpaqueTokens() *OpaqueTokens {
	return &OpaqueTokens{issued: make(map[string]struct{})}
}

// Issue implements TokenIssuer.
func (o *OpaqueTokens) Issue(ctx context.Context) (string, error) {
	token := uuid.New().String()
	o.mu.Lock()
	o.issued[token] = struct{}{}
	o.mu.Unlock()
	return token, nil
}

// Verify implements TokenVerifier.
func (o *OpaqueTokens) Verify(ctx context.Context, token string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.issued[token]
	return ok
}

const jwtIssuer = "family-tree"

// JWTTokens signs HS256 tokens with the shared secret. With a zero ttl the
// tokens carry no expiry.
type JWTTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewJWTTokens creates a signer keyed by secret.
func NewJWTTokens(secret string, ttl time.Duration) *JWTTokens {
	return &JWTTokens{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue implements TokenIssuer.
func (j *JWTTokens) Issue(ctx context.Context) (string, error) {
	now := j.now()
	claims := jwt.RegisteredClaims{
		Issuer:   jwtIssuer,
		ID:       uuid.New().String(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if j.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify implements TokenVerifier.
func (j *JWTTokens) Verify(ctx context.Context, token string) bool {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) { return j.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithTimeFunc(j.now),
	)
	return err == nil && parsed.Valid
}

// NewScheme builds the token scheme named by s.
func NewScheme(s Scheme, secret string, ttl time.Duration) (TokenScheme, error) {
	switch s {
	case SchemeOpaque, "":
		return NewOpaqueTokens(), nil
	case SchemeJWT:
		return NewJWTTokens(secret, ttl), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// Authenticator checks the shared password and delegates tokens to a scheme.
// An Authenticator with an empty secret is disabled: every route is open.
type Authenticator struct {
	secret []byte
	scheme TokenScheme
}

// NewAuthenticator creates an Authenticator for the given password.
func NewAuthenticator(secret string, scheme TokenScheme) *Authenticator {
	return &Authenticator{secret: []byte(secret), scheme: scheme}
}

// Enabled reports whether a password is configured.
func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// Login exchanges the password for a new token.
func (a *Authenticator) Login(ctx context.Context, password string) (string, error) {
	if !a.Enabled() {
		return "", ErrAuthDisabled
	}
	if subtle.ConstantTimeCompare([]byte(password), a.secret) != 1 {
		return "", ErrInvalidPassword
	}
	return a.scheme.Issue(ctx)
}

// Verify implements TokenVerifier. When auth is disabled every token,
// including the empty one, is accepted.
func (a *Authenticator) Verify(ctx context.Context, token string) bool {
	if !a.Enabled() {
		return true
	}
	if token == "" {
		return false
	}
	return a.scheme.Verify(ctx, token)
}
