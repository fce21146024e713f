// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/pkg/types"
)

// MinSecretLength is the shortest accepted HS256 signing key.
const MinSecretLength = 32

// Claims identifies an authenticated user.
type Claims struct {
	UserID    string
	Role      types.Role
	ExpiresAt time.Time
}

// Actor returns the claims as a service actor.
func (c Claims) Actor() types.Actor {
	return types.Actor{UserID: c.UserID, Role: c.Role}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Role types.Role `json:"role"`
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token issuer. secret must be at least
// MinSecretLength bytes.
func NewTokens(secret, issuer string, ttl time.Duration, now func() time.Time) (*Tokens, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, now: now}, nil
}

// Issue signs a session token for u.
func (t *Tokens) Issue(u types.User) (string, time.Time, error) {
	now := t.now().UTC()
	exp := now.Add(t.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Role: u.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return signed, exp, nil
}

// Authenticate verifies token and returns its claims. Tokens signed with
// any algorithm other than HS256 are rejected.
func (t *Tokens) Authenticate(token string) (Claims, error) {
	if token == "" {
		return Claims{}, apperr.ErrUnauthenticated
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, apperr.Wrap(apperr.CodeUnauthenticated, "invalid session token", err)
	}

	if parsed.Issuer != t.issuer {
		return Claims{}, apperr.New(apperr.CodeUnauthenticated, "session token issuer mismatch")
	}
	if parsed.Subject == "" || !parsed.Role.Valid() {
		return Claims{}, apperr.New(apperr.CodeUnauthenticated, "session token is incomplete")
	}
	if parsed.ExpiresAt == nil || !parsed.ExpiresAt.Time.After(t.now()) {
		return Claims{}, apperr.New(apperr.CodeUnauthenticated, "session expired")
	}
	return Claims{UserID: parsed.Subject, Role: parsed.Role, ExpiresAt: parsed.ExpiresAt.Time}, nil
}
