// internal/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the fixed lifetime of an identity token. There is no refresh
// flow; clients log in again once it elapses.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken covers bad signatures, expired tokens and malformed input.
var ErrInvalidToken = errors.New("invalid token")

type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*TokenManager)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(tm *TokenManager) { tm.now = now }
}

func NewTokenManager(secret, issuer string, opts ...Option) *TokenManager {
	tm := &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    TokenTTL,
		now:    time.Now,
	}
	for _, o := range opts {
		o(tm)
	}
	return tm
}

type Claims struct {
	jwt.RegisteredClaims
}

// Issue signs a token for identityID that expires TokenTTL from now.
func (tm *TokenManager) Issue(identityID string) (string, time.Time, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return "", time.Time{}, errors.New("identity id is required")
	}
	now := tm.now().UTC().Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify returns the identity id bound to token. Every failure is reported as
// ErrInvalidToken; the cause is kept in the chain for logging.
func (tm *TokenManager) Verify(token string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: subject missing", ErrInvalidToken)
	}
	return claims.Subject, nil
}
