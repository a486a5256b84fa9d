// internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/baharkarakas/blog-backend/internal/api/httpx"
	"github.com/baharkarakas/blog-backend/internal/apperr"
	"github.com/baharkarakas/blog-backend/internal/models"
)

const bearerPrefix = "bearer "

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type IdentityLoader interface {
	Identity(ctx context.Context, id string) (models.User, error)
}

// Authenticator resolves the acting identity of a request from its bearer
// token. Whether an anonymous request may continue is decided per route by
// picking Optional or Require.
type Authenticator struct {
	tokens     TokenVerifier
	identities IdentityLoader
}

func NewAuthenticator(tokens TokenVerifier, identities IdentityLoader) *Authenticator {
	return &Authenticator{tokens: tokens, identities: identities}
}

var errMissingToken = errors.New("missing bearer token")

// bearerToken returns the token of an Authorization header, errMissingToken
// when there is none, or an error for any other scheme.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingToken
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// resolve returns (nil, nil) for requests without credentials.
func (a *Authenticator) resolve(r *http.Request) (*models.User, error) {
	token, err := bearerToken(r.Header.Get("Authorization"))
	if errors.Is(err, errMissingToken) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id, err := a.tokens.Verify(token)
	if err != nil {
		slog.Debug("token rejected", "err", err, "request_id", RequestIDFrom(r.Context()))
		return nil, errors.New("invalid token")
	}
	u, err := a.identities.Identity(r.Context(), id)
	if errors.Is(err, apperr.ErrNotFound) {
		// valid signature, but the account is gone
		return nil, errors.New("unknown identity")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (a *Authenticator) handle(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.resolve(r)
		if err != nil {
			if errors.Is(err, apperr.ErrUnavailable) {
				httpx.WriteErr(w, err)
				return
			}
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
			return
		}
		if u == nil {
			if required {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", errMissingToken.Error(), nil)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *u)))
	})
}

// Optional lets anonymous requests through and rejects bad credentials.
func (a *Authenticator) Optional(next http.Handler) http.Handler { return a.handle(next, false) }

// Require rejects requests without a valid token for an existing identity.
func (a *Authenticator) Require(next http.Handler) http.Handler { return a.handle(next, true) }
