package middleware

import (
	"context"

	"github.com/baharkarakas/blog-backend/internal/models"
)

type userKey struct{}

// WithIdentity attaches the acting identity to ctx.
func WithIdentity(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey{}, &u)
}

// IdentityFrom returns the acting identity, or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	if u, ok := ctx.Value(userKey{}).(*models.User); ok && u != nil {
		cp := *u
		return &cp
	}
	return nil
}
