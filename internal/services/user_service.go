package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baharkarakas/blog-backend/internal/api/validate"
	"github.com/baharkarakas/blog-backend/internal/apperr"
	"github.com/baharkarakas/blog-backend/internal/auth"
	"github.com/baharkarakas/blog-backend/internal/metrics"
	"github.com/baharkarakas/blog-backend/internal/models"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
)

const minPasswordLen = 6

type TokenIssuer interface {
	Issue(identityID string) (string, time.Time, error)
}

type UserService struct {
	r      repo.Users
	tokens TokenIssuer
}

func NewUserService(r repo.Users, tokens TokenIssuer) *UserService {
	return &UserService{r: r, tokens: tokens}
}

// AuthResult is what register and login hand back to the caller.
type AuthResult struct {
	User      models.User
	Token     string
	ExpiresAt time.Time
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Collect(
		validate.Required("username", username),
		validate.Required("email", email),
		validate.Required("password", password),
		validate.MinLen("username", username, 3),
		validate.Email("email", email),
		validate.MinLen("password", password, minPasswordLen),
	); err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "rejected").Inc()
		return AuthResult{}, invalid(err)
	}

	if _, err := s.r.GetByEmail(ctx, email); err == nil {
		metrics.AuthAttempts.WithLabelValues("register", "rejected").Inc()
		return AuthResult{}, fmt.Errorf("register: %w: user already exists with this email", apperr.ErrConflict)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		metrics.AuthAttempts.WithLabelValues("register", "error").Inc()
		return AuthResult{}, storeErr("register", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.r.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "error").Inc()
		return AuthResult{}, storeErr("register", err)
	}
	metrics.AuthAttempts.WithLabelValues("register", "ok").Inc()
	return s.issue(u)
}

func (s *UserService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Collect(
		validate.Required("email", email),
		validate.Required("password", password),
	); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "rejected").Inc()
		return AuthResult{}, invalid(err)
	}

	u, err := s.r.GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		metrics.AuthAttempts.WithLabelValues("login", "rejected").Inc()
		return AuthResult{}, fmt.Errorf("login: %w: invalid credentials", apperr.ErrUnauthorized)
	}
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "error").Inc()
		return AuthResult{}, storeErr("login", err)
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "rejected").Inc()
		return AuthResult{}, fmt.Errorf("login: %w: invalid credentials", apperr.ErrUnauthorized)
	}
	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	return s.issue(u)
}

func (s *UserService) issue(u models.User) (AuthResult, error) {
	tok, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: u, Token: tok, ExpiresAt: exp}, nil
}

// Identity loads the account behind a verified token.
func (s *UserService) Identity(ctx context.Context, id string) (models.User, error) {
	u, err := s.r.GetByID(ctx, id)
	return u, storeErr("load identity", err)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.r.List(ctx)
	return users, storeErr("list users", err)
}
