package client

import (
	"context"
	"sync"
	"time"

	"github.com/baharkarakas/blog-backend/internal/models"
	"github.com/baharkarakas/blog-backend/internal/policy"
)

type State uint8

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the client side view of who is signed in. Expiry is checked on
// every read, so an expired session reads as Anonymous without a timer.
type Session struct {
	mu        sync.RWMutex
	user      *models.User
	token     string
	expiresAt time.Time

	now    func() time.Time
	policy policy.Ownership
}

type SessionOption func(*Session)

func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithSessionPolicy must match the server's ownership policy for CanModify to
// predict its answers.
func WithSessionPolicy(p policy.Ownership) SessionOption {
	return func(s *Session) { s.policy = p }
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Authenticate moves the session to Authenticated.
func (s *Session) Authenticate(u models.User, token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.token = token
	s.expiresAt = expiresAt
}

// Logout drops the identity and token.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user, s.token, s.expiresAt = nil, "", time.Time{}
}

// live reports whether an unexpired identity is held; callers hold the lock.
func (s *Session) live() bool {
	return s.user != nil && s.token != "" && s.now().Before(s.expiresAt)
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.live() {
		return Authenticated
	}
	return Anonymous
}

// User returns a copy of the signed in identity, or nil when anonymous.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.live() {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.live() {
		return "", false
	}
	return s.token, true
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// setUser refreshes the identity without touching the token.
func (s *Session) setUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		s.user = &u
	}
}

func (s *Session) IsAdmin() bool {
	return models.IsAdmin(s.User())
}

// CanModify tells whether edit and delete controls should be offered for a
// post written by authorID.
func (s *Session) CanModify(authorID string) bool {
	return s.policy.CanModify(s.User(), authorID)
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session carried by ctx, or nil.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
