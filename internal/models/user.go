package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleAdmin
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole accepts the exact text form of a role in any letter case.
func ParseRole(s string) (Role, error) {
	switch {
	case strings.EqualFold(s, "user"):
		return RoleUser, nil
	case strings.EqualFold(s, "admin"):
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether u holds the admin role. A nil user is never an admin.
func IsAdmin(u *User) bool {
	return u != nil && u.Role == RoleAdmin
}

// IsAdminRole is IsAdmin for the text form of a role.
func IsAdminRole(s string) bool {
	r, err := ParseRole(s)
	return err == nil && r == RoleAdmin
}
