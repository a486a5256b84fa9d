package policy

import (
	"testing"

	"github.com/baharkarakas/blog-backend/internal/models"
)

func TestCanModify(t *testing.T) {
	author := &models.User{ID: "a", Role: models.RoleUser}
	other := &models.User{ID: "b", Role: models.RoleUser}
	admin := &models.User{ID: "c", Role: models.RoleAdmin}

	cases := []struct {
		name  string
		p     Ownership
		actor *models.User
		want  bool
	}{
		{"author", Ownership{}, author, true},
		{"non-author", Ownership{}, other, false},
		{"admin without override", Ownership{}, admin, false},
		{"admin with override", Ownership{AdminOverride: true}, admin, true},
		{"non-admin with override", Ownership{AdminOverride: true}, other, false},
		{"anonymous", Ownership{AdminOverride: true}, nil, false},
		{"empty id", Ownership{}, &models.User{}, false},
	}
	for _, tc := range cases {
		if got := tc.p.CanModify(tc.actor, "a"); got != tc.want {
			t.Fatalf("%s: CanModify = %v, want %v", tc.name, got, tc.want)
		}
	}
}
