// Package policy decides who may mutate an authored entity.
package policy

import "github.com/baharkarakas/blog-backend/internal/models"

// Ownership restricts mutation to the author. AdminOverride additionally lets
// admins mutate entities they do not own; it is off unless configured.
type Ownership struct {
	AdminOverride bool
}

// CanModify reports whether actor may update or delete an entity authored by
// authorID. An anonymous actor may never modify anything.
func (o Ownership) CanModify(actor *models.User, authorID string) bool {
	if actor == nil || actor.ID == "" {
		return false
	}
	if actor.ID == authorID {
		return true
	}
	return o.AdminOverride && models.IsAdmin(actor)
}
