package httpkit

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the operator resolved by AuthRequired. Handlers read it
// through GetIdentity instead of touching gin context keys.
type Identity struct {
	userID uuid.UUID
	roles  []string
}

// UserID returns the operator id, uuid.Nil when unauthenticated.
func (i Identity) UserID() uuid.UUID { return i.userID }

// Roles returns the roles carried by the access token.
func (i Identity) Roles() []string { return i.roles }

func (i Identity) HasRole(role string) bool { return slices.Contains(i.roles, role) }

func (i Identity) IsAuthenticated() bool { return i.userID != uuid.Nil }

// GetIdentity extracts the operator set by AuthRequired. The zero Identity
// is returned on routes without authentication.
func GetIdentity(c *gin.Context) Identity {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return Identity{}
	}
	uid, ok := raw.(uuid.UUID)
	if !ok {
		return Identity{}
	}
	roles, _ := c.Get(ContextRolesKey)
	list, _ := roles.([]string)
	return Identity{userID: uid, roles: list}
}
