package access

import (
	"fmt"

	"fakie/cmd/identity"
)

// Action is a mutation on an owned record.
type Action uint8

const (
	ActionUpdate Action = iota + 1
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// Policy decides who may mutate spots and gear.
//
// Update: the owner or an admin. Delete: DeleteRole or above, regardless of ownership.
type Policy struct {
	DeleteRole identity.Role
}

// DefaultPolicy restricts deletes to admins.
func DefaultPolicy() Policy {
	return Policy{DeleteRole: identity.RoleAdmin}
}

// CanMutate reports whether id may perform action on a record owned by ownerID.
func (p Policy) CanMutate(id Identity, ownerID string, action Action) bool {
	if id.AccountID == "" || !id.Role.Valid() {
		return false
	}
	switch action {
	case ActionUpdate:
		if id.Role.AtLeast(identity.RoleAdmin) {
			return true
		}
		return ownerID != "" && ownerID == id.AccountID
	case ActionDelete:
		return id.Role.AtLeast(p.DeleteRole)
	default:
		return false
	}
}
