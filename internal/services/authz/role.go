// Package authz implements the permission policy for the task list.
//
// Every decision is a pure function over (requester role, ownership, requested
// fields). Nothing here touches HTTP or the database, which keeps the policy
// auditable and testable in isolation. Callers are expected to resolve the
// requester's role from the user directory for the current request before
// evaluating; roles must never be cached across requests.
package authz

import (
	"errors"
	"fmt"
)

// Role is the closed set of permission tiers.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// DefaultRole is assigned at registration.
const DefaultRole = RoleUser

// ErrUnknownRole is returned for role values outside the closed set.
var ErrUnknownRole = errors.New("invalid role")

// ParseRole validates a role value against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleManager, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Roles lists all valid roles, for validation messages and CLI help.
func Roles() []Role {
	return []Role{RoleUser, RoleManager, RoleAdmin}
}

// capability is the per-role capability table. Policy decisions are defined
// in terms of these predicates rather than role comparisons scattered across
// handlers.
type capability struct {
	viewAllTodos   bool
	markAnyDone    bool
	editAnyTodo    bool
	deleteAnyTodo  bool
	manageUsers    bool
	changeUserRole bool
}

var capabilities = map[Role]capability{
	RoleUser: {},
	RoleManager: {
		viewAllTodos: true,
		markAnyDone:  true,
	},
	RoleAdmin: {
		viewAllTodos:   true,
		markAnyDone:    true,
		editAnyTodo:    true,
		deleteAnyTodo:  true,
		manageUsers:    true,
		changeUserRole: true,
	},
}

// CanViewAllTodos reports whether the role may list and read todos it does not own.
func (r Role) CanViewAllTodos() bool { return capabilities[r].viewAllTodos }

// CanMarkAnyTodoDone reports whether the role may toggle completion on todos it does not own.
func (r Role) CanMarkAnyTodoDone() bool { return capabilities[r].markAnyDone }

// CanEditAnyTodo reports whether the role may change any field of any todo.
func (r Role) CanEditAnyTodo() bool { return capabilities[r].editAnyTodo }

// CanDeleteAnyTodo reports whether the role may delete todos it does not own.
func (r Role) CanDeleteAnyTodo() bool { return capabilities[r].deleteAnyTodo }

// CanManageUsers reports whether the role may list all users.
func (r Role) CanManageUsers() bool { return capabilities[r].manageUsers }

// CanChangeUserRole reports whether the role may change other users' roles.
func (r Role) CanChangeUserRole() bool { return capabilities[r].changeUserRole }
