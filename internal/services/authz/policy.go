package authz

import "errors"

// Denial reasons. Each denial is a distinct sentinel so the request boundary
// can surface a specific message while still classifying via errors.Is.
var (
	// ErrManagerFieldsDenied rejects a non-owner manager update that touches
	// title or description. The whole request is rejected even if a permitted
	// completed change rides along.
	ErrManagerFieldsDenied = errors.New("managers can only mark todos as complete, not edit title or description")

	// ErrEditDenied rejects a regular user updating a todo they do not own.
	ErrEditDenied = errors.New("you don't have permission to edit this todo")

	// ErrDeleteDenied rejects deletion by anyone who is neither owner nor admin.
	ErrDeleteDenied = errors.New("you don't have permission to delete this todo")

	// ErrViewDenied rejects reading a todo outside the requester's visibility.
	ErrViewDenied = errors.New("you don't have permission to view this todo")

	// ErrAdminRequired rejects admin-only operations for other roles.
	ErrAdminRequired = errors.New("admin access required")

	// ErrSelfRoleChange blocks admins from changing their own role.
	ErrSelfRoleChange = errors.New("cannot change your own role")
)

// IsDenial reports whether err is a policy denial (as opposed to a
// validation failure or an infrastructure error).
func IsDenial(err error) bool {
	for _, denial := range []error{
		ErrManagerFieldsDenied,
		ErrEditDenied,
		ErrDeleteDenied,
		ErrViewDenied,
		ErrAdminRequired,
		ErrSelfRoleChange,
	} {
		if errors.Is(err, denial) {
			return true
		}
	}
	return false
}

// Fields identifies which todo fields a mutation request includes.
type Fields struct {
	Title       bool
	Description bool
	Completed   bool
}

// Grant lists the fields a permitted mutation may apply. Fields outside the
// grant keep their stored values.
type Grant struct {
	Title       bool
	Description bool
	Completed   bool
}

// EvaluateUpdate decides whether an update against an existing todo is
// allowed and which of the requested fields may change.
//
//  1. Owner or admin: full access, every requested field is granted.
//  2. Manager (necessarily non-owner here): requests containing title or
//     description are rejected outright; otherwise only the completed field
//     is granted and anything else falls back to the stored value.
//  3. Regular user on someone else's todo: denied entirely.
func EvaluateUpdate(role Role, isOwner bool, requested Fields) (Grant, error) {
	if isOwner || role.CanEditAnyTodo() {
		return Grant(requested), nil
	}

	if role == RoleManager {
		if requested.Title || requested.Description {
			return Grant{}, ErrManagerFieldsDenied
		}
		return Grant{Completed: requested.Completed && role.CanMarkAnyTodoDone()}, nil
	}

	return Grant{}, ErrEditDenied
}

// EvaluateDelete decides whether the requester may delete an existing todo:
// owner or admin only.
func EvaluateDelete(role Role, isOwner bool) error {
	if isOwner || role.CanDeleteAnyTodo() {
		return nil
	}
	return ErrDeleteDenied
}

// EvaluateView decides whether the requester may read a single todo:
// owner, or a role that can view all todos.
func EvaluateView(role Role, isOwner bool) error {
	if isOwner || role.CanViewAllTodos() {
		return nil
	}
	return ErrViewDenied
}

// EvaluateRoleChange decides whether actor may set target's role. Only admins
// may change roles, and never their own through this path.
func EvaluateRoleChange(actorRole Role, actorID, targetID string) error {
	if !actorRole.CanChangeUserRole() {
		return ErrAdminRequired
	}
	if actorID == targetID {
		return ErrSelfRoleChange
	}
	return nil
}

// EvaluateUserList decides whether actor may list all users.
func EvaluateUserList(actorRole Role) error {
	if !actorRole.CanManageUsers() {
		return ErrAdminRequired
	}
	return nil
}
