package auth

import (
	"context"

	"github.com/teamtask/taskapi/internal/services/authz"
)

// Principal captures identity metadata propagated through the request context.
//
// Role is resolved from the user directory during authentication of the
// current request. It is never carried over from a previous request, so a
// role change is visible on the very next request.
type Principal struct {
	// UserID references the backing users row (UUID).
	UserID string
	// Email is the user's email address.
	Email string
	// Name is the user's display name.
	Name string
	// Role is the user's current role, freshly loaded for this request.
	Role authz.Role
	// SessionID references the active session row.
	SessionID string
}

type principalContextKey struct{}

// SetUserContext stores the authenticated principal on the context for downstream consumers.
func SetUserContext(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// GetUserFromContext retrieves the authenticated principal from the context.
func GetUserFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(Principal)
	return principal, ok
}
