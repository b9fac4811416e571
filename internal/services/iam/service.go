// Package iam centralizes identity operations: registration, login, session
// issue/lookup/revocation, and role administration.
//
// Authentication re-reads the user's role from the database on every request.
// There is deliberately no caching here: a role change must be visible on the
// very next request, so the session row never carries authorization state.
package iam

import (
	"context"
	"errors"
	"net/http"

	"github.com/teamtask/taskapi/internal/auth"
	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/teamtask/taskapi/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for unknown email or wrong password.
	// The two cases are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when registering an already-registered email.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrAccountBanned is returned when a banned user attempts to log in.
	ErrAccountBanned = errors.New("account is banned")

	// ErrSessionInvalid covers every session authentication failure:
	// unknown token, revoked, expired, or banned account.
	ErrSessionInvalid = errors.New("invalid session")

	// ErrRoleAlreadyChosen rejects a second self-service role assignment.
	ErrRoleAlreadyChosen = errors.New("role has already been chosen")

	// ErrNameRequired rejects registration without a display name.
	ErrNameRequired = errors.New("name is required")

	// ErrInvalidEmail rejects registration with a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrPasswordRequired rejects registration without a password.
	ErrPasswordRequired = errors.New("password is required")
)

// AuthRequest carries the request credentials handed to AuthenticateRequest.
type AuthRequest struct {
	Cookies []*http.Cookie
}

// Service provides identity and access management operations.
type Service interface {
	// AuthenticateRequest resolves the session cookie to a Principal.
	//
	// Returns:
	//   - (principal, nil): authentication successful
	//   - (nil, nil): no credentials present (unauthenticated request)
	//   - (nil, error): credentials present but invalid
	//
	// The principal's role is loaded from the user directory during this
	// call; it is never read from the session row.
	AuthenticateRequest(ctx context.Context, req AuthRequest) (*auth.Principal, error)

	// Register creates a new user with the default role and a bcrypt
	// password hash.
	Register(ctx context.Context, name, email, password string) (*models.User, error)

	// Login verifies email/password credentials.
	Login(ctx context.Context, email, password string) (*models.User, error)

	// CreateSession issues a new session for a user. Returns the session
	// record and the unhashed bearer token to set as a cookie; only the
	// SHA-256 hash of the token is stored.
	CreateSession(ctx context.Context, userID, userAgent, ipAddress string) (*models.Session, string, error)

	// RevokeSession invalidates a session by ID.
	RevokeSession(ctx context.Context, sessionID string) error

	// GetSessionByID retrieves a session by its ID.
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// ListUsers returns all users with owned-todo counts, newest first.
	// Admin only.
	ListUsers(ctx context.Context, actor auth.Principal) ([]repository.UserWithTodoCount, error)

	// ChangeUserRole sets another user's role. Admin only; self-change is
	// blocked; the role must be one of the known variants.
	ChangeUserRole(ctx context.Context, actor auth.Principal, targetID, role string) (*models.User, error)

	// ChooseInitialRole lets a freshly registered user pick their own role
	// once. A second attempt is rejected.
	ChooseInitialRole(ctx context.Context, actor auth.Principal, role string) (*models.User, error)
}
