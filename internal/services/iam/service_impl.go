package iam

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/teamtask/taskapi/internal/auth"
	"github.com/teamtask/taskapi/internal/db/bunx"
	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/teamtask/taskapi/internal/repository"
	"github.com/teamtask/taskapi/internal/services/authz"
)

// Dependencies holds the repositories the IAM service operates on.
type Dependencies struct {
	Users    repository.UserRepository
	Sessions repository.SessionRepository
}

// Options configures session issuance.
type Options struct {
	// SessionDuration is the lifetime of newly created sessions.
	SessionDuration time.Duration
}

type service struct {
	users           repository.UserRepository
	sessions        repository.SessionRepository
	sessionDuration time.Duration
}

// NewService creates an IAM service backed by the given repositories.
func NewService(deps Dependencies, opts Options) Service {
	if opts.SessionDuration <= 0 {
		opts.SessionDuration = 12 * time.Hour
	}
	return &service{
		users:           deps.Users,
		sessions:        deps.Sessions,
		sessionDuration: opts.SessionDuration,
	}
}

func (s *service) AuthenticateRequest(ctx context.Context, req AuthRequest) (*auth.Principal, error) {
	var token string
	for _, c := range req.Cookies {
		if c.Name == auth.SessionCookieName {
			token = c.Value
			break
		}
	}
	if token == "" {
		return nil, nil
	}

	sess, err := s.sessions.GetByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown token", ErrSessionInvalid)
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if sess.Revoked {
		return nil, fmt.Errorf("%w: revoked", ErrSessionInvalid)
	}
	if auth.IsSessionExpired(sess.ExpiresAt) {
		return nil, fmt.Errorf("%w: expired", ErrSessionInvalid)
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrSessionInvalid)
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user.Banned {
		return nil, fmt.Errorf("%w: account is banned", ErrSessionInvalid)
	}

	role, err := authz.ParseRole(user.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s has unknown role %q: %w", user.ID, user.Role, err)
	}

	// Best-effort activity tracking; never blocks or fails the request.
	go func(sessionID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.sessions.UpdateLastUsed(ctx, sessionID); err != nil {
			log.Printf("WARNING: failed to update session last-used: %v", err)
		}
	}(sess.ID)

	return &auth.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      role,
		SessionID: sess.ID,
	}, nil
}

func (s *service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           bunx.NewUUIDv7(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         string(authz.DefaultRole),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Banned {
		return nil, ErrAccountBanned
	}
	return user, nil
}

func (s *service) CreateSession(ctx context.Context, userID, userAgent, ipAddress string) (*models.Session, string, error) {
	token, tokenHash, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}

	now := time.Now()
	sess := &models.Session{
		ID:         bunx.NewUUIDv7(),
		UserID:     userID,
		TokenHash:  tokenHash,
		ExpiresAt:  now.Add(s.sessionDuration),
		CreatedAt:  now,
		LastUsedAt: now,
	}
	if userAgent != "" {
		sess.UserAgent = &userAgent
	}
	if ipAddress != "" {
		sess.IPAddress = &ipAddress
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	return sess, token, nil
}

func (s *service) RevokeSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *service) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.sessions.GetByID(ctx, sessionID)
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *service) ListUsers(ctx context.Context, actor auth.Principal) ([]repository.UserWithTodoCount, error) {
	if err := authz.EvaluateUserList(actor.Role); err != nil {
		return nil, err
	}
	users, err := s.users.ListWithTodoCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *service) ChangeUserRole(ctx context.Context, actor auth.Principal, targetID, role string) (*models.User, error) {
	if err := authz.EvaluateRoleChange(actor.Role, actor.UserID, targetID); err != nil {
		return nil, err
	}
	parsed, err := authz.ParseRole(role)
	if err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, target.ID, string(parsed)); err != nil {
		return nil, err
	}
	target.Role = string(parsed)
	target.UpdatedAt = time.Now()
	return target, nil
}

func (s *service) ChooseInitialRole(ctx context.Context, actor auth.Principal, role string) (*models.User, error) {
	parsed, err := authz.ParseRole(role)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user.RoleChosenAt != nil {
		return nil, ErrRoleAlreadyChosen
	}

	if err := s.users.MarkRoleChosen(ctx, user.ID, string(parsed)); err != nil {
		return nil, err
	}
	now := time.Now()
	user.Role = string(parsed)
	user.RoleChosenAt = &now
	user.UpdatedAt = now
	return user, nil
}
