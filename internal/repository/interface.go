package repository

import (
	"context"
	"errors"

	"github.com/teamtask/taskapi/internal/db/models"
)

// ErrNotFound is wrapped by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// UserWithTodoCount is a user row joined with the count of todos they own.
// The extend tag keeps it bound to the users table rather than a derived one.
type UserWithTodoCount struct {
	models.User `bun:",extend"`

	TodoCount int `bun:"todo_count,scanonly"`
}

// UserRepository exposes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role string) error
	MarkRoleChosen(ctx context.Context, id string, role string) error
	List(ctx context.Context) ([]models.User, error)
	ListWithTodoCounts(ctx context.Context) ([]UserWithTodoCount, error)
}

// TodoRepository exposes persistence operations for todos.
type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) error
	GetByID(ctx context.Context, id string) (*models.Todo, error)
	Update(ctx context.Context, todo *models.Todo) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]models.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error)
}

// SessionRepository exposes persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	UpdateLastUsed(ctx context.Context, id string) error
	Revoke(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) error
}
