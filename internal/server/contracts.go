package server

import (
	"context"

	"github.com/teamtask/taskapi/internal/auth"
	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/teamtask/taskapi/internal/repository"
	"github.com/teamtask/taskapi/internal/services/iam"
	"github.com/teamtask/taskapi/internal/services/todo"
)

// identityService defines the exact IAM methods used by server handlers.
// Declaring the contract here keeps handler tests free of the IAM
// implementation while proving at compile time that iam.Service satisfies it.
type identityService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	CreateSession(ctx context.Context, userID, userAgent, ipAddress string) (*models.Session, string, error)
	RevokeSession(ctx context.Context, sessionID string) error
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
	ListUsers(ctx context.Context, actor auth.Principal) ([]repository.UserWithTodoCount, error)
	ChangeUserRole(ctx context.Context, actor auth.Principal, targetID, role string) (*models.User, error)
	ChooseInitialRole(ctx context.Context, actor auth.Principal, role string) (*models.User, error)
}

var _ identityService = (iam.Service)(nil)

// todoService defines the todo operations used by server handlers.
type todoService interface {
	List(ctx context.Context, viewer todo.Viewer) ([]models.Todo, error)
	Create(ctx context.Context, viewer todo.Viewer, in todo.CreateInput) (*models.Todo, error)
	Get(ctx context.Context, viewer todo.Viewer, id string) (*models.Todo, error)
	Update(ctx context.Context, viewer todo.Viewer, id string, in todo.UpdateInput) (*models.Todo, error)
	Delete(ctx context.Context, viewer todo.Viewer, id string) error
}

var _ todoService = (*todo.Service)(nil)
