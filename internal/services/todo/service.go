// Package todo orchestrates todo CRUD on top of the permission policy.
// Every mutation is checked against the stored row, never the request body,
// and ownership on create is always taken from the authenticated viewer.
package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teamtask/taskapi/internal/db/bunx"
	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/teamtask/taskapi/internal/repository"
	"github.com/teamtask/taskapi/internal/services/authz"
)

// ErrTitleRequired rejects a create or update whose title is empty or
// whitespace-only after trimming.
var ErrTitleRequired = errors.New("title is required")

// Viewer identifies the authenticated principal a todo operation runs as.
type Viewer struct {
	UserID string
	Role   authz.Role
}

// CreateInput carries the caller-controlled fields of a new todo. Ownership
// is not part of the input; it is always the viewer.
type CreateInput struct {
	Title       string
	Description *string
}

// UpdateInput carries a partial update. Nil pointers mean "field absent";
// only present fields participate in the permission decision.
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Service implements todo operations with per-request permission checks.
type Service struct {
	todos repository.TodoRepository
}

// NewService creates a todo service backed by the given repository.
func NewService(todos repository.TodoRepository) *Service {
	return &Service{todos: todos}
}

// List returns the todos visible to the viewer, newest first: all todos for
// roles with global visibility, otherwise only the viewer's own.
func (s *Service) List(ctx context.Context, viewer Viewer) ([]models.Todo, error) {
	if viewer.Role.CanViewAllTodos() {
		return s.todos.ListAll(ctx)
	}
	return s.todos.ListByOwner(ctx, viewer.UserID)
}

// Create inserts a new todo owned by the viewer.
func (s *Service) Create(ctx context.Context, viewer Viewer, in CreateInput) (*models.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	now := time.Now()
	todo := &models.Todo{
		ID:          bunx.NewUUIDv7(),
		Title:       title,
		Description: normalizeDescription(in.Description),
		UserID:      viewer.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	// Reload to populate the owner relation for the response.
	return s.todos.GetByID(ctx, todo.ID)
}

// Get returns a single todo if the viewer may see it.
func (s *Service) Get(ctx context.Context, viewer Viewer, id string) (*models.Todo, error) {
	todo, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.EvaluateView(viewer.Role, todo.UserID == viewer.UserID); err != nil {
		return nil, err
	}
	return todo, nil
}

// Update applies a partial update to an existing todo. The permission
// decision is made against the stored row and the set of present fields;
// only granted fields are written.
func (s *Service) Update(ctx context.Context, viewer Viewer, id string, in UpdateInput) (*models.Todo, error) {
	todo, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	requested := authz.Fields{
		Title:       in.Title != nil,
		Description: in.Description != nil,
		Completed:   in.Completed != nil,
	}
	grant, err := authz.EvaluateUpdate(viewer.Role, todo.UserID == viewer.UserID, requested)
	if err != nil {
		return nil, err
	}

	if grant.Title {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		todo.Title = title
	}
	if grant.Description {
		todo.Description = normalizeDescription(in.Description)
	}
	if grant.Completed {
		todo.Completed = *in.Completed
	}
	todo.UpdatedAt = time.Now()

	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return todo, nil
}

// Delete removes a todo if the viewer is its owner or may delete any todo.
func (s *Service) Delete(ctx context.Context, viewer Viewer, id string) error {
	todo, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.EvaluateDelete(viewer.Role, todo.UserID == viewer.UserID); err != nil {
		return err
	}
	return s.todos.Delete(ctx, id)
}

// normalizeDescription maps absent and blank descriptions to NULL so the two
// are indistinguishable in storage.
func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
