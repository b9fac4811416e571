package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunTodoRepository implements TodoRepository using Bun ORM
type BunTodoRepository struct {
	db *bun.DB
}

// NewBunTodoRepository creates a new Bun-based todo repository
func NewBunTodoRepository(db *bun.DB) *BunTodoRepository {
	return &BunTodoRepository{db: db}
}

// Create inserts a new todo into the database
func (r *BunTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	_, err := r.db.NewInsert().
		Model(todo).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

// GetByID retrieves a todo by ID with its owner loaded
func (r *BunTodoRepository) GetByID(ctx context.Context, id string) (*models.Todo, error) {
	todo := new(models.Todo)
	err := r.db.NewSelect().
		Model(todo).
		Relation("Owner").
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("todo %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

// Update persists the mutable fields of an existing todo
func (r *BunTodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	todo.UpdatedAt = time.Now()
	result, err := r.db.NewUpdate().
		Model(todo).
		Column("title", "description", "completed", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("todo %s: %w", todo.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a todo by ID
func (r *BunTodoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.NewDelete().
		Model((*models.Todo)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListAll retrieves every todo with owners loaded, newest first
func (r *BunTodoRepository) ListAll(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.NewSelect().
		Model(&todos).
		Relation("Owner").
		Order("t.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// ListByOwner retrieves the todos owned by one user, newest first
func (r *BunTodoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.NewSelect().
		Model(&todos).
		Relation("Owner").
		Where("t.user_id = ?", ownerID).
		Order("t.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos by owner: %w", err)
	}
	return todos, nil
}
