package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teamtask/taskapi/internal/auth"
	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/teamtask/taskapi/internal/services/todo"
)

// todoResponse is the wire representation of a todo, including denormalized
// owner identity for list rendering.
type todoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName,omitempty"`
	UserEmail   string    `json:"userEmail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newTodoResponse(t *models.Todo) todoResponse {
	resp := todoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Owner != nil {
		resp.UserName = t.Owner.Name
		resp.UserEmail = t.Owner.Email
	}
	return resp
}

func viewerFromPrincipal(p auth.Principal) todo.Viewer {
	return todo.Viewer{UserID: p.UserID, Role: p.Role}
}

// HandleListTodos handles GET /api/todos.
// Visibility is role-scoped: managers and admins see every todo, regular
// users see only their own. Newest first.
func HandleListTodos(svc todoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.GetUserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		todos, err := svc.List(r.Context(), viewerFromPrincipal(principal))
		if err != nil {
			writeDomainError(w, err, "Todo not found")
			return
		}

		out := make([]todoResponse, 0, len(todos))
		for i := range todos {
			out = append(out, newTodoResponse(&todos[i]))
		}
		respondJSON(w, http.StatusOK, map[string]any{"todos": out})
	}
}

type createTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// HandleCreateTodo handles POST /api/todos. The owner is always the
// authenticated requester; any owner field in the payload is ignored.
func HandleCreateTodo(svc todoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.GetUserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req createTodoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		created, err := svc.Create(r.Context(), viewerFromPrincipal(principal), todo.CreateInput{
			Title:       req.Title,
			Description: req.Description,
		})
		if err != nil {
			writeDomainError(w, err, "Todo not found")
			return
		}
		respondJSON(w, http.StatusCreated, map[string]any{"todo": newTodoResponse(created)})
	}
}

// HandleGetTodo handles GET /api/todos/{id}. Existence is checked before the
// visibility decision, so a missing todo is 404 even for roles that could
// not have seen it.
func HandleGetTodo(svc todoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.GetUserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		found, err := svc.Get(r.Context(), viewerFromPrincipal(principal), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err, "Todo not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"todo": newTodoResponse(found)})
	}
}

type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// HandleUpdateTodo handles PATCH /api/todos/{id}. Absent fields keep their
// stored values; the permission decision covers exactly the fields present.
func HandleUpdateTodo(svc todoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.GetUserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req updateTodoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		updated, err := svc.Update(r.Context(), viewerFromPrincipal(principal), chi.URLParam(r, "id"), todo.UpdateInput{
			Title:       req.Title,
			Description: req.Description,
			Completed:   req.Completed,
		})
		if err != nil {
			writeDomainError(w, err, "Todo not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"todo": newTodoResponse(updated)})
	}
}

// HandleDeleteTodo handles DELETE /api/todos/{id}. Owner or admin only.
func HandleDeleteTodo(svc todoService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.GetUserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := svc.Delete(r.Context(), viewerFromPrincipal(principal), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err, "Todo not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
