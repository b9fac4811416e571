package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teamtask/taskapi/internal/auth"
)

// adminUserResponse is a user row in the admin listing, including the count
// of todos they own.
type adminUserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Banned    bool      `json:"banned"`
	TodoCount int       `json:"todoCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// HandleListUsers handles GET /api/admin/users. Admin only; newest first.
func HandleListUsers(svc identityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.GetUserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		users, err := svc.ListUsers(r.Context(), principal)
		if err != nil {
			writeDomainError(w, err, "User not found")
			return
		}

		out := make([]adminUserResponse, 0, len(users))
		for _, u := range users {
			out = append(out, adminUserResponse{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				Role:      u.Role,
				Banned:    u.Banned,
				TodoCount: u.TodoCount,
				CreatedAt: u.CreatedAt,
			})
		}
		respondJSON(w, http.StatusOK, map[string]any{"users": out})
	}
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// HandleChangeUserRole handles PATCH /api/admin/users/{id}/role. Admin only;
// admins cannot change their own role through this endpoint.
func HandleChangeUserRole(svc identityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.GetUserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req changeRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		updated, err := svc.ChangeUserRole(r.Context(), principal, chi.URLParam(r, "id"), req.Role)
		if err != nil {
			writeDomainError(w, err, "User not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"user": adminUserResponse{
				ID:        updated.ID,
				Name:      updated.Name,
				Email:     updated.Email,
				Role:      updated.Role,
				Banned:    updated.Banned,
				CreatedAt: updated.CreatedAt,
			},
		})
	}
}
