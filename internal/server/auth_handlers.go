package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/teamtask/taskapi/internal/auth"
	"github.com/teamtask/taskapi/internal/db/models"
)

// userResponse is the wire representation of an account.
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister handles POST /auth/register. Creates an account with the
// default role and signs the new user in immediately.
func HandleRegister(svc identityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := svc.Register(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			writeDomainError(w, err, "User not found")
			return
		}

		sess, token, err := svc.CreateSession(r.Context(), user.ID, r.UserAgent(), r.RemoteAddr)
		if err != nil {
			writeDomainError(w, err, "User not found")
			return
		}
		setSessionCookie(w, r, token, sess.ExpiresAt)
		respondJSON(w, http.StatusCreated, map[string]any{"user": newUserResponse(user)})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /auth/login.
func HandleLogin(svc identityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeAuthFailure(w, err)
			return
		}

		sess, token, err := svc.CreateSession(r.Context(), user.ID, r.UserAgent(), r.RemoteAddr)
		if err != nil {
			writeDomainError(w, err, "User not found")
			return
		}
		setSessionCookie(w, r, token, sess.ExpiresAt)
		respondJSON(w, http.StatusOK, map[string]any{"user": newUserResponse(user)})
	}
}

// HandleLogout handles POST /auth/logout. Revokes the current session and
// clears the cookie. Safe to call while unauthenticated.
func HandleLogout(svc identityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if principal, ok := auth.GetUserFromContext(r.Context()); ok {
			if err := svc.RevokeSession(r.Context(), principal.SessionID); err != nil {
				writeDomainError(w, err, "Session not found")
				return
			}
		}
		clearSessionCookie(w, r)
		respondJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// whoamiResponse pairs the current account with its session metadata.
type whoamiResponse struct {
	User    userResponse    `json:"user"`
	Session sessionResponse `json:"session"`
}

type sessionResponse struct {
	ID         string    `json:"id"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

// HandleWhoami handles GET /api/auth/whoami.
func HandleWhoami(svc identityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.GetUserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		sess, err := svc.GetSessionByID(r.Context(), principal.SessionID)
		if err != nil {
			writeDomainError(w, err, "Session not found")
			return
		}

		respondJSON(w, http.StatusOK, whoamiResponse{
			User: userResponse{
				ID:    principal.UserID,
				Name:  principal.Name,
				Email: principal.Email,
				Role:  string(principal.Role),
			},
			Session: sessionResponse{
				ID:         sess.ID,
				ExpiresAt:  sess.ExpiresAt,
				CreatedAt:  sess.CreatedAt,
				LastUsedAt: sess.LastUsedAt,
			},
		})
	}
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole handles POST /api/auth/set-role: the one-time self-service
// role pick offered right after registration.
func HandleSetRole(svc identityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.GetUserFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req setRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Role == "" {
			respondError(w, http.StatusBadRequest, "Role is required")
			return
		}

		user, err := svc.ChooseInitialRole(r.Context(), principal, req.Role)
		if err != nil {
			writeDomainError(w, err, "User not found")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"user":    newUserResponse(user),
			"success": true,
		})
	}
}
