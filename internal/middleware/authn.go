// Package middleware provides HTTP middleware for session authentication.
package middleware

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/teamtask/taskapi/internal/auth"
	"github.com/teamtask/taskapi/internal/services/iam"
)

// SessionAuth resolves the session cookie into an authenticated principal and
// stores it in the request context. Requests without credentials pass through
// unauthenticated; requests with bad credentials are rejected with 401 so a
// stale cookie surfaces immediately instead of degrading to anonymous.
//
// The role on the principal is re-read from the user directory on every
// request inside AuthenticateRequest; nothing here caches it.
func SessionAuth(svc iam.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := svc.AuthenticateRequest(r.Context(), iam.AuthRequest{
				Cookies: r.Cookies(),
			})
			if err != nil {
				log.Printf("session authentication failed: %v", err)
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if principal == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.SetUserContext(r.Context(), *principal)))
		})
	}
}

// RequireAuth rejects requests that carry no authenticated principal. It must
// run after SessionAuth.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GetUserFromContext(r.Context()); !ok {
			writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
