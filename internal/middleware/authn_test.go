package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamtask/taskapi/internal/auth"
	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/teamtask/taskapi/internal/repository"
	"github.com/teamtask/taskapi/internal/services/authz"
	"github.com/teamtask/taskapi/internal/services/iam"
)

// stubIAM implements iam.Service with overridable functions.
type stubIAM struct {
	authenticateFunc func(ctx context.Context, req iam.AuthRequest) (*auth.Principal, error)
}

func (s *stubIAM) AuthenticateRequest(ctx context.Context, req iam.AuthRequest) (*auth.Principal, error) {
	return s.authenticateFunc(ctx, req)
}

func (s *stubIAM) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return nil, nil
}

func (s *stubIAM) Login(ctx context.Context, email, password string) (*models.User, error) {
	return nil, nil
}

func (s *stubIAM) CreateSession(ctx context.Context, userID, userAgent, ipAddress string) (*models.Session, string, error) {
	return nil, "", nil
}

func (s *stubIAM) RevokeSession(ctx context.Context, sessionID string) error { return nil }

func (s *stubIAM) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	return nil, nil
}

func (s *stubIAM) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return nil, nil
}

func (s *stubIAM) ListUsers(ctx context.Context, actor auth.Principal) ([]repository.UserWithTodoCount, error) {
	return nil, nil
}

func (s *stubIAM) ChangeUserRole(ctx context.Context, actor auth.Principal, targetID, role string) (*models.User, error) {
	return nil, nil
}

func (s *stubIAM) ChooseInitialRole(ctx context.Context, actor auth.Principal, role string) (*models.User, error) {
	return nil, nil
}

func TestSessionAuth(t *testing.T) {
	echoPrincipal := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := auth.GetUserFromContext(r.Context()); ok {
			w.Write([]byte(p.Email))
			return
		}
		w.Write([]byte("anonymous"))
	})

	t.Run("attaches principal for a valid session", func(t *testing.T) {
		svc := &stubIAM{authenticateFunc: func(ctx context.Context, req iam.AuthRequest) (*auth.Principal, error) {
			return &auth.Principal{UserID: "u1", Email: "alice@example.com", Role: authz.RoleUser}, nil
		}}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		SessionAuth(svc)(echoPrincipal).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice@example.com", rec.Body.String())
	})

	t.Run("passes through without credentials", func(t *testing.T) {
		svc := &stubIAM{authenticateFunc: func(ctx context.Context, req iam.AuthRequest) (*auth.Principal, error) {
			return nil, nil
		}}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		SessionAuth(svc)(echoPrincipal).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("rejects bad credentials with 401 JSON", func(t *testing.T) {
		svc := &stubIAM{authenticateFunc: func(ctx context.Context, req iam.AuthRequest) (*auth.Principal, error) {
			return nil, iam.ErrSessionInvalid
		}}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		SessionAuth(svc)(echoPrincipal).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Unauthorized", body["error"])
	})
}

func TestRequireAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("blocks anonymous requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		RequireAuth(ok).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("passes authenticated requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
		ctx := auth.SetUserContext(req.Context(), auth.Principal{UserID: "u1", Role: authz.RoleUser})
		RequireAuth(ok).ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
