package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamtask/taskapi/internal/auth"
	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/teamtask/taskapi/internal/repository"
	"github.com/teamtask/taskapi/internal/services/authz"
	"github.com/teamtask/taskapi/internal/services/iam"
)

// stubIdentity implements identityService with overridable functions.
type stubIdentity struct {
	registerFunc      func(ctx context.Context, name, email, password string) (*models.User, error)
	loginFunc         func(ctx context.Context, email, password string) (*models.User, error)
	createSessionFunc func(ctx context.Context, userID, userAgent, ipAddress string) (*models.Session, string, error)
	revokeFunc        func(ctx context.Context, sessionID string) error
	getSessionFunc    func(ctx context.Context, sessionID string) (*models.Session, error)
	listUsersFunc     func(ctx context.Context, actor auth.Principal) ([]repository.UserWithTodoCount, error)
	changeRoleFunc    func(ctx context.Context, actor auth.Principal, targetID, role string) (*models.User, error)
	chooseRoleFunc    func(ctx context.Context, actor auth.Principal, role string) (*models.User, error)
}

func (s *stubIdentity) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.registerFunc(ctx, name, email, password)
}

func (s *stubIdentity) Login(ctx context.Context, email, password string) (*models.User, error) {
	return s.loginFunc(ctx, email, password)
}

func (s *stubIdentity) CreateSession(ctx context.Context, userID, userAgent, ipAddress string) (*models.Session, string, error) {
	return s.createSessionFunc(ctx, userID, userAgent, ipAddress)
}

func (s *stubIdentity) RevokeSession(ctx context.Context, sessionID string) error {
	return s.revokeFunc(ctx, sessionID)
}

func (s *stubIdentity) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.getSessionFunc(ctx, sessionID)
}

func (s *stubIdentity) ListUsers(ctx context.Context, actor auth.Principal) ([]repository.UserWithTodoCount, error) {
	return s.listUsersFunc(ctx, actor)
}

func (s *stubIdentity) ChangeUserRole(ctx context.Context, actor auth.Principal, targetID, role string) (*models.User, error) {
	return s.changeRoleFunc(ctx, actor, targetID, role)
}

func (s *stubIdentity) ChooseInitialRole(ctx context.Context, actor auth.Principal, role string) (*models.User, error) {
	return s.chooseRoleFunc(ctx, actor, role)
}

func sessionFor(userID string) *models.Session {
	return &models.Session{
		ID:         "sess-1",
		UserID:     userID,
		ExpiresAt:  time.Now().Add(time.Hour),
		CreatedAt:  time.Now(),
		LastUsedAt: time.Now(),
	}
}

func TestHandleRegister(t *testing.T) {
	t.Run("creates account and sets session cookie", func(t *testing.T) {
		svc := &stubIdentity{
			registerFunc: func(ctx context.Context, name, email, password string) (*models.User, error) {
				assert.Equal(t, "Alice", name)
				return &models.User{ID: "u1", Name: name, Email: "alice@example.com", Role: "user"}, nil
			},
			createSessionFunc: func(ctx context.Context, userID, userAgent, ipAddress string) (*models.Session, string, error) {
				return sessionFor(userID), "tok-123", nil
			},
		}

		rec := httptest.NewRecorder()
		body := `{"name":"Alice","email":"alice@example.com","password":"s3cret"}`
		HandleRegister(svc)(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		user := decodeBody(t, rec)["user"].(map[string]any)
		assert.Equal(t, "user", user["role"])

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
		assert.Equal(t, "tok-123", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("duplicate email is a 400", func(t *testing.T) {
		svc := &stubIdentity{
			registerFunc: func(ctx context.Context, name, email, password string) (*models.User, error) {
				return nil, iam.ErrEmailTaken
			},
		}

		rec := httptest.NewRecorder()
		body := `{"name":"Alice","email":"alice@example.com","password":"s3cret"}`
		HandleRegister(svc)(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	t.Run("bad credentials are a 401", func(t *testing.T) {
		svc := &stubIdentity{
			loginFunc: func(ctx context.Context, email, password string) (*models.User, error) {
				return nil, iam.ErrInvalidCredentials
			},
		}

		rec := httptest.NewRecorder()
		body := `{"email":"alice@example.com","password":"nope"}`
		HandleLogin(svc)(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("banned account is a 403", func(t *testing.T) {
		svc := &stubIdentity{
			loginFunc: func(ctx context.Context, email, password string) (*models.User, error) {
				return nil, iam.ErrAccountBanned
			},
		}

		rec := httptest.NewRecorder()
		body := `{"email":"alice@example.com","password":"s3cret"}`
		HandleLogin(svc)(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("success sets the session cookie", func(t *testing.T) {
		svc := &stubIdentity{
			loginFunc: func(ctx context.Context, email, password string) (*models.User, error) {
				return &models.User{ID: "u1", Name: "Alice", Email: email, Role: "user"}, nil
			},
			createSessionFunc: func(ctx context.Context, userID, userAgent, ipAddress string) (*models.Session, string, error) {
				return sessionFor(userID), "tok-456", nil
			},
		}

		rec := httptest.NewRecorder()
		body := `{"email":"alice@example.com","password":"s3cret"}`
		HandleLogin(svc)(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "tok-456", cookies[0].Value)
	})
}

func TestHandleLogout(t *testing.T) {
	t.Run("revokes the session and clears the cookie", func(t *testing.T) {
		revoked := ""
		svc := &stubIdentity{
			revokeFunc: func(ctx context.Context, sessionID string) error {
				revoked = sessionID
				return nil
			},
		}

		rec := httptest.NewRecorder()
		principal := auth.Principal{UserID: "u1", SessionID: "sess-1", Role: authz.RoleUser}
		HandleLogout(svc)(rec, authedRequest(http.MethodPost, "/auth/logout", "", principal))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "sess-1", revoked)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Empty(t, cookies[0].Value)
		assert.True(t, cookies[0].Expires.Before(time.Now()))
	})

	t.Run("anonymous logout still succeeds", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleLogout(&stubIdentity{})(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandleWhoami(t *testing.T) {
	svc := &stubIdentity{
		getSessionFunc: func(ctx context.Context, sessionID string) (*models.Session, error) {
			return sessionFor("u1"), nil
		},
	}

	rec := httptest.NewRecorder()
	principal := auth.Principal{UserID: "u1", Name: "Alice", Email: "alice@example.com", Role: authz.RoleManager, SessionID: "sess-1"}
	HandleWhoami(svc)(rec, authedRequest(http.MethodGet, "/api/auth/whoami", "", principal))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "manager", user["role"])
	sess := body["session"].(map[string]any)
	assert.Equal(t, "sess-1", sess["id"])
}

func TestHandleSetRole(t *testing.T) {
	principal := auth.Principal{UserID: "u1", Role: authz.RoleUser, SessionID: "sess-1"}

	t.Run("first pick succeeds", func(t *testing.T) {
		svc := &stubIdentity{
			chooseRoleFunc: func(ctx context.Context, actor auth.Principal, role string) (*models.User, error) {
				assert.Equal(t, "manager", role)
				return &models.User{ID: actor.UserID, Name: "Alice", Email: "alice@example.com", Role: role}, nil
			},
		}

		rec := httptest.NewRecorder()
		HandleSetRole(svc)(rec, authedRequest(http.MethodPost, "/api/auth/set-role", `{"role":"manager"}`, principal))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "manager", body["user"].(map[string]any)["role"])
	})

	t.Run("missing role is a 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleSetRole(&stubIdentity{})(rec, authedRequest(http.MethodPost, "/api/auth/set-role", `{}`, principal))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Role is required", decodeBody(t, rec)["error"])
	})

	t.Run("unknown role is a 400", func(t *testing.T) {
		svc := &stubIdentity{
			chooseRoleFunc: func(ctx context.Context, actor auth.Principal, role string) (*models.User, error) {
				return nil, authz.ErrUnknownRole
			},
		}

		rec := httptest.NewRecorder()
		HandleSetRole(svc)(rec, authedRequest(http.MethodPost, "/api/auth/set-role", `{"role":"superadmin"}`, principal))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("second pick is a 400", func(t *testing.T) {
		svc := &stubIdentity{
			chooseRoleFunc: func(ctx context.Context, actor auth.Principal, role string) (*models.User, error) {
				return nil, iam.ErrRoleAlreadyChosen
			},
		}

		rec := httptest.NewRecorder()
		HandleSetRole(svc)(rec, authedRequest(http.MethodPost, "/api/auth/set-role", `{"role":"admin"}`, principal))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
