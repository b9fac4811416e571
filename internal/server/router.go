package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/teamtask/taskapi/internal/config"
	taskmiddleware "github.com/teamtask/taskapi/internal/middleware"
	"github.com/teamtask/taskapi/internal/services/iam"
)

// RouterOptions controls the construction of the task API router.
// The zero value is valid; sensible defaults are applied where fields are not set.
type RouterOptions struct {
	Todos         todoService
	IAM           iam.Service
	Cfg           *config.Config
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, CORS policy, and
// the task API handlers mounted. The router can be tailored via RouterOptions
// for CLI usage, tests, or other entrypoints.
//
// Everything under /api carries an authenticated principal; /auth/register,
// /auth/login, and /health are public.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	} else if opts.Cfg != nil && opts.Cfg.ServerURL != "" {
		corsCfg.AllowedOrigins = append(corsCfg.AllowedOrigins, opts.Cfg.ServerURL)
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	if opts.IAM != nil {
		r.Use(taskmiddleware.SessionAuth(opts.IAM))

		r.Post("/auth/register", HandleRegister(opts.IAM))
		r.Post("/auth/login", HandleLogin(opts.IAM))
		r.Post("/auth/logout", HandleLogout(opts.IAM))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(taskmiddleware.RequireAuth)

		if opts.IAM != nil {
			api.Get("/auth/whoami", HandleWhoami(opts.IAM))
			api.Post("/auth/set-role", HandleSetRole(opts.IAM))

			api.Get("/admin/users", HandleListUsers(opts.IAM))
			api.Patch("/admin/users/{id}/role", HandleChangeUserRole(opts.IAM))
		}

		if opts.Todos != nil {
			api.Get("/todos", HandleListTodos(opts.Todos))
			api.Post("/todos", HandleCreateTodo(opts.Todos))
			api.Get("/todos/{id}", HandleGetTodo(opts.Todos))
			api.Patch("/todos/{id}", HandleUpdateTodo(opts.Todos))
			api.Delete("/todos/{id}", HandleDeleteTodo(opts.Todos))
		}
	})

	health := opts.HealthHandler
	if health == nil {
		health = defaultHealthHandler
	}
	r.Get("/health", health)

	return r
}
