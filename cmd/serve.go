package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/teamtask/taskapi/internal/db/bunx"
	"github.com/teamtask/taskapi/internal/repository"
	"github.com/teamtask/taskapi/internal/server"
	"github.com/teamtask/taskapi/internal/services/iam"
	"github.com/teamtask/taskapi/internal/services/todo"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the task API server",
	Long:  `Starts the HTTP server exposing the todo and user administration endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Connect to database
		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		// Initialize repositories
		userRepo := repository.NewBunUserRepository(db)
		todoRepo := repository.NewBunTodoRepository(db)
		sessionRepo := repository.NewBunSessionRepository(db)

		// Initialize services
		iamService := iam.NewService(
			iam.Dependencies{Users: userRepo, Sessions: sessionRepo},
			iam.Options{SessionDuration: cfg.SessionDuration},
		)
		todoService := todo.NewService(todoRepo)

		// Periodically drop expired sessions so the table does not grow
		// without bound.
		cleanupCtx, cancelCleanup := context.WithCancel(cmd.Context())
		defer cancelCleanup()
		go func() {
			ticker := time.NewTicker(cfg.SessionCleanupInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					if err := sessionRepo.DeleteExpired(cleanupCtx); err != nil {
						log.Printf("ERROR: Session cleanup failed: %v", err)
					}
				case <-cleanupCtx.Done():
					log.Printf("INFO: Stopping session cleanup")
					return
				}
			}
		}()

		healthHandler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"status":"ok"}`)
		}

		r := server.NewRouter(server.RouterOptions{
			Todos:         todoService,
			IAM:           iamService,
			Cfg:           cfg,
			HealthHandler: healthHandler,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Wait for interrupt signal
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case sig := <-shutdown:
			log.Printf("Shutdown signal received: %v", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				if closeErr := srv.Close(); closeErr != nil {
					return fmt.Errorf("could not stop server gracefully: %w", err)
				}
			}
			log.Printf("Server stopped")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
