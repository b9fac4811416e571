package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teamtask/taskapi/internal/auth"
	"github.com/teamtask/taskapi/internal/config"
	"github.com/teamtask/taskapi/internal/db/bunx"
	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/teamtask/taskapi/internal/repository"
	"github.com/teamtask/taskapi/internal/services/authz"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Creates a user account directly in the database, bypassing the HTTP
registration flow. Use this to bootstrap the first admin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.ToLower(strings.TrimSpace(createEmail))
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("invalid email address %q", createEmail)
		}

		role, err := authz.ParseRole(createRole)
		if err != nil {
			return fmt.Errorf("invalid role %q (valid: user, manager, admin)", createRole)
		}

		password := createPassword
		if passwordStdin {
			scanner := bufio.NewScanner(os.Stdin)
			if !scanner.Scan() {
				return errors.New("failed to read password from stdin")
			}
			password = strings.TrimSpace(scanner.Text())
		}
		if password == "" {
			return errors.New("password is required (--password or --password-stdin)")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		userRepo := repository.NewBunUserRepository(db)
		ctx := context.Background()

		if _, err := userRepo.GetByEmail(ctx, email); err == nil {
			return fmt.Errorf("a user with email %s already exists", email)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to check existing email: %w", err)
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		now := time.Now()
		user := &models.User{
			ID:           bunx.NewUUIDv7(),
			Name:         strings.TrimSpace(createName),
			Email:        email,
			PasswordHash: hash,
			Role:         string(role),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Println("User created successfully!")
		fmt.Println("----------------------------------------")
		fmt.Printf("ID:    %s\n", user.ID)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Role:  %s\n", user.Role)
		fmt.Println("----------------------------------------")

		return nil
	},
}
