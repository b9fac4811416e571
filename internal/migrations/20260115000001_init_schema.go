package migrations

import (
	"context"
	"fmt"

	"github.com/teamtask/taskapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20260115000001, down_20260115000001)
}

// up_20260115000001 initializes the full database schema
func up_20260115000001(ctx context.Context, db *bun.DB) error {
	// 1. Users
	fmt.Print(" [up] creating users table...")
	_, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`)
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at)`)
	fmt.Println(" OK")

	// 2. Todos
	fmt.Print(" [up] creating todos table...")
	q := db.NewCreateTable().
		Model((*models.Todo)(nil)).
		IfNotExists()

	// For SQLite, FKs must be defined during table creation
	if IsSQLite(db) {
		q = q.ForeignKey(`(user_id) REFERENCES users(id) ON DELETE CASCADE`)
	}
	_, err = q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create todos table: %w", err)
	}

	db.Exec(`CREATE INDEX IF NOT EXISTS idx_todos_user_id ON todos(user_id)`)
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos(created_at)`)

	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			ALTER TABLE todos
			ADD CONSTRAINT fk_todos_user_id
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		`)
		if err != nil {
			return fmt.Errorf("failed to add FK constraint on user_id: %w", err)
		}
	}
	fmt.Println(" OK")

	// 3. Sessions
	fmt.Print(" [up] creating sessions table...")
	q = db.NewCreateTable().
		Model((*models.Session)(nil)).
		IfNotExists()

	if IsSQLite(db) {
		q = q.ForeignKey(`(user_id) REFERENCES users(id) ON DELETE CASCADE`)
	}
	_, err = q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}

	db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_token_hash ON sessions(token_hash)`)
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`)
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`)

	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			ALTER TABLE sessions
			ADD CONSTRAINT fk_sessions_user_id
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		`)
		if err != nil {
			return fmt.Errorf("failed to add FK constraint on sessions.user_id: %w", err)
		}
	}

	// Role values are a closed set; enforce at the storage layer too
	if IsPostgreSQL(db) {
		_, err = db.Exec(`
			ALTER TABLE users
			ADD CONSTRAINT chk_users_role CHECK (role IN ('user', 'manager', 'admin'))
		`)
		if err != nil {
			return fmt.Errorf("failed to add role check constraint: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20260115000001 drops all tables
func down_20260115000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping all tables...")

	tables := []string{
		"sessions",
		"todos",
		"users",
	}

	for _, table := range tables {
		var err error
		if IsPostgreSQL(db) {
			_, err = db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table))
		} else {
			_, err = db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table))
		}
		if err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}

	fmt.Println(" OK")
	return nil
}
