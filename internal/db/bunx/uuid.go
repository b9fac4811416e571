package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for database primary keys.
//
// UUIDv7 keeps primary key indexes append-mostly and works identically on
// PostgreSQL and SQLite (no gen_random_uuid() dependency).
//
// Panics if UUID generation fails, which only occurs on catastrophic system
// failures (entropy source exhaustion); nothing useful can run in that state.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}
