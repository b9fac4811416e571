package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Todo is a task owned by exactly one user. The owner is set at creation and
// never reassigned.
type Todo struct {
	bun.BaseModel `bun:"table:todos,alias:t"`

	ID          string    `bun:"id,pk,type:uuid"`
	Title       string    `bun:"title,notnull"`
	Description *string   `bun:"description"` // blank input is stored as NULL, not ""
	Completed   bool      `bun:"completed,notnull,default:false"`
	UserID      string    `bun:"user_id,notnull,type:uuid"` // FK to users(id), immutable
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	Owner *User `bun:"rel:belongs-to,join:user_id=id"`
}
