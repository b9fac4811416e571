package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User represents a human principal.
//
// Role is the sole authorization attribute. It is re-read from this table on
// every request so that role changes take effect on the very next request;
// it must never be cached in a session token.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string     `bun:"id,pk,type:uuid"`
	Name         string     `bun:"name,notnull"`
	Email        string     `bun:"email,notnull,unique"`
	PasswordHash string     `bun:"password_hash,notnull"`
	Role         string     `bun:"role,notnull,default:'user'"`
	Banned       bool       `bun:"banned,notnull,default:false"`
	RoleChosenAt *time.Time `bun:"role_chosen_at"` // set on first self-service role assignment
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Session tracks active browser sessions. The bearer token itself is never
// stored; only its SHA-256 hash is persisted for lookup.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`

	ID         string    `bun:"id,pk,type:uuid"`
	UserID     string    `bun:"user_id,notnull,type:uuid"` // FK to users(id)
	TokenHash  string    `bun:"token_hash,notnull,unique"` // SHA256 hash of bearer token
	ExpiresAt  time.Time `bun:"expires_at,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
	LastUsedAt time.Time `bun:"last_used_at,notnull,default:current_timestamp"`
	UserAgent  *string   `bun:"user_agent"`
	IPAddress  *string   `bun:"ip_address"`
	Revoked    bool      `bun:"revoked,notnull,default:false"`
}
