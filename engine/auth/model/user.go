package model

import (
	"time"

	"github.com/nodeflow-io/nodeflow/engine/core"
)

// Role represents user access level
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid checks if the role is a valid value
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents a system user
type User struct {
	ID        core.ID   `db:"id"`
	Email     string    `db:"email"`
	Role      Role      `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
