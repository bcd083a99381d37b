package model

import (
	"database/sql"
	"time"

	"github.com/nodeflow-io/nodeflow/engine/core"
)

// KeyPrefix is prepended to every issued API key.
const KeyPrefix = "nflw_"

// APIKey represents an API key for authentication
type APIKey struct {
	ID          core.ID      `db:"id"`
	UserID      core.ID      `db:"user_id"`
	Hash        []byte       `db:"hash"`        // bcrypt-hashed key
	Fingerprint []byte       `db:"fingerprint"` // SHA-256 hash for O(1) lookups
	Prefix      string       `db:"prefix"`
	CreatedAt   time.Time    `db:"created_at"`
	LastUsed    sql.NullTime `db:"last_used"`
}
