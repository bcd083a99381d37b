package uc

import (
	"context"

	"github.com/nodeflow-io/nodeflow/engine/auth/model"
	"github.com/nodeflow-io/nodeflow/engine/core"
)

// Repository defines all data access operations for the auth domain
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id core.ID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id core.ID) error

	// CreateInitialAdminIfNone atomically creates the initial admin user
	// if no admin exists yet. Returns ErrAlreadyBootstrapped otherwise.
	CreateInitialAdminIfNone(ctx context.Context, user *model.User) error

	// API key operations
	CreateAPIKey(ctx context.Context, key *model.APIKey) error
	GetAPIKeyByFingerprint(ctx context.Context, fingerprint []byte) (*model.APIKey, error)
	ListAPIKeysByUserID(ctx context.Context, userID core.ID) ([]*model.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id core.ID) error
	DeleteAPIKey(ctx context.Context, id core.ID) error
}
