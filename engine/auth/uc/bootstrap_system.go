package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nodeflow-io/nodeflow/engine/auth/model"
	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/pkg/logger"
)

// BootstrapSystem is a one-time use case that initializes the privileged
// operator account (and its API key) directly against the repository,
// bypassing the HTTP layer.
type BootstrapSystem struct {
	repo  Repository
	email string
}

func NewBootstrapSystem(repo Repository, email string) *BootstrapSystem {
	return &BootstrapSystem{
		repo:  repo,
		email: email,
	}
}

// Execute creates the first admin user and API key, returning the created
// user and the plaintext key.
func (uc *BootstrapSystem) Execute(ctx context.Context) (*model.User, string, error) {
	user := &model.User{
		ID:        core.MustNewID(),
		Email:     uc.email,
		Role:      model.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.CreateInitialAdminIfNone(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyBootstrapped) {
			return nil, "", ErrAlreadyBootstrapped
		}
		return nil, "", fmt.Errorf("creating admin user: %w", err)
	}
	plaintext, err := NewGenerateAPIKey(uc.repo, user.ID).Execute(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("issuing bootstrap API key: %w", err)
	}
	logger.FromContext(ctx).Info("System bootstrapped with initial admin", "user_id", user.ID, "email", user.Email)
	return user, plaintext, nil
}
