package uc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nodeflow-io/nodeflow/engine/auth/model"
	"github.com/nodeflow-io/nodeflow/engine/core"
)

// CreateUser provisions a new user account. Callers are expected to have
// passed the admin role check at the boundary.
type CreateUser struct {
	repo Repository
}

func NewCreateUser(repo Repository) *CreateUser {
	return &CreateUser{repo: repo}
}

type CreateUserInput struct {
	Email string
	Role  model.Role
}

func (uc *CreateUser) Execute(ctx context.Context, in *CreateUserInput) (*model.User, error) {
	if in == nil || strings.TrimSpace(in.Email) == "" {
		return nil, errors.Join(
			ErrInvalidInput,
			core.NewError(nil, "INVALID_INPUT", map[string]any{"reason": "email is required"}),
		)
	}
	role := in.Role
	if role == "" {
		role = model.RoleMember
	}
	if !role.Valid() {
		return nil, errors.Join(
			ErrInvalidInput,
			core.NewError(nil, "INVALID_INPUT", map[string]any{"role": in.Role}),
		)
	}
	user := &model.User{
		ID:        core.MustNewID(),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}
