package uc

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/nodeflow-io/nodeflow/engine/auth/model"
	"github.com/nodeflow-io/nodeflow/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// ValidateAPIKey resolves a plaintext API key to its owning user. Used by
// both the HTTP auth middleware and push-channel handshakes.
type ValidateAPIKey struct {
	repo Repository
}

func NewValidateAPIKey(repo Repository) *ValidateAPIKey {
	return &ValidateAPIKey{repo: repo}
}

func (uc *ValidateAPIKey) Execute(ctx context.Context, plaintext string) (*model.User, error) {
	if !strings.HasPrefix(plaintext, model.KeyPrefix) {
		return nil, ErrInvalidAPIKey
	}
	fingerprint := sha256.Sum256([]byte(plaintext))
	key, err := uc.repo.GetAPIKeyByFingerprint(ctx, fingerprint[:])
	if err != nil {
		return nil, ErrInvalidAPIKey
	}
	// Fingerprint collisions are theoretical, but the bcrypt comparison
	// keeps the hash authoritative.
	if err := bcrypt.CompareHashAndPassword(key.Hash, []byte(plaintext)); err != nil {
		return nil, ErrInvalidAPIKey
	}
	user, err := uc.repo.GetUserByID(ctx, key.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("resolving key owner: %w", err)
	}
	if err := uc.repo.UpdateAPIKeyLastUsed(ctx, key.ID); err != nil {
		logger.FromContext(ctx).Warn("Failed to update API key last-used", "key_id", key.ID, "error", err)
	}
	return user, nil
}
