package uc

import (
	"context"
	"fmt"

	"github.com/nodeflow-io/nodeflow/engine/core"
)

// RevokeAPIKey deletes an API key owned by the given user.
type RevokeAPIKey struct {
	repo   Repository
	userID core.ID
	keyID  core.ID
}

func NewRevokeAPIKey(repo Repository, userID, keyID core.ID) *RevokeAPIKey {
	return &RevokeAPIKey{repo: repo, userID: userID, keyID: keyID}
}

func (uc *RevokeAPIKey) Execute(ctx context.Context) error {
	keys, err := uc.repo.ListAPIKeysByUserID(ctx, uc.userID)
	if err != nil {
		return fmt.Errorf("listing keys for user %s: %w", uc.userID, err)
	}
	for _, key := range keys {
		if key.ID == uc.keyID {
			return uc.repo.DeleteAPIKey(ctx, uc.keyID)
		}
	}
	return ErrInvalidAPIKey
}
