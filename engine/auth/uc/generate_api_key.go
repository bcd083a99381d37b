package uc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"time"

	"github.com/nodeflow-io/nodeflow/engine/auth/model"
	"github.com/nodeflow-io/nodeflow/engine/core"
	"github.com/nodeflow-io/nodeflow/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

const keyCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const keyLength = 32

// GenerateAPIKey use case for generating a new API key for a user
type GenerateAPIKey struct {
	repo   Repository
	userID core.ID
}

func NewGenerateAPIKey(repo Repository, userID core.ID) *GenerateAPIKey {
	return &GenerateAPIKey{
		repo:   repo,
		userID: userID,
	}
}

// Execute generates a new API key and returns its plaintext. The
// plaintext is never stored; only the bcrypt hash and a SHA-256
// fingerprint for lookup.
func (uc *GenerateAPIKey) Execute(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)
	if _, err := uc.repo.GetUserByID(ctx, uc.userID); err != nil {
		return "", fmt.Errorf("resolving user %s: %w", uc.userID, err)
	}
	keyPart := make([]byte, keyLength)
	for i := range keyPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(keyCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random key part: %w", err)
		}
		keyPart[i] = keyCharset[num.Int64()]
	}
	plaintext := model.KeyPrefix + string(keyPart)
	hashedKey, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	fingerprint := sha256.Sum256([]byte(plaintext))
	apiKey := &model.APIKey{
		ID:          core.MustNewID(),
		UserID:      uc.userID,
		Hash:        hashedKey,
		Fingerprint: fingerprint[:],
		Prefix:      model.KeyPrefix,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.CreateAPIKey(ctx, apiKey); err != nil {
		log.Error("Failed to create API key", "error", err, "user_id", uc.userID)
		return "", fmt.Errorf("failed to create API key: %w", err)
	}
	log.Info("API key generated", "user_id", uc.userID, "key_id", apiKey.ID)
	return plaintext, nil
}
