package postgres

import (
	"context"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeflow-io/nodeflow/engine/auth/model"
	"github.com/nodeflow-io/nodeflow/engine/auth/uc"
)

func newAuthRepoMock(t *testing.T) (*AuthRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewAuthRepo(mock), mock
}

func TestAuthRepo_GetUserByID(t *testing.T) {
	t.Run("Should scan a user row", func(t *testing.T) {
		repo, mock := newAuthRepoMock(t)
		created := time.Now().UTC()
		mock.ExpectQuery("SELECT id, email, role, created_at FROM users").
			WithArgs("usr-1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "created_at"}).
				AddRow("usr-1", "a@example.com", "admin", created))

		user, err := repo.GetUserByID(context.Background(), "usr-1")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", user.Email)
		assert.True(t, user.IsAdmin())
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("Should map missing rows to ErrUserNotFound", func(t *testing.T) {
		repo, mock := newAuthRepoMock(t)
		mock.ExpectQuery("SELECT id, email, role, created_at FROM users").
			WithArgs("usr-gone").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "created_at"}))

		_, err := repo.GetUserByID(context.Background(), "usr-gone")
		assert.ErrorIs(t, err, uc.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthRepo_CreateInitialAdminIfNone(t *testing.T) {
	admin := &model.User{
		ID:        "usr-1",
		Email:     "root@example.com",
		Role:      model.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	t.Run("Should insert when no admin exists", func(t *testing.T) {
		repo, mock := newAuthRepoMock(t)
		mock.ExpectExec("INSERT INTO users").
			WithArgs("usr-1", admin.Email, "admin", admin.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.CreateInitialAdminIfNone(context.Background(), admin))
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("Should report an existing admin as already bootstrapped", func(t *testing.T) {
		repo, mock := newAuthRepoMock(t)
		mock.ExpectExec("INSERT INTO users").
			WithArgs("usr-1", admin.Email, "admin", admin.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err := repo.CreateInitialAdminIfNone(context.Background(), admin)
		assert.ErrorIs(t, err, uc.ErrAlreadyBootstrapped)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthRepo_GetAPIKeyByFingerprint(t *testing.T) {
	fingerprint := sha256.Sum256([]byte("nflw_test"))
	t.Run("Should scan a key row", func(t *testing.T) {
		repo, mock := newAuthRepoMock(t)
		created := time.Now().UTC()
		mock.ExpectQuery("SELECT id, user_id, hash, fingerprint, prefix, created_at, last_used FROM api_keys").
			WithArgs(fingerprint[:]).
			WillReturnRows(pgxmock.
				NewRows([]string{"id", "user_id", "hash", "fingerprint", "prefix", "created_at", "last_used"}).
				AddRow("key-1", "usr-1", []byte("hash"), fingerprint[:], model.KeyPrefix, created, nil))

		key, err := repo.GetAPIKeyByFingerprint(context.Background(), fingerprint[:])
		require.NoError(t, err)
		assert.Equal(t, fingerprint[:], key.Fingerprint)
		assert.False(t, key.LastUsed.Valid)
		require.NoError(t, mock.ExpectationsWereMet())
	})
	t.Run("Should map missing rows to ErrInvalidAPIKey", func(t *testing.T) {
		repo, mock := newAuthRepoMock(t)
		mock.ExpectQuery("SELECT id, user_id, hash, fingerprint, prefix, created_at, last_used FROM api_keys").
			WithArgs(fingerprint[:]).
			WillReturnRows(pgxmock.
				NewRows([]string{"id", "user_id", "hash", "fingerprint", "prefix", "created_at", "last_used"}))

		_, err := repo.GetAPIKeyByFingerprint(context.Background(), fingerprint[:])
		assert.ErrorIs(t, err, uc.ErrInvalidAPIKey)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuthRepo_UpdateAPIKeyLastUsed(t *testing.T) {
	repo, mock := newAuthRepoMock(t)
	mock.ExpectExec("UPDATE api_keys SET last_used").
		WithArgs("key-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateAPIKeyLastUsed(context.Background(), "key-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
