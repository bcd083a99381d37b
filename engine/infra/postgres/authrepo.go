package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/nodeflow-io/nodeflow/engine/auth/model"
	"github.com/nodeflow-io/nodeflow/engine/auth/uc"
	"github.com/nodeflow-io/nodeflow/engine/core"
)

// AuthRepo implements the auth uc.Repository.
type AuthRepo struct {
	db DB
}

func NewAuthRepo(db DB) *AuthRepo {
	return &AuthRepo{db: db}
}

func (r *AuthRepo) CreateUser(ctx context.Context, user *model.User) error {
	sql, args, err := squirrel.Insert("users").
		Columns("id", "email", "role", "created_at").
		Values(user.ID.String(), user.Email, string(user.Role), user.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *AuthRepo) GetUserByID(ctx context.Context, id core.ID) (*model.User, error) {
	return r.getUser(ctx, squirrel.Eq{"id": id.String()})
}

func (r *AuthRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, squirrel.Eq{"email": email})
}

func (r *AuthRepo) getUser(ctx context.Context, pred squirrel.Eq) (*model.User, error) {
	sql, args, err := squirrel.Select("id", "email", "role", "created_at").
		From("users").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var user model.User
	if err := pgxscan.Get(ctx, r.db, &user, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, uc.ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &user, nil
}

func (r *AuthRepo) ListUsers(ctx context.Context) ([]*model.User, error) {
	sql, args, err := squirrel.Select("id", "email", "role", "created_at").
		From("users").
		OrderBy("created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var users []*model.User
	if err := pgxscan.Select(ctx, r.db, &users, sql, args...); err != nil {
		return nil, fmt.Errorf("scanning users: %w", err)
	}
	return users, nil
}

func (r *AuthRepo) DeleteUser(ctx context.Context, id core.ID) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id.String()); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// CreateInitialAdminIfNone inserts the admin only when no admin row
// exists yet; the WHERE NOT EXISTS guard keeps concurrent bootstrap
// attempts from racing.
func (r *AuthRepo) CreateInitialAdminIfNone(ctx context.Context, user *model.User) error {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, role, created_at)
		 SELECT $1, $2, $3, $4
		 WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = $3)`,
		user.ID.String(), user.Email, string(model.RoleAdmin), user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting initial admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrAlreadyBootstrapped
	}
	return nil
}

func (r *AuthRepo) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	sql, args, err := squirrel.Insert("api_keys").
		Columns("id", "user_id", "hash", "fingerprint", "prefix", "created_at").
		Values(key.ID.String(), key.UserID.String(), key.Hash, key.Fingerprint, key.Prefix, key.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inserting API key: %w", err)
	}
	return nil
}

func (r *AuthRepo) GetAPIKeyByFingerprint(ctx context.Context, fingerprint []byte) (*model.APIKey, error) {
	sql, args, err := squirrel.Select("id", "user_id", "hash", "fingerprint", "prefix", "created_at", "last_used").
		From("api_keys").
		Where("fingerprint = ?", fingerprint).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var key model.APIKey
	if err := pgxscan.Get(ctx, r.db, &key, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, uc.ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("scanning API key: %w", err)
	}
	return &key, nil
}

func (r *AuthRepo) ListAPIKeysByUserID(ctx context.Context, userID core.ID) ([]*model.APIKey, error) {
	sql, args, err := squirrel.Select("id", "user_id", "hash", "fingerprint", "prefix", "created_at", "last_used").
		From("api_keys").
		Where("user_id = ?", userID.String()).
		OrderBy("created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var keys []*model.APIKey
	if err := pgxscan.Select(ctx, r.db, &keys, sql, args...); err != nil {
		return nil, fmt.Errorf("scanning API keys: %w", err)
	}
	return keys, nil
}

func (r *AuthRepo) UpdateAPIKeyLastUsed(ctx context.Context, id core.ID) error {
	if _, err := r.db.Exec(ctx, "UPDATE api_keys SET last_used = now() WHERE id = $1", id.String()); err != nil {
		return fmt.Errorf("updating API key last-used: %w", err)
	}
	return nil
}

func (r *AuthRepo) DeleteAPIKey(ctx context.Context, id core.ID) error {
	if _, err := r.db.Exec(ctx, "DELETE FROM api_keys WHERE id = $1", id.String()); err != nil {
		return fmt.Errorf("deleting API key: %w", err)
	}
	return nil
}
