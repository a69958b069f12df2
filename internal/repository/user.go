package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/model"
)

const userColumns = `id, username, email, password_hash, firebase_uid, provider, created_at, updated_at, last_login`

type userRepository struct {
	db dbtx
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	if user.Provider == "" {
		user.Provider = model.ProviderEmail
	}

	q := r.db.Rebind(`
		INSERT INTO users (username, email, password_hash, firebase_uid, provider, created_at, updated_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, q,
		user.Username, user.Email, user.PasswordHash, user.FirebaseUID, user.Provider,
		user.CreatedAt, user.UpdatedAt, user.LastLogin,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user already exists: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) CreateProvider(ctx context.Context, provider *model.UserProvider) error {
	if provider.CreatedAt.IsZero() {
		provider.CreatedAt = time.Now().UTC()
	}

	q := r.db.Rebind(`
		INSERT INTO user_providers (user_id, provider, provider_uid, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowxContext(ctx, q,
		provider.UserID, provider.Provider, provider.ProviderUID, provider.CreatedAt,
	).Scan(&provider.ID)
	if err != nil {
		return fmt.Errorf("failed to create user provider: %w", err)
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	q := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where + ` = ?`)
	var user model.User
	if err := r.db.GetContext(ctx, &user, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select from users by %s failed: %w", where, err)
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *userRepository) GetByFirebaseUID(ctx context.Context, uid string) (*model.User, error) {
	return r.getOne(ctx, "firebase_uid", uid)
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	q := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`)
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, username); err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}
	return exists, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	var users []model.User
	if err := r.db.SelectContext(ctx, &users, q); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) ListProviders(ctx context.Context, userID int64) ([]model.UserProvider, error) {
	q := r.db.Rebind(`
		SELECT id, user_id, provider, provider_uid, created_at
		FROM user_providers
		WHERE user_id = ?
		ORDER BY id`)
	var providers []model.UserProvider
	if err := r.db.SelectContext(ctx, &providers, q, userID); err != nil {
		return nil, fmt.Errorf("failed to list user providers: %w", err)
	}
	return providers, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	q := r.db.Rebind(`UPDATE users SET username = ?, email = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, q, user.Username, user.Email, user.UpdatedAt, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user already exists: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d not found", user.ID)
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	q := r.db.Rebind(`UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, q, at, at, id); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
