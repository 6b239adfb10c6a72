package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/storage"
)

const userColumns = `id, full_name, email, password_hash, created_at`

// CreateUser inserts a new user.
func (db *DB) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	err := WithRetry(ctx, writeRetries, writeBaseDelay, func() error {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			user.ID, user.FullName, user.Email, user.PasswordHash, user.CreatedAt,
		)
		return err
	})
	if isUniqueViolation(err) {
		return model.User{}, fmt.Errorf("storage: create user %s: %w", user.Email, storage.ErrDuplicate)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("storage: create user: %w", err)
	}
	return user, nil
}

// GetUserByEmail looks a user up by normalized email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row, "email "+email)
}

// GetUserByID looks a user up by id.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, "id "+id.String())
}

func scanUser(row pgx.Row, lookup string) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, fmt.Errorf("storage: user with %s: %w", lookup, storage.ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("storage: get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}
