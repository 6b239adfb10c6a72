package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/storage"
)

type userRow struct {
	ID           string `db:"id"`
	FullName     string `db:"full_name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
}

func (r userRow) toModel() (model.User, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return model.User{}, fmt.Errorf("storage: parse user id %q: %w", r.ID, err)
	}
	return model.User{
		ID:           id,
		FullName:     r.FullName,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    time.Unix(0, r.CreatedAt).UTC(),
	}, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO users (id, full_name, email, password_hash, created_at)
		 VALUES (:id, :full_name, :email, :password_hash, :created_at)`,
		userRow{
			ID:           user.ID.String(),
			FullName:     user.FullName,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			CreatedAt:    user.CreatedAt.UnixNano(),
		},
	)
	if isUniqueViolation(err) {
		return model.User{}, fmt.Errorf("storage: create user %s: %w", user.Email, storage.ErrDuplicate)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("storage: create user: %w", err)
	}
	return user, nil
}

// GetUserByEmail looks a user up by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID looks a user up by id.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.getUser(ctx, "id", id.String())
}

// getUser selects by a fixed column name; column never comes from input.
func (s *Store) getUser(ctx context.Context, column, value string) (model.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM users WHERE `+column+` = ?`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("storage: user with %s %s: %w", column, value, storage.ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("storage: get user: %w", err)
	}
	return row.toModel()
}
