package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/auth"
)

// UserRepository exposes typed DB operations required by auth flows.
type UserRepository struct {
	db DB
}

// NewUserRepository wraps a pgx pool for user-specific operations.
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, email, name, COALESCE(password_hash, ''), created_at`

// Create inserts a registered account. A duplicate email surfaces as a
// conflict through translateErr.
func (r *UserRepository) Create(ctx context.Context, email, name, passwordHash string) (auth.Credentials, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash) VALUES ($1, $2, NULLIF($3, ''))
		 RETURNING `+userColumns,
		email, name, passwordHash)
	return scanUser(row)
}

// GetByEmail fetches a user by email if present.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.Credentials, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (auth.Credentials, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	return scanUser(row)
}

// Exists reports whether a user row exists.
func (r *UserRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", translateErr(err))
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (auth.Credentials, error) {
	var c auth.Credentials
	if err := row.Scan(&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.CreatedAt); err != nil {
		return auth.Credentials{}, fmt.Errorf("scan user: %w", translateErr(err))
	}
	return c, nil
}
