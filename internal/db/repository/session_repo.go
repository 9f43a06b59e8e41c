package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/attempt"
)

// SessionRepository contains DB helpers for attempt-session records.
type SessionRepository struct {
	db DB
}

// NewSessionRepository constructs a new session repository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `session_id, user_id, token, expires_at, created_at`

// ActiveForUser returns the newest unexpired session for a user, or NotFound.
func (r *SessionRepository) ActiveForUser(ctx context.Context, userID uuid.UUID, now time.Time) (attempt.Session, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND expires_at > $2
		 ORDER BY expires_at DESC
		 LIMIT 1`,
		userID, now)
	return scanSession(row)
}

// Create inserts a session row with the given token and expiry.
func (r *SessionRepository) Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (attempt.Session, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)
		 RETURNING `+sessionColumns,
		userID, token, expiresAt)
	return scanSession(row)
}

func scanSession(row rowScanner) (attempt.Session, error) {
	var s attempt.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.CreatedAt); err != nil {
		return attempt.Session{}, fmt.Errorf("scan session: %w", translateErr(err))
	}
	return s, nil
}
