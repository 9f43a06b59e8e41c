package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Password hashes never leave this package.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credentials is a user row including the stored password hash.
type Credentials struct {
	User
	PasswordHash string
}

// TokenPair holds an issued access token and its lifetime in seconds.
type TokenPair struct {
	AccessToken string
	ExpiresIn   int64
}

// RegisterRequest for email/password registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest for email/password authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OAuthProvider constants.
const (
	OAuthProviderGoogle = "google"
)
