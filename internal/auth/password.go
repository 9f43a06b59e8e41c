package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/quizdeck/quizdeck/internal/errs"
)

const (
	minPasswordLength = 8
	bcryptCost        = 12
	specialChars      = `!@#$%^&*(),.?":{}|<>`
)

// ValidatePassword enforces the account password policy: at least eight
// characters, one digit, and one special character.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errs.Validationf("password must be at least %d characters long", minPasswordLength)
	}
	hasDigit := false
	for _, r := range password {
		if unicode.IsDigit(r) {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return errs.Validationf("password must contain at least one number")
	}
	if !strings.ContainsAny(password, specialChars) {
		return errs.Validationf("password must contain at least one special character")
	}
	return nil
}

// HashPassword validates the policy then bcrypt-hashes the password.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against its stored hash.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
