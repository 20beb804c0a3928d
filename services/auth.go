package services

import (
	"crypto/subtle"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// MinPasswordLength applies to the admin password
	MinPasswordLength = 12
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword verifies a password against a hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword requires MinPasswordLength characters with upper and lower
// case letters, a number and a special character.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("password must contain at least one uppercase letter")
	case !hasLower:
		return fmt.Errorf("password must contain at least one lowercase letter")
	case !hasNumber:
		return fmt.Errorf("password must contain at least one number")
	case !hasSpecial:
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}

// AdminCredentials guards the admin endpoints
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// Check compares a basic auth pair. An unset hash rejects everyone.
func (a AdminCredentials) Check(username, password string) bool {
	if a.Username == "" || a.PasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passOK := CheckPassword(password, a.PasswordHash)
	return userOK && passOK
}
