// Package validation holds input rules shared by the HTTP layer and the services.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxUsernameLength matches the users.username column size.
	MaxUsernameLength = 64
	// MaxPasswordBytes is the longest secret bcrypt will hash.
	MaxPasswordBytes = 72
)

// ValidateUsername checks a handle is present and fits the store column.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	return nil
}

// ValidatePassword checks a secret is present and within bcrypt's input limit.
// No strength policy is applied.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}
