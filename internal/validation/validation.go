// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MinPasswordLength = 5
	MaxPasswordLength = 128
	MinTitleLength    = 5
	MinContentLength  = 5
	MaxNameLength     = 60
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	return nil
}

// ValidatePassword checks password length bounds. Whitespace-only
// passwords are rejected.
func ValidatePassword(password string) error {
	trimmed := strings.TrimSpace(password)
	if len(trimmed) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateName checks that a display name is present and reasonable.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name is required")
	}
	if len(trimmed) > MaxNameLength {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLength)
	}
	return nil
}

// ValidateTitle checks a post title.
func ValidateTitle(title string) error {
	if len(strings.TrimSpace(title)) < MinTitleLength {
		return fmt.Errorf("title must be at least %d characters long", MinTitleLength)
	}
	return nil
}

// ValidateContent checks a post body.
func ValidateContent(content string) error {
	if len(strings.TrimSpace(content)) < MinContentLength {
		return fmt.Errorf("content must be at least %d characters long", MinContentLength)
	}
	return nil
}

// ValidateStatus checks a profile status line.
func ValidateStatus(status string) error {
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("status must not be empty")
	}
	return nil
}
