package services

import (
	"regexp"
	"strings"

	"finfolio-backend/internal/apperrors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 8

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

func validateRegistration(name, email, password string) error {
	if name == "" || email == "" || password == "" {
		return apperrors.Validation("Name, email and password are required")
	}
	if len(name) > 100 {
		return apperrors.Validation("Name must be at most 100 characters")
	}
	if !emailPattern.MatchString(email) {
		return apperrors.Validation("Email is invalid")
	}
	if len(password) < minPasswordLength {
		return apperrors.Validation("Password must be at least 8 characters")
	}
	return nil
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return apperrors.Validation("Email and password are required")
	}
	return nil
}
