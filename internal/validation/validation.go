// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared struct validator for request payloads.
var Validate = validator.New()

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

var reservedUsernames = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"auth":     {},
	"feed":     {},
	"follow":   {},
	"images":   {},
	"login":    {},
	"logout":   {},
	"me":       {},
	"metrics":  {},
	"ranking":  {},
	"register": {},
	"settings": {},
	"users":    {},
}

// ValidateUsername checks username format and reserved names.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-30 characters and contain only letters, numbers, and underscores")
	}
	if _, exists := reservedUsernames[strings.ToLower(username)]; exists {
		return fmt.Errorf("username is reserved")
	}
	return nil
}

// ValidateEmail checks that the address is a plausible email.
func ValidateEmail(email string) error {
	if err := Validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidateURL checks that the value is an absolute http(s) URL.
func ValidateURL(raw string) error {
	if err := Validate.Var(raw, "required,url"); err != nil {
		return fmt.Errorf("invalid URL")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return fmt.Errorf("URL must use http or https")
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}

	return nil
}

var slugStripRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a title. The result is unique enough
// for URLs because image URLs also carry the numeric id.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugStripRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 64 {
		slug = strings.Trim(slug[:64], "-")
	}
	if slug == "" {
		slug = "image"
	}
	return slug
}
