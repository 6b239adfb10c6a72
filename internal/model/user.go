package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Account field limits.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 128
	MaxFullNameLen = 100
	MaxEmailLen    = 120
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateRegistration checks a registration request. The email is expected
// to be normalized already.
func ValidateRegistration(r RegisterRequest) error {
	name := strings.TrimSpace(r.FullName)
	switch {
	case name == "":
		return errors.New("full_name is required")
	case utf8.RuneCountInString(name) > MaxFullNameLen:
		return fmt.Errorf("full_name exceeds maximum length of %d characters", MaxFullNameLen)
	case r.Email == "":
		return errors.New("email is required")
	case len(r.Email) > MaxEmailLen || !emailPattern.MatchString(r.Email):
		return errors.New("email is not a valid address")
	case len(r.Password) < MinPasswordLen:
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	case len(r.Password) > MaxPasswordLen:
		return fmt.Errorf("password exceeds maximum length of %d characters", MaxPasswordLen)
	}
	return nil
}
