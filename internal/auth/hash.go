package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

func deriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// HashPassword hashes a password using Argon2id. The result is
// base64(salt) + "$" + base64(key).
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generate salt: %w", err)
	}
	enc := base64.StdEncoding
	return enc.EncodeToString(salt) + "$" + enc.EncodeToString(deriveKey(password, salt)), nil
}

// DummyVerify performs an Argon2id hash with the same cost parameters as real
// verification. Login calls it when no account matches the email, so response
// timing does not reveal which addresses are registered.
func DummyVerify() {
	deriveKey("dummy", make([]byte, saltLen))
}

// VerifyPassword checks a password against a hash from HashPassword.
func VerifyPassword(password, encoded string) (bool, error) {
	saltB64, keyB64, ok := strings.Cut(encoded, "$")
	if !ok {
		return false, fmt.Errorf("auth: invalid hash format")
	}
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return false, fmt.Errorf("auth: decode salt: %w", err)
	}
	want, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return false, fmt.Errorf("auth: decode hash: %w", err)
	}
	return subtle.ConstantTimeCompare(want, deriveKey(password, salt)) == 1, nil
}
