// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds in bytes. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// HashCost is the bcrypt cost for new hashes. Tests lower it.
var HashCost = bcrypt.DefaultCost

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash returns a hash at HashCost that matches no real password. Login
// compares against it for unknown emails.
func dummyHash() string {
	dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("no-account-matches-this"), HashCost)
		if err == nil {
			dummy = string(hash)
		}
	})
	return dummy
}

// CheckPasswordPolicy returns a message describing why password is not
// acceptable, or "".
func CheckPasswordPolicy(password string) string {
	switch {
	case len(password) < MinPasswordLength:
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	case len(password) > MaxPasswordLength:
		return fmt.Sprintf("password must be at most %d bytes", MaxPasswordLength)
	}
	return ""
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. Errors other than
// a mismatch are returned.
func VerifyPassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verifying password: %w", err)
	}
}
