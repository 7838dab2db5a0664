// Package security holds the credential hashing and account lockout
// primitives. Both are pure with respect to storage: persistence of the
// resulting state is the caller's concern.
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash reports a stored digest that bcrypt cannot parse at all,
// as opposed to a digest that simply does not match. A corrupt hash in the
// database is an integrity problem and must not be reported as a wrong
// password.
var ErrMalformedHash = errors.New("malformed password digest")

const DefaultBcryptCost = 12

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return PasswordHasher{cost: cost}
}

// Hash produces a salted bcrypt digest. Two calls with the same plaintext
// yield different digests.
func (h PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the digest. The comparison is
// constant-time within bcrypt. A structurally invalid digest returns
// ErrMalformedHash rather than a plain false.
func (h PasswordHasher) Verify(plaintext string, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
}
