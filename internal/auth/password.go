package auth

// PASSWORD STORAGE:
// Passwords are stored only as bcrypt hashes. bcrypt is slow on purpose and
// its work factor is tunable, so every guess an attacker makes against a
// leaked users table costs real CPU time. Fast digests (MD5, SHA-256) give
// no such protection.
//
// Each hash carries its own random salt and cost, so users.password_hash
// is the only column needed:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
//
// GitHub-only accounts have an empty hash and can never log in with a
// password.

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned by PasswordService.Verify on a mismatch.
var ErrInvalidPassword = errors.New("auth: invalid password")

// MaxPasswordBytes is bcrypt's input limit. Longer passwords are rejected
// instead of silently truncated.
const MaxPasswordBytes = 72

// PasswordService hashes and verifies account passwords with bcrypt.
type PasswordService struct {
	cost int
}

// NewPasswordServiceWithCost uses the given bcrypt cost (BCRYPT_COST).
//
// COST TUNING:
// Pick a cost at which one Hash takes a few hundred milliseconds on the
// production host. Each step doubles the work, so 12 is four times slower
// than 10. Tests run at bcrypt.MinCost.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns a self-describing bcrypt hash ($2a$<cost>$<salt><hash>)
// suitable for storing in users.password_hash.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	// bcrypt only reads the first 72 bytes. Two passwords sharing that
	// prefix would hash the same, so longer input is refused outright.
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash and ErrInvalidPassword when
// it does not. An empty hash (GitHub-only account) never matches.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword compares the derived hashes in constant
// time, so response latency does not reveal how much of a guess was right.
//
// Usage:
//
//	if err := passwords.Verify(user.PasswordHash, input); err != nil {
//	    // wrong password, or a GitHub-only account
//	}
func (p *PasswordService) Verify(hash, plaintext string) error {
	if hash == "" {
		return ErrInvalidPassword
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
