// Package auth issues and checks the credentials that identify who is acting
// on a request.
//
// TOKEN LIFECYCLE:
// 1. Login (password or GitHub) calls TokenService.Issue(email, role, ttl)
// 2. The client sends the token back as "Authorization: Bearer <token>"
//    (or in the HttpOnly "token" cookie set by the GitHub callback)
// 3. RequireAuth verifies the signature, rejects expired tokens, and resolves
//    the email claim to a stored user exactly once per request
// 4. Handlers read that user with UserFromContext
//
// Verify and IsExpired are deliberately separate: Verify only proves that the
// token was signed with our secret and is well formed. Callers that need a
// live token must also ask IsExpired.
//
// The payload looks like:
//
//	{"email":"kim@college.ac.kr","role":"ROLE_USER","iat":1700000000,"exp":1700007200}
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSignature means the token was not signed with our secret.
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	// ErrMalformed means the token could not be parsed at all.
	ErrMalformed = errors.New("auth: malformed token")
	// ErrExpired means the token verified but its exp claim has passed.
	ErrExpired = errors.New("auth: token expired")
)

const (
	ClaimEmail = "email"
	ClaimRole  = "role"
)

// TokenService signs and verifies HS256 tokens. The secret is fixed for the
// lifetime of the process.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Claims is the token payload.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for email and role that expires ttl from now.
// A ttl of zero or less yields a token that is already expired.
//
// SUB-SECOND TTLs:
// exp is stored in whole seconds and NumericDate truncates. A positive ttl
// is rounded up to the next second boundary instead, so a 500ms token is
// still valid right after it is issued rather than born expired.
func (s *TokenService) Issue(email, role string, ttl time.Duration) (string, error) {
	now := s.now()

	c := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry(now, ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// expiry returns now+ttl, rounded up to a whole second when ttl > 0.
func expiry(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if ttl <= 0 {
		return exp
	}
	if t := exp.Truncate(time.Second); t.Before(exp) {
		return t.Add(time.Second)
	}
	return exp
}

// Verify checks the signature and structure of token and returns its claims.
// It does not reject expired tokens; see IsExpired.
//
// jwt.WithValidMethods pins HS256, so a token claiming "none" or an RSA
// algorithm fails as an invalid signature instead of being trusted.
func (s *TokenService) Verify(token string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(
		token,
		&c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return &c, nil
}

// IsExpired reports whether the token's exp claim is not after the current
// time. A token issued with ttl <= 0 is expired immediately. A token without
// exp counts as expired.
func (s *TokenService) IsExpired(token string) (bool, error) {
	c, err := s.Verify(token)
	if err != nil {
		return false, err
	}
	return c.expired(s.now()), nil
}

func (c *Claims) expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}

// Claim returns the named string claim ("email" or "role").
func (s *TokenService) Claim(token, name string) (string, error) {
	c, err := s.Verify(token)
	if err != nil {
		return "", err
	}
	switch name {
	case ClaimEmail:
		return c.Email, nil
	case ClaimRole:
		return c.Role, nil
	default:
		return "", fmt.Errorf("%w: unknown claim %q", ErrMalformed, name)
	}
}
