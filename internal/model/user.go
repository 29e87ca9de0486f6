// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the authorization role carried in the token's "role" claim.
type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account.
//
// Email is the identity key: tokens carry it as a claim and every
// authenticated request resolves it back to a User. PasswordHash is empty for
// accounts created through GitHub login and never leaves the server.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	Username     string    `json:"username"  db:"username"`
	Role         Role      `json:"role"      db:"role"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
