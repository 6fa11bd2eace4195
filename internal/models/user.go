package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole is the permission tier attached to an identity.
type UserRole string

const (
	// RoleNone marks an anonymous caller.
	RoleNone  UserRole = ""
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Valid reports whether the role is one that can be assigned to an account.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an account in the credential store.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Identity is the verified caller of a request.
type Identity struct {
	Subject string   `json:"username"`
	Role    UserRole `json:"role"`
}

// Anonymous reports whether no verified identity is present.
func (i *Identity) Anonymous() bool {
	return i == nil || i.Subject == ""
}

// RoleOrNone returns the identity role, or RoleNone for anonymous callers.
func (i *Identity) RoleOrNone() UserRole {
	if i.Anonymous() {
		return RoleNone
	}
	return i.Role
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into a caller identity.
func (c *JWTClaims) Identity() *Identity {
	if c == nil {
		return nil
	}
	return &Identity{Subject: c.Username, Role: c.Role}
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=80"`
	Password string   `json:"password" validate:"required,min=6"`
	Role     UserRole `json:"role" validate:"omitempty,oneof=user admin"`
}

// TokenResponse is returned after a successful login.
type TokenResponse struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ExpiresIn int64  `json:"expires_in"`
}
