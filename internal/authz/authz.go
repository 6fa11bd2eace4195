// Package authz decides which character operations a caller's role permits.
package authz

import "github.com/MfFischer/game-of-thrones-api/internal/models"

// Operation is an action on the character collection.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Allow lets the operation proceed.
	Allow Decision = iota
	// Unauthenticated means the operation needs a verified identity.
	Unauthenticated
	// Forbidden means the verified identity lacks the required role.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Policy holds the product switches of the gate.
type Policy struct {
	// AnonymousRead lets callers without a token list and fetch characters.
	AnonymousRead bool
}

// DefaultPolicy allows anonymous reads.
var DefaultPolicy = Policy{AnonymousRead: true}

// Authorize decides whether role may perform op. Unknown operations and
// unrecognised roles are never allowed.
func (p Policy) Authorize(role models.UserRole, op Operation) Decision {
	if role == models.RoleNone {
		if op == OpRead && p.AnonymousRead {
			return Allow
		}
		if knownOperation(op) {
			return Unauthenticated
		}
		return Forbidden
	}
	if !role.Valid() {
		return Forbidden
	}

	switch op {
	case OpRead, OpCreate, OpUpdate:
		return Allow
	case OpDelete:
		if role == models.RoleAdmin {
			return Allow
		}
		return Forbidden
	default:
		return Forbidden
	}
}

// Authorize applies DefaultPolicy.
func Authorize(role models.UserRole, op Operation) Decision {
	return DefaultPolicy.Authorize(role, op)
}

func knownOperation(op Operation) bool {
	switch op {
	case OpRead, OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}
