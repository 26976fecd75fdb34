package auth

import (
	"slices"
	"time"
)

// AuthMethod indicates how an identity was established.
type AuthMethod string

const (
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity is an authenticated caller.
type Identity struct {
	// Principal is the caller's id, taken from the sub claim.
	Principal string

	// Roles are RBAC role names.
	Roles []string

	Method AuthMethod

	ExpiresAt time.Time
	IssuedAt  time.Time
}

// HasRole reports whether role was granted to the identity.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired reports whether the identity is past its expiry.
// Identities without an expiry never expire.
func (id *Identity) IsExpired() bool {
	return !id.ExpiresAt.IsZero() && time.Now().After(id.ExpiresAt)
}

// IsAnonymous reports whether the identity came from no credentials.
func (id *Identity) IsAnonymous() bool {
	return id.Method == AuthMethodAnonymous
}

// AnonymousIdentity returns the identity used when authentication is off.
func AnonymousIdentity(roles ...string) *Identity {
	return &Identity{
		Principal: "anonymous",
		Roles:     roles,
		Method:    AuthMethodAnonymous,
	}
}
