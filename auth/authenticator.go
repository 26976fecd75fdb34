package auth

import (
	"context"
	"net/http"
)

// Authenticator turns request credentials into an Identity.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: credential problems are reported as ErrMissingCredentials,
//     ErrInvalidCredentials, ErrTokenExpired or ErrTokenMalformed.
type Authenticator interface {
	Name() string
	Authenticate(ctx context.Context, header http.Header) (*Identity, error)
}

// AnonymousAuthenticator accepts every request as AnonymousIdentity(Roles...).
type AnonymousAuthenticator struct {
	Roles []string
}

// NewAnonymousAuthenticator grants anonymous callers roles. With no roles
// given, callers get RoleAdmin.
func NewAnonymousAuthenticator(roles ...string) *AnonymousAuthenticator {
	if len(roles) == 0 {
		roles = []string{RoleAdmin}
	}
	return &AnonymousAuthenticator{Roles: roles}
}

func (a *AnonymousAuthenticator) Name() string { return "anonymous" }

func (a *AnonymousAuthenticator) Authenticate(context.Context, http.Header) (*Identity, error) {
	return AnonymousIdentity(a.Roles...), nil
}

var _ Authenticator = (*AnonymousAuthenticator)(nil)
