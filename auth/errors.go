package auth

import "errors"

var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrEmptySecret        = errors.New("auth: signing secret is empty")

	ErrForbidden   = errors.New("auth: access denied")
	ErrUnknownRole = errors.New("auth: unknown role")
)
