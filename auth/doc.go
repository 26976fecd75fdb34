// Package auth guards the HTTP API with bearer tokens and role-based access
// control.
//
// Tokens are HMAC-signed JWTs whose roles claim names one or more of the
// built-in roles (admin, pentester, auditor, viewer). Each route requires a
// single Permission; Middleware authenticates the request, checks the
// permission against the RBAC table and stores the Identity in the request
// context. With authentication disabled, AnonymousAuthenticator grants every
// request the admin role.
package auth
