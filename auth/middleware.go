package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Middleware returns HTTP middleware requiring perm.
//
// Requests that fail authentication get 401; authenticated callers lacking
// perm get 403. On success the identity is stored in the request context.
func Middleware(authn Authenticator, rbac *RBAC, perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authn.Authenticate(r.Context(), r.Header)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tornado"`)
				deny(w, http.StatusUnauthorized, err)
				return
			}
			if err := rbac.Authorize(id, perm); err != nil {
				deny(w, http.StatusForbidden, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func deny(w http.ResponseWriter, code int, err error) {
	// Keep parser detail out of responses.
	var msg string
	switch {
	case errors.Is(err, ErrForbidden):
		msg = ErrForbidden.Error()
	case errors.Is(err, ErrTokenExpired):
		msg = ErrTokenExpired.Error()
	case errors.Is(err, ErrMissingCredentials):
		msg = ErrMissingCredentials.Error()
	default:
		msg = ErrInvalidCredentials.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
