package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures HMAC token validation and issuance.
type JWTConfig struct {
	// Secret is the shared HMAC key. Required.
	Secret []byte

	// Issuer, when set, must match the iss claim and is stamped on issued tokens.
	Issuer string

	// Audience, when set, must appear in the aud claim.
	Audience string

	// Leeway tolerates clock skew on exp, nbf and iat.
	Leeway time.Duration

	// HeaderName carries the token. Default: "Authorization".
	HeaderName string

	// TokenPrefix precedes the token in the header. Default: "Bearer ".
	TokenPrefix string
}

// Claims are the token claims understood by the API.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator validates HS256/HS384/HS512 bearer tokens.
type JWTAuthenticator struct {
	config JWTConfig
	parser *jwt.Parser
	now    func() time.Time
}

// NewJWTAuthenticator creates an authenticator for config.
func NewJWTAuthenticator(config JWTConfig) (*JWTAuthenticator, error) {
	if len(config.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}
	if config.TokenPrefix == "" {
		config.TokenPrefix = "Bearer "
	}

	a := &JWTAuthenticator{config: config, now: time.Now}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(config.Leeway),
		jwt.WithTimeFunc(func() time.Time { return a.now() }),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}
	a.parser = jwt.NewParser(opts...)
	return a, nil
}

func (a *JWTAuthenticator) Name() string { return "jwt" }

// Authenticate validates the bearer token in header.
func (a *JWTAuthenticator) Authenticate(_ context.Context, header http.Header) (*Identity, error) {
	raw := header.Get(a.config.HeaderName)
	token, found := strings.CutPrefix(raw, a.config.TokenPrefix)
	if !found || strings.TrimSpace(token) == "" {
		return nil, ErrMissingCredentials
	}

	claims := &Claims{}
	_, err := a.parser.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (any, error) {
		return a.config.Secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub claim is empty", ErrInvalidCredentials)
	}

	id := &Identity{
		Principal: claims.Subject,
		Roles:     claims.Roles,
		Method:    AuthMethodJWT,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}

// Issue signs an HS256 token for principal valid for ttl.
func (a *JWTAuthenticator) Issue(principal string, roles []string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal,
			Issuer:    a.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if a.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{a.config.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.config.Secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
}

var _ Authenticator = (*JWTAuthenticator)(nil)
