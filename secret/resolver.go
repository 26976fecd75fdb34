package secret

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const refPrefix = "secretref:"

// Resolver resolves secret references using registered providers.
//
// Values with the prefix "secretref:" are resolved via providers.
// Other values are returned after strict environment expansion.
type Resolver struct {
	providers map[string]Provider
	lookup    func(string) (string, bool)
	strict    bool
}

// NewResolver creates a resolver with the env and file providers registered.
// Extra providers replace built-ins of the same name.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	return NewResolverWithEnv(strict, os.LookupEnv, providers...)
}

// NewResolverWithEnv is NewResolver with an explicit environment lookup, used
// for expansion and by the built-in env provider.
func NewResolverWithEnv(strict bool, lookup func(string) (string, bool), providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider),
		lookup:    lookup,
		strict:    strict,
	}
	r.Register(EnvProvider{Lookup: lookup})
	r.Register(FileProvider{})
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register registers a provider with the resolver.
func (r *Resolver) Register(provider Provider) {
	if provider == nil {
		return
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue expands environment references in value and, when the result
// is a secret reference, resolves it through its provider.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandStrict(value, r.lookup)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(expanded, refPrefix) {
		return expanded, nil
	}

	providerName, ref, ok := ParseSecretRef(expanded)
	if !ok {
		return "", ErrMalformedRef
	}
	provider, ok := r.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, providerName)
	}
	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptySecret, providerName)
	}
	return resolved, nil
}

// ParseSecretRef parses a full secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	if !strings.HasPrefix(value, refPrefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(value, refPrefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
