package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type stubProvider struct {
	name    string
	values  map[string]string
	resolve func(ref string) (string, error)
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	if s.resolve != nil {
		return s.resolve(ref)
	}
	return s.values[ref], nil
}

func envLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseSecretRef(t *testing.T) {
	provider, ref, ok := ParseSecretRef("secretref:file:/run/secrets/jwt")
	if !ok {
		t.Fatalf("expected secretref to parse")
	}
	if provider != "file" || ref != "/run/secrets/jwt" {
		t.Fatalf("unexpected values: %q %q", provider, ref)
	}

	for _, bad := range []string{"not-a-secretref", "secretref:", "secretref:env", "secretref::x"} {
		if _, _, ok := ParseSecretRef(bad); ok {
			t.Errorf("ParseSecretRef(%q) ok = true", bad)
		}
	}
}

func TestResolver_Literal(t *testing.T) {
	r := NewResolverWithEnv(true, envLookup(map[string]string{"KEY": "abc"}))

	got, err := r.ResolveValue(context.Background(), "prefix-${KEY}")
	if err != nil {
		t.Fatal(err)
	}
	if got != "prefix-abc" {
		t.Errorf("ResolveValue() = %q", got)
	}
}

func TestResolver_EnvProvider(t *testing.T) {
	r := NewResolverWithEnv(true, envLookup(map[string]string{"JWT_KEY": "k3y"}))

	got, err := r.ResolveValue(context.Background(), "secretref:env:JWT_KEY")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "k3y" {
		t.Errorf("ResolveValue() = %q, want k3y", got)
	}

	if _, err := r.ResolveValue(context.Background(), "secretref:env:NOPE"); !errors.Is(err, ErrMissingEnv) {
		t.Errorf("missing env error = %v", err)
	}
}

func TestResolver_FileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	r := NewResolverWithEnv(true, envLookup(map[string]string{"DIR": filepath.Dir(path)}))

	got, err := r.ResolveValue(context.Background(), "secretref:file:${DIR}/jwt")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "from-file" {
		t.Errorf("ResolveValue() = %q, want trimmed file contents", got)
	}

	if _, err := r.ResolveValue(context.Background(), "secretref:file:"+path+".missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestResolver_Errors(t *testing.T) {
	boom := errors.New("explode")
	r := NewResolverWithEnv(true, envLookup(nil),
		&stubProvider{name: "stub", values: map[string]string{"empty": ""}},
		&stubProvider{name: "fail", resolve: func(string) (string, error) { return "", boom }},
	)

	tests := []struct {
		value string
		want  error
	}{
		{"secretref:stub:empty", ErrEmptySecret},
		{"secretref:vault:x", ErrUnknownProvider},
		{"secretref:stub", ErrMalformedRef},
		{"secretref:fail:x", boom},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if _, err := r.ResolveValue(context.Background(), tt.value); !errors.Is(err, tt.want) {
				t.Errorf("ResolveValue() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestResolver_LaxAllowsEmpty(t *testing.T) {
	r := NewResolverWithEnv(false, envLookup(nil), &stubProvider{name: "stub"})
	got, err := r.ResolveValue(context.Background(), "secretref:stub:x")
	if err != nil || got != "" {
		t.Errorf("ResolveValue() = %q, %v", got, err)
	}
}
