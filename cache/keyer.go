package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// KeyLength is the length of every derived key: a hex-encoded SHA-256 digest.
const KeyLength = sha256.Size * 2

// Keyer derives deterministic cache keys from a logical identifier and its parameters.
//
// Contract:
//   - Determinism: same inputs must produce same key, regardless of map iteration order.
//   - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key generates a cache key from a logical ID and parameters.
	Key(logicalID string, params any) (string, error)
}

// DefaultKeyer generates SHA-256 based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key generates a deterministic cache key.
// The key is hex(SHA-256(logicalID + ":" + canonical JSON(params))).
// Nil params hash the same as an empty object.
func (k *DefaultKeyer) Key(logicalID string, params any) (string, error) {
	if err := ValidateID(logicalID); err != nil {
		return "", err
	}

	canonical, err := canonicalize(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnserializable, err)
	}

	h := sha256.New()
	h.Write([]byte(logicalID))
	h.Write([]byte{':'})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

var defaultKeyer = NewDefaultKeyer()

// KeyFor derives the key for (logicalID, params) with the default keyer.
func KeyFor(logicalID string, params any) (string, error) {
	return defaultKeyer.Key(logicalID, params)
}

// MustKeyFor is like KeyFor but panics if the key cannot be derived.
func MustKeyFor(logicalID string, params any) string {
	key, err := KeyFor(logicalID, params)
	if err != nil {
		panic(err)
	}
	return key
}

// canonicalize produces a deterministic JSON representation of the input.
// Typed values are first normalized to their generic JSON shape so that a
// struct and the equivalent map hash identically; object keys are then
// sorted at every level.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	if generic == nil {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case map[string]any:
		return writeCanonicalMap(buf, val)
	case []any:
		return writeCanonicalSlice(buf, val)
	case json.Number:
		buf.WriteString(val.String())
		return nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}
}

func writeCanonicalMap(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		if err := writeCanonical(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeCanonicalSlice(buf *bytes.Buffer, s []any) error {
	buf.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonical(buf, v); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
