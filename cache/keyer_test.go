package cache

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"testing"
)

var hexKey = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestKeyer_DeterministicForMaps(t *testing.T) {
	keyer := NewDefaultKeyer()

	// Same content, different insertion order
	map1 := map[string]any{"b": 2, "a": 1, "c": map[string]any{"y": 1, "x": 2}}
	map2 := map[string]any{"a": 1, "c": map[string]any{"x": 2, "y": 1}, "b": 2}

	key1, err := keyer.Key("test-tool", map1)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	key2, err := keyer.Key("test-tool", map2)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	if key1 != key2 {
		t.Errorf("Keys should be equal for same content:\n  key1=%s\n  key2=%s", key1, key2)
	}
}

func TestKeyer_SameInputsSameKey(t *testing.T) {
	input := map[string]any{"targets": []any{"10.0.0.1"}, "intensity": "high"}

	first := MustKeyFor("nmap_scan.sim", input)
	for i := 0; i < 5; i++ {
		if got := MustKeyFor("nmap_scan.sim", input); got != first {
			t.Errorf("Key should be consistent across calls:\n  first=%s\n  got[%d]=%s", first, i, got)
		}
	}
}

func TestKeyer_DifferentInputsDifferentKeys(t *testing.T) {
	tests := []struct {
		name     string
		idA, idB string
		pA, pB   any
	}{
		{"different tools", "tool-a", "tool-b", map[string]any{"q": 1}, map[string]any{"q": 1}},
		{"different values", "tool", "tool", map[string]any{"q": 1}, map[string]any{"q": 2}},
		{"array order preserved", "tool", "tool", map[string]any{"q": []any{1, 2}}, map[string]any{"q": []any{2, 1}}},
		{"string vs number", "tool", "tool", map[string]any{"q": "1"}, map[string]any{"q": 1}},
		{"extra field", "tool", "tool", map[string]any{"q": 1}, map[string]any{"q": 1, "r": nil}},
		{"id boundary", "tool:a", "tool", map[string]any{}, map[string]any{"a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyA := MustKeyFor(tt.idA, tt.pA)
			keyB := MustKeyFor(tt.idB, tt.pB)
			if keyA == keyB {
				t.Errorf("Keys should differ:\n  keyA=%s\n  keyB=%s", keyA, keyB)
			}
		})
	}
}

func TestKeyer_NilParamsEqualEmptyObject(t *testing.T) {
	nilKey := MustKeyFor("tool", nil)
	emptyKey := MustKeyFor("tool", map[string]any{})

	if nilKey != emptyKey {
		t.Errorf("nil params should hash as {}:\n  nil=%s\n  empty=%s", nilKey, emptyKey)
	}
}

func TestKeyer_TypedValuesNormalized(t *testing.T) {
	type scanParams struct {
		Intensity string   `json:"intensity"`
		Targets   []string `json:"targets"`
	}

	typed := MustKeyFor("tool", scanParams{Intensity: "low", Targets: []string{"a"}})
	generic := MustKeyFor("tool", map[string]any{"targets": []any{"a"}, "intensity": "low"})
	typedMap := MustKeyFor("tool", map[string]int{"b": 2, "a": 1})
	genericMap := MustKeyFor("tool", map[string]any{"a": 1, "b": 2})

	if typed != generic {
		t.Error("struct params should hash like the equivalent generic map")
	}
	if typedMap != genericMap {
		t.Error("typed maps should hash like the equivalent generic map")
	}
}

func TestKeyer_KeyFormat(t *testing.T) {
	key := MustKeyFor("my-tool", map[string]any{"test": "value"})

	if len(key) != KeyLength {
		t.Errorf("len(key) = %d, want %d", len(key), KeyLength)
	}
	if !hexKey.MatchString(key) {
		t.Errorf("key %q is not lowercase hex", key)
	}
	if strings.Contains(key, "my-tool") {
		t.Error("key should not leak the logical id")
	}
}

func TestKeyer_InvalidID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"empty", "", ErrInvalidID},
		{"whitespace only", "   ", ErrInvalidID},
		{"contains newline", "tool\nname", ErrInvalidID},
		{"contains carriage return", "tool\rname", ErrInvalidID},
		{"too long", strings.Repeat("x", MaxIDLength+1), ErrIDTooLong},
		{"max length exactly", strings.Repeat("x", MaxIDLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KeyFor(tt.id, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("KeyFor(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestKeyer_Unserializable(t *testing.T) {
	tests := []struct {
		name   string
		params any
	}{
		{"channel", map[string]any{"ch": make(chan int)}},
		{"function", func() {}},
		{"nan", map[string]any{"f": math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := KeyFor("tool", tt.params)
			if !errors.Is(err, ErrUnserializable) {
				t.Errorf("KeyFor() error = %v, want ErrUnserializable", err)
			}
		})
	}
}

func TestMustKeyFor_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustKeyFor should panic on unserializable params")
		}
	}()
	MustKeyFor("tool", map[string]any{"ch": make(chan int)})
}
