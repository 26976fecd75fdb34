package cache

import (
	"errors"
	"strings"
)

// MaxIDLength is the maximum allowed length for a logical identifier.
const MaxIDLength = 512

// Sentinel errors for cache operations.
var (
	ErrInvalidID      = errors.New("cache: logical id is invalid")
	ErrIDTooLong      = errors.New("cache: logical id exceeds max length")
	ErrUnserializable = errors.New("cache: parameters are not serializable")
	ErrInvalidPolicy  = errors.New("cache: policy is invalid")
)

// Stats is a point-in-time snapshot of cache health.
//
// The JSON field names are consumed by the health and stats endpoints and
// must stay stable.
type Stats struct {
	Size      int    `json:"size"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Capacity  int    `json:"capacity"`
}

// HitRatio returns hits / (hits + misses), or 0 when nothing was looked up.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// ValidateID checks if a logical identifier can be used for key derivation.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	if len(id) > MaxIDLength {
		return ErrIDTooLong
	}
	if strings.ContainsAny(id, "\n\r") {
		return ErrInvalidID
	}
	return nil
}
