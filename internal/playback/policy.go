// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package playback implements the play order and cursor of an album session.
package playback

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/ManuGH/albumplay/internal/media"
)

// SortPolicy selects how a play order is derived from an album.
// The numeric values are the persisted raw values and must not change.
type SortPolicy int

const (
	SortOldestFirst SortPolicy = 1 // Ascending by creation date
	SortNewestFirst SortPolicy = 2 // Descending by creation date
	SortShuffle     SortPolicy = 3 // Fresh uniform permutation on each apply
)

// DefaultSortPolicy is used for unknown or unset values.
const DefaultSortPolicy = SortOldestFirst

// String returns the canonical text form of the policy.
func (p SortPolicy) String() string {
	switch p {
	case SortOldestFirst:
		return "oldest-first"
	case SortNewestFirst:
		return "newest-first"
	case SortShuffle:
		return "shuffle"
	default:
		return fmt.Sprintf("SortPolicy(%d)", int(p))
	}
}

// Valid reports whether p is one of the known policies.
func (p SortPolicy) Valid() bool {
	return p == SortOldestFirst || p == SortNewestFirst || p == SortShuffle
}

// SortPolicyFromRaw maps a persisted raw value to a policy, falling back to
// DefaultSortPolicy for anything unknown.
func SortPolicyFromRaw(raw int) SortPolicy {
	p := SortPolicy(raw)
	if !p.Valid() {
		return DefaultSortPolicy
	}
	return p
}

// ParseSortPolicy parses the text form ("oldest-first", "newest-first", "shuffle").
func ParseSortPolicy(s string) (SortPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oldest-first", "date_asc", "asc":
		return SortOldestFirst, nil
	case "newest-first", "date_desc", "desc":
		return SortNewestFirst, nil
	case "shuffle", "random":
		return SortShuffle, nil
	default:
		return 0, fmt.Errorf("unknown sort policy %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p SortPolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid sort policy %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SortPolicy) UnmarshalText(b []byte) error {
	parsed, err := ParseSortPolicy(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Apply returns a new slice holding the same videos ordered by policy.
// The input is never modified. Equal creation dates keep their input order.
func Apply(videos []media.Video, policy SortPolicy) []media.Video {
	out := make([]media.Video, len(videos))
	copy(out, videos)

	switch policy {
	case SortNewestFirst:
		slices.SortStableFunc(out, func(a, b media.Video) int {
			return media.CompareCreated(b, a)
		})
	case SortShuffle:
		rand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	default:
		slices.SortStableFunc(out, media.CompareCreated)
	}
	return out
}
