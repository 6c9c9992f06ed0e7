// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package settings persists the user's display orientation and sort policy.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/albumplay/internal/playback"
)

// Orientation is the preferred display orientation. The numeric values are
// the persisted raw values.
type Orientation int

const (
	Portrait  Orientation = 0
	Landscape Orientation = 1
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Valid reports whether o is a known orientation.
func (o Orientation) Valid() bool {
	return o == Portrait || o == Landscape
}

// OrientationFromRaw maps a persisted value to an orientation, falling back to
// Portrait for unknown values.
func OrientationFromRaw(raw int) Orientation {
	o := Orientation(raw)
	if !o.Valid() {
		return Portrait
	}
	return o
}

// ParseOrientation parses "portrait" or "landscape".
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait":
		return Portrait, nil
	case "landscape":
		return Landscape, nil
	default:
		return 0, fmt.Errorf("unknown orientation %q", s)
	}
}

func (o Orientation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid orientation %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(b []byte) error {
	parsed, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Settings is the persisted user preference set.
type Settings struct {
	Orientation Orientation         `json:"orientation"`
	Sort        playback.SortPolicy `json:"sort"`
}

// Default returns portrait, oldest first.
func Default() Settings {
	return Settings{Orientation: Portrait, Sort: playback.DefaultSortPolicy}
}

// FromRaw builds settings from persisted raw values.
func FromRaw(orientation, sort int) Settings {
	return Settings{
		Orientation: OrientationFromRaw(orientation),
		Sort:        playback.SortPolicyFromRaw(sort),
	}
}

// Raw returns the persisted raw values.
func (s Settings) Raw() (orientation, sort int) {
	return int(s.Orientation), int(s.Sort)
}

// Normalize replaces unknown values with defaults.
func (s Settings) Normalize() Settings {
	return FromRaw(s.Raw())
}

// Store loads and saves settings. Missing values load as defaults.
type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
	Close() error
}

// ErrUnknownBackend is returned by NewStore for unsupported backends.
var ErrUnknownBackend = errors.New("unknown settings backend")

// Rotation is the clockwise rotation applied to the player surface in degrees.
type Rotation int

const (
	Rotate0  Rotation = 0
	Rotate90 Rotation = 90
)

// Rotated reports whether the surface is turned.
func (r Rotation) Rotated() bool {
	return r != Rotate0
}

// RotationFor returns Rotate90 when the display does not match the preferred
// orientation.
func RotationFor(o Orientation, displayPortrait bool) Rotation {
	if (o == Portrait) == displayPortrait {
		return Rotate0
	}
	return Rotate90
}
