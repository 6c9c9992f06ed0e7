// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package gesture maps swipe gestures on the player surface to playback
// actions.
package gesture

import (
	"fmt"
	"math"
)

// Action is the playback command a swipe resolves to.
type Action int

const (
	None Action = iota
	Next
	Previous
	Close
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case Next:
		return "next"
	case Previous:
		return "previous"
	case Close:
		return "close"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Direction is the dominant direction of a swipe in screen coordinates.
type Direction int

const (
	DirNone Direction = iota
	DirLeft
	DirRight
	DirUp
	DirDown
)

// Swipe is the translation of a gesture. Positive DX is to the right and
// positive DY is downwards.
type Swipe struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// DefaultThreshold is the minimum travel, in points, of a recognised swipe.
const DefaultThreshold = 30

// DirectionOf returns the dominant axis direction of s, or DirNone when the
// travel along it is below threshold. Ties go to the vertical axis.
func DirectionOf(s Swipe, threshold float64) Direction {
	ax, ay := math.Abs(s.DX), math.Abs(s.DY)
	if ax > ay {
		switch {
		case ax < threshold:
			return DirNone
		case s.DX < 0:
			return DirLeft
		default:
			return DirRight
		}
	}
	switch {
	case ay < threshold || ay == 0:
		return DirNone
	case s.DY < 0:
		return DirUp
	default:
		return DirDown
	}
}

// Resolve maps a swipe to an action. On an unrotated surface left and right
// step through the album and vertical swipes close it; on a rotated surface
// the axes swap. Previous resolves to None when canGoBack is false.
func Resolve(s Swipe, rotated, canGoBack bool, threshold float64) Action {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var action Action
	switch dir := DirectionOf(s, threshold); {
	case dir == DirNone:
		return None
	case !rotated && dir == DirLeft, rotated && dir == DirUp:
		action = Next
	case !rotated && dir == DirRight, rotated && dir == DirDown:
		action = Previous
	default:
		action = Close
	}

	if action == Previous && !canGoBack {
		return None
	}
	return action
}
