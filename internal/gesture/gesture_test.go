// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package gesture

import "testing"

func TestResolve(t *testing.T) {
	left := Swipe{DX: -120, DY: 10}
	right := Swipe{DX: 120, DY: -10}
	up := Swipe{DX: 5, DY: -120}
	down := Swipe{DX: -5, DY: 120}

	tests := []struct {
		name      string
		swipe     Swipe
		rotated   bool
		canGoBack bool
		want      Action
	}{
		{"left is next", left, false, true, Next},
		{"right is previous", right, false, true, Previous},
		{"right without history", right, false, false, None},
		{"up closes", up, false, true, Close},
		{"down closes", down, false, false, Close},

		{"rotated up is next", up, true, true, Next},
		{"rotated down is previous", down, true, true, Previous},
		{"rotated down without history", down, true, false, None},
		{"rotated left closes", left, true, true, Close},
		{"rotated right closes", right, true, false, Close},

		{"below threshold", Swipe{DX: -10, DY: 4}, false, true, None},
		{"no movement", Swipe{}, true, true, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.swipe, tt.rotated, tt.canGoBack, 30); got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve_DefaultThreshold(t *testing.T) {
	if got := Resolve(Swipe{DX: -(DefaultThreshold - 1)}, false, true, 0); got != None {
		t.Errorf("short swipe = %v, want none", got)
	}
	if got := Resolve(Swipe{DX: -DefaultThreshold}, false, true, 0); got != Next {
		t.Errorf("threshold swipe = %v, want next", got)
	}
}

func TestDirectionOf_DominantAxis(t *testing.T) {
	if got := DirectionOf(Swipe{DX: 50, DY: 80}, 30); got != DirDown {
		t.Errorf("DirectionOf = %v, want down", got)
	}
	if got := DirectionOf(Swipe{DX: -60, DY: 60}, 30); got != DirDown {
		t.Errorf("tie = %v, want down", got)
	}
	if got := DirectionOf(Swipe{DX: 45, DY: -45}, 30); got != DirUp {
		t.Errorf("tie = %v, want up", got)
	}
	if got := DirectionOf(Swipe{}, 0); got != DirNone {
		t.Errorf("no movement = %v, want none", got)
	}
}

func TestResolve_TieUsesVerticalAxis(t *testing.T) {
	tie := Swipe{DX: -60, DY: 60}
	if got := Resolve(tie, false, true, 30); got != Close {
		t.Errorf("unrotated tie = %v, want close", got)
	}
	if got := Resolve(tie, true, true, 30); got != Previous {
		t.Errorf("rotated tie = %v, want previous", got)
	}
}
