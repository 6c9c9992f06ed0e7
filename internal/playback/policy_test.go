// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"slices"
	"testing"
	"time"

	"github.com/ManuGH/albumplay/internal/media"
	"github.com/google/go-cmp/cmp"
)

func day(d int) *time.Time {
	return media.TimePtr(time.Date(2021, time.January, d, 0, 0, 0, 0, time.UTC))
}

func ids(videos []media.Video) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.ID)
	}
	return out
}

func sortedIDs(videos []media.Video) []string {
	out := ids(videos)
	slices.Sort(out)
	return out
}

func TestApply_IsPermutation(t *testing.T) {
	inputs := map[string][]media.Video{
		"empty": nil,
		"single": {
			{ID: "v1", CreatedAt: day(1)},
		},
		"mixed": {
			{ID: "v3", CreatedAt: day(3)},
			{ID: "v1", CreatedAt: day(1)},
			{ID: "nil"},
			{ID: "v2", CreatedAt: day(2)},
			{ID: "v2b", CreatedAt: day(2)},
		},
	}
	for name, videos := range inputs {
		for _, policy := range []SortPolicy{SortOldestFirst, SortNewestFirst, SortShuffle} {
			got := Apply(videos, policy)
			if len(got) != len(videos) {
				t.Fatalf("%s/%s: len = %d, want %d", name, policy, len(got), len(videos))
			}
			if diff := cmp.Diff(sortedIDs(videos), sortedIDs(got)); diff != "" {
				t.Errorf("%s/%s: id multiset mismatch (-want +got):\n%s", name, policy, diff)
			}
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	videos := []media.Video{
		{ID: "v3", CreatedAt: day(3)},
		{ID: "v1", CreatedAt: day(1)},
		{ID: "v2", CreatedAt: day(2)},
	}
	before := ids(videos)
	for _, policy := range []SortPolicy{SortOldestFirst, SortNewestFirst, SortShuffle} {
		_ = Apply(videos, policy)
	}
	if diff := cmp.Diff(before, ids(videos)); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestApply_DateOrders(t *testing.T) {
	videos := []media.Video{
		{ID: "v2", CreatedAt: day(2)},
		{ID: "v3", CreatedAt: day(3)},
		{ID: "v1", CreatedAt: day(1)},
	}

	oldest := Apply(videos, SortOldestFirst)
	if diff := cmp.Diff([]string{"v1", "v2", "v3"}, ids(oldest)); diff != "" {
		t.Errorf("oldest-first (-want +got):\n%s", diff)
	}

	newest := Apply(videos, SortNewestFirst)
	reversed := slices.Clone(oldest)
	slices.Reverse(reversed)
	if diff := cmp.Diff(ids(reversed), ids(newest)); diff != "" {
		t.Errorf("newest-first is not oldest-first reversed (-want +got):\n%s", diff)
	}
}

func TestApply_StableForEqualDates(t *testing.T) {
	videos := []media.Video{
		{ID: "a", CreatedAt: day(2)},
		{ID: "b", CreatedAt: day(1)},
		{ID: "c", CreatedAt: day(2)},
		{ID: "d", CreatedAt: day(1)},
	}
	if diff := cmp.Diff([]string{"b", "d", "a", "c"}, ids(Apply(videos, SortOldestFirst))); diff != "" {
		t.Errorf("oldest-first ties (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c", "b", "d"}, ids(Apply(videos, SortNewestFirst))); diff != "" {
		t.Errorf("newest-first ties (-want +got):\n%s", diff)
	}
}

func TestApply_MissingDateSortsFirst(t *testing.T) {
	videos := []media.Video{
		{ID: "dated", CreatedAt: day(1)},
		{ID: "undated"},
	}
	if got := ids(Apply(videos, SortOldestFirst)); got[0] != "undated" {
		t.Errorf("oldest-first: first = %q, want undated", got[0])
	}
	if got := ids(Apply(videos, SortNewestFirst)); got[1] != "undated" {
		t.Errorf("newest-first: last = %q, want undated", got[1])
	}
}

func TestApply_UnknownPolicyFallsBackToOldestFirst(t *testing.T) {
	videos := []media.Video{
		{ID: "v2", CreatedAt: day(2)},
		{ID: "v1", CreatedAt: day(1)},
	}
	if diff := cmp.Diff([]string{"v1", "v2"}, ids(Apply(videos, SortPolicy(42)))); diff != "" {
		t.Errorf("fallback (-want +got):\n%s", diff)
	}
}

func TestSortPolicy_RawAndText(t *testing.T) {
	tests := []struct {
		raw  int
		want SortPolicy
	}{
		{0, SortOldestFirst},
		{1, SortOldestFirst},
		{2, SortNewestFirst},
		{3, SortShuffle},
		{99, SortOldestFirst},
	}
	for _, tt := range tests {
		if got := SortPolicyFromRaw(tt.raw); got != tt.want {
			t.Errorf("SortPolicyFromRaw(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	for _, p := range []SortPolicy{SortOldestFirst, SortNewestFirst, SortShuffle} {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", p, err)
		}
		var back SortPolicy
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != p {
			t.Errorf("text form %q parsed to %v, want %v", text, back, p)
		}
	}

	if _, err := ParseSortPolicy("sideways"); err == nil {
		t.Error("expected error for unknown policy text")
	}
}
