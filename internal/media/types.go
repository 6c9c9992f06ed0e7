// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package media defines the value types exchanged between the library loader,
// the playback core and the session controller. Values are treated as
// immutable snapshots once handed to the playback layer.
package media

import (
	"time"
)

// Video is a single playable item of an album.
type Video struct {
	ID string `json:"id"` // Stable identifier, unique within its album
	// CreatedAt is the creation timestamp used for ordering. Nil means unknown
	// and sorts before every dated video.
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Ref       string     `json:"ref"` // Opaque resource reference (never interpreted by playback)
}

// HasCreatedAt reports whether the creation timestamp is known.
func (v Video) HasCreatedAt() bool {
	return v.CreatedAt != nil
}

// CreatedBefore orders two videos by creation time. Missing timestamps are the
// minimal key, so an undated video is before any dated one and two undated
// videos compare equal.
func (v Video) CreatedBefore(other Video) bool {
	switch {
	case !v.HasCreatedAt():
		return other.HasCreatedAt()
	case !other.HasCreatedAt():
		return false
	default:
		return v.CreatedAt.Before(*other.CreatedAt)
	}
}

// CompareCreated returns -1, 0 or +1 comparing the creation timestamps of a and b.
func CompareCreated(a, b Video) int {
	switch {
	case a.CreatedBefore(b):
		return -1
	case b.CreatedBefore(a):
		return 1
	default:
		return 0
	}
}

// Album is a named collection of videos in source order.
type Album struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Videos []Video `json:"videos"`
}

// Len returns the number of videos in the album.
func (a Album) Len() int {
	return len(a.Videos)
}

// IsEmpty reports whether the album has no videos.
func (a Album) IsEmpty() bool {
	return len(a.Videos) == 0
}

// Clone returns a copy of the album whose video slice does not alias the original.
func (a Album) Clone() Album {
	out := a
	if a.Videos != nil {
		out.Videos = make([]Video, len(a.Videos))
		copy(out.Videos, a.Videos)
	}
	return out
}

// Summary is the listing representation of an album.
type Summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// Summarize converts albums into their listing form, keeping order.
func Summarize(albums []Album) []Summary {
	out := make([]Summary, 0, len(albums))
	for _, a := range albums {
		out = append(out, Summary{ID: a.ID, Title: a.Title, Count: len(a.Videos)})
	}
	return out
}

// FindAlbum returns the album with the given ID.
func FindAlbum(albums []Album, id string) (Album, bool) {
	for _, a := range albums {
		if a.ID == id {
			return a, true
		}
	}
	return Album{}, false
}

// TimePtr is a helper for building videos with a known creation date.
func TimePtr(t time.Time) *time.Time {
	return &t
}
