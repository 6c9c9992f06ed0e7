// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"time"

	"github.com/ManuGH/albumplay/internal/media"
	"github.com/ManuGH/albumplay/internal/playback"
	"github.com/ManuGH/albumplay/internal/settings"
	"github.com/google/uuid"
)

// EventKind names what happened in the session.
type EventKind string

const (
	EventPlayStart     EventKind = "play_start"
	EventPause         EventKind = "pause"
	EventRestart       EventKind = "restart"
	EventCloseAlbum    EventKind = "close_album"
	EventNavHidden     EventKind = "nav_hidden"
	EventAlbumsChanged EventKind = "albums_changed"
)

// Event is published to subscribers after each state change.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Kind    EventKind `json:"kind"`
	At      time.Time `json:"at"`
	AlbumID string    `json:"album_id,omitempty"`
	VideoID string    `json:"video_id,omitempty"`
	Index   int       `json:"index"`
	Surface int       `json:"surface"`
}

// Snapshot is a consistent view of the session.
type Snapshot struct {
	AlbumOpen           bool                `json:"album_open"`
	AlbumID             string              `json:"album_id,omitempty"`
	AlbumTitle          string              `json:"album_title,omitempty"`
	Video               *media.Video        `json:"video,omitempty"`
	PlayIndex           int                 `json:"play_index"`
	PlayListLen         int                 `json:"play_list_len"`
	CanGoBack           bool                `json:"can_go_back"`
	Paused              bool                `json:"paused"`
	NavigationHidden    bool                `json:"navigation_hidden"`
	Rotation            settings.Rotation   `json:"rotation"`
	Surface             int                 `json:"surface"`
	Sort                playback.SortPolicy `json:"sort"`
	LibraryAccessDenied bool                `json:"library_access_denied"`
}

// SurfaceFor returns which of the two alternating render surfaces shows the
// video at index.
func SurfaceFor(index int) int {
	if index < 0 {
		return 0
	}
	return index % 2
}
