// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldSessionID = "session_id"
	FieldEventID   = "event_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Library fields
	FieldRootID  = "root_id"
	FieldAlbumID = "album_id"
	FieldVideoID = "video_id"

	// Playback fields
	FieldPlayIndex   = "play_index"
	FieldPlayListLen = "play_list_len"
	FieldSortPolicy  = "sort_policy"
	FieldOrientation = "orientation"

	// HTTP fields
	FieldMethod   = "method"
	FieldRoute    = "route"
	FieldStatus   = "status"
	FieldDuration = "duration"

	// Path fields
	FieldPath = "path"
)
