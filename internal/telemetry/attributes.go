// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by albumplay spans.
const (
	AlbumIDKey     = "album.id"
	AlbumVideosKey = "album.videos"
	VideoIDKey     = "video.id"
	PlayIndexKey   = "playback.index"
	SortPolicyKey  = "playback.sort_policy"
	NavOpKey       = "playback.op"

	RootIDKey       = "library.root_id"
	ScanStatusKey   = "library.scan_status"
	ScanAlbumsKey   = "library.albums"
	ScanVideosKey   = "library.videos"
	AccessDeniedKey = "library.access_denied"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// PlaybackAttributes describes a navigation step.
func PlaybackAttributes(op, albumID string, index int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(NavOpKey, op),
		attribute.Int(PlayIndexKey, index),
	}
	if albumID != "" {
		attrs = append(attrs, attribute.String(AlbumIDKey, albumID))
	}
	return attrs
}

// AlbumAttributes describes an opened album.
func AlbumAttributes(albumID string, videos int, sortPolicy string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AlbumIDKey, albumID),
		attribute.Int(AlbumVideosKey, videos),
		attribute.String(SortPolicyKey, sortPolicy),
	}
}

// ScanAttributes describes a finished root scan.
func ScanAttributes(rootID, status string, albums, videos int, accessDenied bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(RootIDKey, rootID),
		attribute.String(ScanStatusKey, status),
		attribute.Int(ScanAlbumsKey, albums),
		attribute.Int(ScanVideosKey, videos),
		attribute.Bool(AccessDeniedKey, accessDenied),
	}
}

// ErrorAttributes marks a span as failed with a coarse error type.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
