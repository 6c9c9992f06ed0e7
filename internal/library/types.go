// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package library indexes video albums from configured filesystem roots.
// Every directory that directly holds at least one video is an album.
package library

import (
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/albumplay/internal/media"
)

// RootStatus represents the runtime state of a library root.
type RootStatus string

const (
	RootStatusNever    RootStatus = "never"    // Not yet scanned
	RootStatusRunning  RootStatus = "running"  // Scan in progress
	RootStatusOK       RootStatus = "ok"       // Last scan successful
	RootStatusDegraded RootStatus = "degraded" // Last scan had partial errors
	RootStatusFailed   RootStatus = "failed"   // Last scan failed completely
)

func (r RootStatus) String() string {
	return string(r)
}

// DefaultVideoExt is used when a root does not list extensions.
var DefaultVideoExt = []string{".mp4", ".mov", ".m4v", ".mkv", ".ts", ".webm"}

// RootConfig describes one configured library directory.
type RootConfig struct {
	ID         string   // Unique identifier, used as album ID prefix
	Path       string   // Absolute path on host; never exposed over the API
	Type       string   // smb|nfs|local (label only)
	MaxDepth   int      // Maximum directory depth, 0 for unlimited
	IncludeExt []string // Video extensions, DefaultVideoExt when empty
}

// Root is the API representation of a root (path excluded).
type Root struct {
	ID             string     `json:"id"`
	Type           string     `json:"type"`
	LastScanTime   *time.Time `json:"last_scan_time,omitempty"`
	LastScanStatus RootStatus `json:"last_scan_status"`
	TotalAlbums    int        `json:"total_albums"`
	TotalVideos    int        `json:"total_videos"`
	AccessDenied   bool       `json:"access_denied"`
}

// ScanResult is the outcome of scanning one root.
type ScanResult struct {
	RootID       string
	Started      time.Time
	Finished     time.Time
	TotalScanned int // Files encountered
	VideosFound  int
	ItemsSkipped int // Wrong extension, hidden, empty or unresolvable
	ErrorCount   int
	FinalStatus  RootStatus
	AccessDenied bool // Root could not be opened for reading
	LastError    string
	Albums       []media.Album
}

// Error returns a human-readable summary if the scan had issues.
func (s *ScanResult) Error() string {
	if s.ErrorCount == 0 && s.FinalStatus == RootStatusOK {
		return ""
	}
	return fmt.Sprintf("scan completed with %d errors, status=%s", s.ErrorCount, s.FinalStatus)
}

// ScanReport aggregates a scan of all roots.
type ScanReport struct {
	Results      []*ScanResult
	Albums       []media.Album // Albums of every root, in root order
	AccessDenied bool          // At least one root is recorded as not readable
}

var (
	// ErrRootNotFound signals that a requested library root does not exist.
	ErrRootNotFound = errors.New("root not found")
	// ErrAlbumNotFound signals that a requested album does not exist.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrVideoNotFound signals that a video ID does not resolve to a file.
	ErrVideoNotFound = errors.New("video not found")
	// ErrScanRunning is returned when a scan of the root is already in progress.
	ErrScanRunning = errors.New("scan already running")
)
