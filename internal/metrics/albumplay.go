// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides the Prometheus collectors of albumplay.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// No album, video or session IDs in labels.

var (
	// NavigationTotal counts cursor moves by operation and outcome.
	NavigationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "albumplay_navigation_total",
		Help: "Playback navigation operations, by op (open/next/previous) and outcome (moved/boundary/empty).",
	}, []string{"op", "outcome"})

	// AlbumsTotal is the number of albums in the last loaded list.
	AlbumsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "albumplay_albums_total",
		Help: "Number of albums with at least one video in the last library load.",
	})

	// LibraryScansTotal counts finished root scans by final status.
	LibraryScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "albumplay_library_scans_total",
		Help: "Library root scans, by root and final status.",
	}, []string{"root", "status"})

	// LibraryScanDuration tracks how long root scans take.
	LibraryScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "albumplay_library_scan_duration_seconds",
		Help:    "Duration of library root scans.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"root"})

	// SettingsWritesTotal counts persisted settings changes.
	SettingsWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "albumplay_settings_writes_total",
		Help: "Persisted settings writes, by key (orientation/sort/all).",
	}, []string{"key"})

	// SessionEventsDropped counts events not delivered to a slow subscriber.
	SessionEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "albumplay_session_events_dropped_total",
		Help: "Session events dropped because a subscriber buffer was full.",
	})

	// CacheLookupsTotal counts album cache lookups by result.
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "albumplay_album_cache_lookups_total",
		Help: "Album list cache lookups, by result (hit/miss).",
	}, []string{"result"})
)

// RecordNavigation increments the navigation counter.
func RecordNavigation(op, outcome string) {
	NavigationTotal.WithLabelValues(op, outcome).Inc()
}

// SetAlbums records the size of the latest album list.
func SetAlbums(n int) {
	AlbumsTotal.Set(float64(n))
}

// RecordLibraryScan records a finished root scan.
func RecordLibraryScan(root, status string, d time.Duration) {
	LibraryScansTotal.WithLabelValues(root, status).Inc()
	LibraryScanDuration.WithLabelValues(root).Observe(d.Seconds())
}

// RecordSettingsWrite increments the settings write counter.
func RecordSettingsWrite(key string) {
	SettingsWritesTotal.WithLabelValues(key).Inc()
}

// RecordEventDropped increments the dropped event counter.
func RecordEventDropped() {
	SessionEventsDropped.Inc()
}

// RecordCacheLookup records an album cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

// GetAlbums returns the current value of the albums gauge (for testing).
func GetAlbums() float64 {
	var m dto.Metric
	if err := AlbumsTotal.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}
