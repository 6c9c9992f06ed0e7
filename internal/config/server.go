// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// ServerConfig holds the HTTP server parameters used by the daemon manager.
type ServerConfig struct {
	ListenAddr      string
	MetricsAddr     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// ServerConfig derives the listener configuration from the API section.
func (c AppConfig) ServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:      c.API.ListenAddr,
		MetricsAddr:     c.API.MetricsAddr,
		ReadTimeout:     c.API.ReadTimeout,
		WriteTimeout:    c.API.WriteTimeout,
		IdleTimeout:     c.API.IdleTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: c.API.ShutdownTimeout,
	}
}
