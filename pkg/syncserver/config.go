package syncserver

import (
	"log/slog"
	"net/http"
	"time"
)

// Config holds server settings.
type Config struct {
	// Address is the listen address (default ":7340").
	Address string

	// Document is the id snapshots are saved and loaded under.
	Document string

	// SendQueueSize is how many change messages may wait for a slow
	// WebSocket client before it is dropped.
	SendQueueSize int

	// WriteTimeout bounds a single WebSocket write.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// CheckOrigin validates the WebSocket Origin header.
	// Default: allow all origins.
	CheckOrigin func(r *http.Request) bool

	// Logger is the server logger (default: slog.Default()).
	Logger *slog.Logger
}

// DefaultConfig returns a Config with default values set.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":7340",
		Document:        "default",
		SendQueueSize:   64,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
}

// withDefaults fills unset fields of c from DefaultConfig.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	out := *c
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Document == "" {
		out.Document = defaults.Document
	}
	if out.SendQueueSize <= 0 {
		out.SendQueueSize = defaults.SendQueueSize
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	return &out
}
